package model

import (
	"testing"
	"time"
)

func TestGeofenceValidate(t *testing.T) {
	valid := Geofence{
		ID:       "g1",
		RuleType: RuleStandard,
		Status:   GeofenceStatusActive,
		Shape: Shape{
			Type:         ShapeCircle,
			Center:       [2]float64{106.8456, -6.2088},
			RadiusMeters: 500,
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(g *Geofence)
	}{
		{"missing id", func(g *Geofence) { g.ID = "" }},
		{"zero radius", func(g *Geofence) { g.Shape.RadiusMeters = 0 }},
		{"negative radius", func(g *Geofence) { g.Shape.RadiusMeters = -10 }},
		{"center out of range", func(g *Geofence) { g.Shape.Center = [2]float64{200, 0} }},
		{"unknown shape", func(g *Geofence) { g.Shape.Type = "triangle" }},
		{"unknown rule", func(g *Geofence) { g.RuleType = "MAYBE" }},
	}
	for _, tc := range cases {
		g := valid
		tc.mutate(&g)
		if err := g.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestGeofenceValidate_PolygonDistinctVertices(t *testing.T) {
	polygon := Geofence{
		ID:       "p1",
		RuleType: RuleStayIn,
		Status:   GeofenceStatusActive,
		Shape: Shape{
			Type: ShapePolygon,
			Ring: [][2]float64{{106.80, -6.25}, {106.90, -6.25}, {106.90, -6.15}},
		},
	}
	if err := polygon.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// a closed "triangle" of two distinct points is degenerate
	polygon.Shape.Ring = [][2]float64{{0, 0}, {1, 1}, {0, 0}}
	if err := polygon.Validate(); err == nil {
		t.Fatal("expected error for degenerate ring")
	}
}

func TestEventIDFor_Deterministic(t *testing.T) {
	ts := time.Unix(1715003456, 0)

	a := EventIDFor("v1", "g1", EventViolationEnter, ts)
	b := EventIDFor("v1", "g1", EventViolationEnter, ts)
	if a != b {
		t.Fatalf("expected identical ids, got %s and %s", a, b)
	}

	if a == EventIDFor("v1", "g1", EventEnter, ts) {
		t.Error("event type must contribute to the id")
	}
	if a == EventIDFor("v1", "g1", EventViolationEnter, ts.Add(time.Second)) {
		t.Error("timestamp must contribute to the id")
	}
}
