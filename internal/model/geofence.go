package model

import (
	"errors"
	"fmt"
	"math"
)

type GeofenceRule string

const (
	RuleStandard  GeofenceRule = "STANDARD"
	RuleForbidden GeofenceRule = "FORBIDDEN"
	RuleStayIn    GeofenceRule = "STAY_IN"
)

type GeofenceStatus string

const (
	GeofenceStatusActive   GeofenceStatus = "active"
	GeofenceStatusInactive GeofenceStatus = "inactive"
)

type ShapeType string

const (
	ShapeCircle  ShapeType = "circle"
	ShapePolygon ShapeType = "polygon"
)

// Shape is a tagged union: circle uses Center/RadiusMeters, polygon uses Ring.
// Only the outer ring is evaluated for containment.
type Shape struct {
	Type         ShapeType    `json:"type"`
	Center       [2]float64   `json:"center,omitempty"`
	RadiusMeters float64      `json:"radius_meters,omitempty"`
	Ring         [][2]float64 `json:"ring,omitempty"`
}

type Geofence struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Shape    Shape          `json:"shape"`
	RuleType GeofenceRule   `json:"rule_type"`
	Status   GeofenceStatus `json:"status"`
}

func (g *Geofence) IsActive() bool {
	return g.Status == GeofenceStatusActive
}

// Validate rejects geometry the containment tests cannot evaluate.
// Invalid geofences must not enter the registry.
func (g *Geofence) Validate() error {
	if g.ID == "" {
		return errors.New("geofence id is required")
	}

	switch g.Shape.Type {
	case ShapeCircle:
		if g.Shape.RadiusMeters <= 0 {
			return fmt.Errorf("geofence %s: circle radius must be positive", g.ID)
		}
		if !validCoordinate(g.Shape.Center) {
			return fmt.Errorf("geofence %s: circle center out of range", g.ID)
		}
	case ShapePolygon:
		if countDistinctVertices(g.Shape.Ring) < 3 {
			return fmt.Errorf("geofence %s: polygon needs at least 3 distinct vertices", g.ID)
		}
		for _, v := range g.Shape.Ring {
			if !validCoordinate(v) {
				return fmt.Errorf("geofence %s: polygon vertex out of range", g.ID)
			}
		}
	default:
		return fmt.Errorf("geofence %s: unknown shape type %q", g.ID, g.Shape.Type)
	}

	switch g.RuleType {
	case RuleStandard, RuleForbidden, RuleStayIn:
	default:
		return fmt.Errorf("geofence %s: unknown rule type %q", g.ID, g.RuleType)
	}

	return nil
}

func validCoordinate(c [2]float64) bool {
	lng, lat := c[0], c[1]
	if math.IsNaN(lng) || math.IsNaN(lat) {
		return false
	}
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

func countDistinctVertices(ring [][2]float64) int {
	seen := make(map[[2]float64]struct{}, len(ring))
	for _, v := range ring {
		seen[v] = struct{}{}
	}
	return len(seen)
}
