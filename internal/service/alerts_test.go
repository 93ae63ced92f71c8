package service

import (
	"testing"
	"time"

	"fleet-alert-service/internal/model"
)

func testEvent(id string, eventType model.GeofenceEventType, rule model.GeofenceRule) model.GeofenceEvent {
	return model.GeofenceEvent{
		EventID:       id,
		VehicleID:     "v1",
		VehicleName:   "Truck 12",
		GeofenceID:    "g1",
		GeofenceName:  "depot",
		EventType:     eventType,
		RuleTriggered: rule,
		Position:      [2]float64{106.8456, -6.2088},
		Timestamp:     time.Unix(1715003456, 0),
	}
}

func TestIngest_Idempotent(t *testing.T) {
	m := NewAlertManager()
	event := testEvent("e1", model.EventViolationEnter, model.RuleForbidden)

	m.Ingest([]model.GeofenceEvent{event})
	m.Ingest([]model.GeofenceEvent{event})

	alerts := m.List()
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert after duplicate ingest, got %d", len(alerts))
	}
	if alerts[0].ID != "e1" {
		t.Errorf("expected alert id e1, got %s", alerts[0].ID)
	}
	if alerts[0].Acknowledged {
		t.Error("new alerts must start unacknowledged")
	}
}

func TestIngest_DuplicateWithinBatch(t *testing.T) {
	m := NewAlertManager()
	event := testEvent("e1", model.EventEnter, model.RuleStandard)

	m.Ingest([]model.GeofenceEvent{event, event})

	if got := len(m.List()); got != 1 {
		t.Fatalf("expected 1 alert, got %d", got)
	}
}

func TestIngest_MostRecentFirst(t *testing.T) {
	m := NewAlertManager()

	m.Ingest([]model.GeofenceEvent{testEvent("e1", model.EventEnter, model.RuleStandard)})
	m.Ingest([]model.GeofenceEvent{testEvent("e2", model.EventExit, model.RuleStandard)})

	alerts := m.List()
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	if alerts[0].ID != "e2" || alerts[1].ID != "e1" {
		t.Errorf("expected most-recent-first ordering, got %s then %s", alerts[0].ID, alerts[1].ID)
	}
}

func TestAcknowledge(t *testing.T) {
	m := NewAlertManager()
	m.Ingest([]model.GeofenceEvent{
		testEvent("e1", model.EventViolationEnter, model.RuleForbidden),
		testEvent("e2", model.EventEnter, model.RuleStandard),
	})

	m.Acknowledge("e1")

	unacked := m.ListUnacknowledged()
	if len(unacked) != 1 {
		t.Fatalf("expected 1 unacknowledged alert, got %d", len(unacked))
	}
	if unacked[0].ID != "e2" {
		t.Errorf("expected e2 to remain unacknowledged, got %s", unacked[0].ID)
	}
}

func TestAcknowledge_UnknownIDIsNoOp(t *testing.T) {
	m := NewAlertManager()
	m.Ingest([]model.GeofenceEvent{testEvent("e1", model.EventEnter, model.RuleStandard)})

	// must not panic or disturb existing alerts
	m.Acknowledge("pruned-long-ago")

	if got := len(m.ListUnacknowledged()); got != 1 {
		t.Fatalf("expected 1 unacknowledged alert, got %d", got)
	}
}

func TestAcknowledge_AfterLaterIngest(t *testing.T) {
	m := NewAlertManager()
	m.Ingest([]model.GeofenceEvent{testEvent("e1", model.EventEnter, model.RuleStandard)})
	m.Ingest([]model.GeofenceEvent{testEvent("e2", model.EventExit, model.RuleStandard)})

	// e1 shifted positions when e2 was prepended; ack must still find it
	m.Acknowledge("e1")

	for _, a := range m.List() {
		if a.ID == "e1" && !a.Acknowledged {
			t.Fatal("e1 was not acknowledged")
		}
		if a.ID == "e2" && a.Acknowledged {
			t.Fatal("e2 acknowledged by mistake")
		}
	}
}

func TestClearAll(t *testing.T) {
	m := NewAlertManager()
	m.Ingest([]model.GeofenceEvent{testEvent("e1", model.EventEnter, model.RuleStandard)})

	m.ClearAll()

	if got := len(m.List()); got != 0 {
		t.Fatalf("expected empty list, got %d", got)
	}

	// an id seen before the clear may be ingested again
	m.Ingest([]model.GeofenceEvent{testEvent("e1", model.EventEnter, model.RuleStandard)})
	if got := len(m.List()); got != 1 {
		t.Fatalf("expected re-ingest after clear, got %d", got)
	}
}

func TestSeverityFor(t *testing.T) {
	cases := []struct {
		eventType model.GeofenceEventType
		rule      model.GeofenceRule
		want      model.Severity
	}{
		{model.EventViolationEnter, model.RuleForbidden, model.SeverityCritical},
		{model.EventViolationExit, model.RuleStayIn, model.SeverityHigh},
		{model.EventEnter, model.RuleStandard, model.SeverityMedium},
		{model.EventExit, model.RuleForbidden, model.SeverityMedium},
		{model.GeofenceEventType("unknown"), model.RuleStandard, model.SeverityLow},
	}

	for _, tc := range cases {
		got := model.SeverityFor(testEvent("e", tc.eventType, tc.rule))
		if got != tc.want {
			t.Errorf("%s/%s: expected %s, got %s", tc.eventType, tc.rule, tc.want, got)
		}
	}
}
