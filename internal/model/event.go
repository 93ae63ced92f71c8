package model

import (
	"fmt"
	"time"
)

type GeofenceEventType string

const (
	EventEnter          GeofenceEventType = "enter"
	EventExit           GeofenceEventType = "exit"
	EventViolationEnter GeofenceEventType = "violation_enter"
	EventViolationExit  GeofenceEventType = "violation_exit"
)

func (t GeofenceEventType) IsViolation() bool {
	return t == EventViolationEnter || t == EventViolationExit
}

// GeofenceEvent is one containment transition. Immutable after creation;
// acknowledgement state lives on AlertNotification, not here.
type GeofenceEvent struct {
	EventID       string            `json:"event_id"`
	VehicleID     string            `json:"vehicle_id"`
	VehicleName   string            `json:"vehicle_name"`
	GeofenceID    string            `json:"geofence_id"`
	GeofenceName  string            `json:"geofence_name"`
	EventType     GeofenceEventType `json:"event_type"`
	RuleTriggered GeofenceRule      `json:"rule_triggered"`
	Position      [2]float64        `json:"position"`
	Timestamp     time.Time         `json:"timestamp"`
}

// EventIDFor derives a deterministic event id so re-delivered events
// de-duplicate downstream.
func EventIDFor(vehicleID, geofenceID string, eventType GeofenceEventType, ts time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%d", vehicleID, geofenceID, eventType, ts.UnixMilli())
}
