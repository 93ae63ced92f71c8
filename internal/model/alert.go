package model

import "time"

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// AlertNotification wraps a GeofenceEvent for the dashboard. ID mirrors the
// event id so at-least-once delivery stays idempotent.
type AlertNotification struct {
	ID           string        `json:"id"`
	Event        GeofenceEvent `json:"event"`
	ReceivedAt   time.Time     `json:"received_at"`
	Acknowledged bool          `json:"acknowledged"`
}

// SeverityFor is a pure function of the event fields.
func SeverityFor(event GeofenceEvent) Severity {
	switch {
	case event.EventType.IsViolation() && event.RuleTriggered == RuleForbidden:
		return SeverityCritical
	case event.EventType.IsViolation():
		return SeverityHigh
	case event.EventType == EventEnter || event.EventType == EventExit:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
