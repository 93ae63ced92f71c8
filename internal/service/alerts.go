package service

import (
	"sync"
	"time"

	"fleet-alert-service/internal/model"
)

// AlertManager accumulates detector output into the deduplicated alert list
// the dashboard reads. Most recent alerts come first.
type AlertManager struct {
	mu     sync.Mutex
	alerts []model.AlertNotification
	byID   map[string]int
	now    func() time.Time
}

func NewAlertManager() *AlertManager {
	return &AlertManager{
		byID: make(map[string]int),
		now:  time.Now,
	}
}

// Ingest wraps each event as an unacknowledged notification. The upstream
// feed is at-least-once, so an event id already present is a no-op.
func (m *AlertManager) Ingest(events []model.GeofenceEvent) {
	if len(events) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	changed := false
	for _, event := range events {
		if _, exists := m.byID[event.EventID]; exists {
			continue
		}
		notification := model.AlertNotification{
			ID:         event.EventID,
			Event:      event,
			ReceivedAt: m.now(),
		}
		m.alerts = append([]model.AlertNotification{notification}, m.alerts...)
		m.byID[event.EventID] = 0
		changed = true
	}
	if changed {
		m.reindex()
	}
}

// Acknowledge flips the flag on one alert. Unknown ids are a no-op: the
// alert may legitimately have been cleared already.
func (m *AlertManager) Acknowledge(alertID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if idx, ok := m.byID[alertID]; ok {
		m.alerts[idx].Acknowledged = true
	}
}

func (m *AlertManager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.alerts = nil
	m.byID = make(map[string]int)
}

// List returns all alerts, most recent first.
func (m *AlertManager) List() []model.AlertNotification {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.AlertNotification, len(m.alerts))
	copy(out, m.alerts)
	return out
}

func (m *AlertManager) ListUnacknowledged() []model.AlertNotification {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.AlertNotification
	for _, a := range m.alerts {
		if !a.Acknowledged {
			out = append(out, a)
		}
	}
	return out
}

func (m *AlertManager) reindex() {
	for i, a := range m.alerts {
		m.byID[a.ID] = i
	}
}
