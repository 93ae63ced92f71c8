package service

import (
	"sync"

	"github.com/rs/zerolog"

	"fleet-alert-service/internal/geo"
	"fleet-alert-service/internal/model"
)

// GeofenceRegistry holds the active working set of geofences. The set is
// replaced wholesale on every refresh from the backend; there is no
// persistence here.
type GeofenceRegistry struct {
	mu        sync.RWMutex
	geofences []model.Geofence
	log       zerolog.Logger
}

func NewGeofenceRegistry(log zerolog.Logger) *GeofenceRegistry {
	return &GeofenceRegistry{
		log: log,
	}
}

// SetGeofences replaces the working set. Entries failing validation are
// dropped and reported one by one; the valid remainder is still registered.
func (r *GeofenceRegistry) SetGeofences(geofences []model.Geofence) []error {
	var warnings []error
	valid := make([]model.Geofence, 0, len(geofences))

	for _, gf := range geofences {
		if err := gf.Validate(); err != nil {
			r.log.Warn().Err(err).Str("geofence_id", gf.ID).Msg("dropping invalid geofence")
			warnings = append(warnings, err)
			continue
		}
		valid = append(valid, gf)
	}

	r.mu.Lock()
	r.geofences = valid
	r.mu.Unlock()

	return warnings
}

// Containing returns every active geofence whose shape contains the point,
// in registration order.
func (r *GeofenceRegistry) Containing(point [2]float64) []model.Geofence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var hits []model.Geofence
	for i := range r.geofences {
		gf := &r.geofences[i]
		if !gf.IsActive() {
			continue
		}
		if geo.Contains(point, gf) {
			hits = append(hits, *gf)
		}
	}
	return hits
}

// Active returns a snapshot of the active geofences. The detector diffs
// against this to observe exits and to prune deleted zones.
func (r *GeofenceRegistry) Active() []model.Geofence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := make([]model.Geofence, 0, len(r.geofences))
	for _, gf := range r.geofences {
		if gf.IsActive() {
			active = append(active, gf)
		}
	}
	return active
}
