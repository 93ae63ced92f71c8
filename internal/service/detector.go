package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fleet-alert-service/internal/geo"
	"fleet-alert-service/internal/model"
)

// Detector tracks per-vehicle containment against the registry's geofences
// and emits transition events. State lives only for the lifetime of the
// process, keyed by vehicle id.
type Detector struct {
	mu       sync.Mutex
	registry *GeofenceRegistry
	// containment[vehicleID][geofenceID] == last known inside/outside
	containment map[string]map[string]bool
	roster      map[string]model.Vehicle
	log         zerolog.Logger
}

func NewDetector(registry *GeofenceRegistry, log zerolog.Logger) *Detector {
	return &Detector{
		registry:    registry,
		containment: make(map[string]map[string]bool),
		roster:      make(map[string]model.Vehicle),
		log:         log,
	}
}

// SetVehicles replaces the roster used to resolve display names on events.
func (d *Detector) SetVehicles(vehicles []model.Vehicle) {
	roster := make(map[string]model.Vehicle, len(vehicles))
	for _, v := range vehicles {
		roster[v.ID] = v
	}

	d.mu.Lock()
	d.roster = roster
	d.mu.Unlock()
}

// Vehicles returns the current roster.
func (d *Detector) Vehicles() []model.Vehicle {
	d.mu.Lock()
	defer d.mu.Unlock()

	vehicles := make([]model.Vehicle, 0, len(d.roster))
	for _, v := range d.roster {
		vehicles = append(vehicles, v)
	}
	return vehicles
}

// DetectVehicleEvents processes one telemetry sample and returns every
// transition it caused. A malformed sample yields an error and zero events;
// the containment state is left untouched so a corrupt GPS fix is never read
// as the vehicle leaving its zones.
//
// The first sample seen for a (vehicle, geofence) pair only establishes a
// baseline: a vehicle first observed already inside a FORBIDDEN zone does not
// fire a violation until a real outside-to-inside transition occurs.
func (d *Detector) DetectVehicleEvents(vehicleID string, coordinates [2]float64, timestamp time.Time) ([]model.GeofenceEvent, error) {
	sample := model.VehiclePosition{
		VehicleID:   vehicleID,
		Coordinates: coordinates,
		Timestamp:   timestamp,
	}
	if err := sample.Validate(); err != nil {
		return nil, err
	}

	active := d.registry.Active()

	d.mu.Lock()
	defer d.mu.Unlock()

	previous, seen := d.containment[vehicleID]
	current := make(map[string]bool, len(active))

	var events []model.GeofenceEvent
	for i := range active {
		gf := &active[i]
		inside := geo.Contains(coordinates, gf)
		current[gf.ID] = inside

		if !seen {
			continue
		}
		wasInside, tracked := previous[gf.ID]
		if !tracked {
			// new geofence since the last sample: baseline, no event
			continue
		}
		if inside == wasInside {
			continue
		}

		eventType := classifyTransition(gf.RuleType, inside)
		events = append(events, model.GeofenceEvent{
			EventID:       model.EventIDFor(vehicleID, gf.ID, eventType, timestamp),
			VehicleID:     vehicleID,
			VehicleName:   d.vehicleName(vehicleID),
			GeofenceID:    gf.ID,
			GeofenceName:  gf.Name,
			EventType:     eventType,
			RuleTriggered: gf.RuleType,
			Position:      coordinates,
			Timestamp:     timestamp,
		})
	}

	// geofences deleted or deactivated since the last sample drop out of the
	// map here without emitting an exit
	d.containment[vehicleID] = current

	if len(events) > 0 {
		d.log.Debug().
			Str("vehicle_id", vehicleID).
			Int("events", len(events)).
			Msg("geofence transitions detected")
	}
	return events, nil
}

// classifyTransition maps a containment flip to an event type. Entering a
// FORBIDDEN zone and leaving a STAY_IN zone are the violations; everything
// else is a plain enter/exit.
func classifyTransition(rule model.GeofenceRule, entered bool) model.GeofenceEventType {
	if entered {
		if rule == model.RuleForbidden {
			return model.EventViolationEnter
		}
		return model.EventEnter
	}
	if rule == model.RuleStayIn {
		return model.EventViolationExit
	}
	return model.EventExit
}

func (d *Detector) vehicleName(vehicleID string) string {
	if v, ok := d.roster[vehicleID]; ok && v.Name != "" {
		return v.Name
	}
	return vehicleID
}
