package model

import (
	"errors"
	"math"
	"time"
)

var (
	ErrMissingVehicleID = errors.New("vehicle id is required")
	ErrBadCoordinates   = errors.New("coordinates out of range")
	ErrBadTimestamp     = errors.New("timestamp is required")
)

// Vehicle is a roster entry used only to resolve display names on emitted
// events. The backend owns the vehicle records.
type Vehicle struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PlateNumber string `json:"plate_number"`
}

// VehiclePosition is one telemetry sample. Coordinates are [lng, lat].
type VehiclePosition struct {
	VehicleID   string     `json:"vehicle_id"`
	Coordinates [2]float64 `json:"coordinates"`
	Timestamp   time.Time  `json:"timestamp"`
}

// Validate rejects corrupt GPS fixes. A bad fix must never be interpreted
// as the vehicle leaving its zones.
func (p *VehiclePosition) Validate() error {
	if p.VehicleID == "" {
		return ErrMissingVehicleID
	}
	lng, lat := p.Coordinates[0], p.Coordinates[1]
	if math.IsNaN(lng) || math.IsNaN(lat) {
		return ErrBadCoordinates
	}
	if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return ErrBadCoordinates
	}
	if p.Timestamp.IsZero() {
		return ErrBadTimestamp
	}
	return nil
}
