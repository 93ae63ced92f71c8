package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventRecord is the persisted form of a GeofenceEvent for the history
// endpoint. Detector state itself is never persisted.
type EventRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EventID       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"event_id"`
	VehicleID     string    `gorm:"type:varchar(64);not null;index" json:"vehicle_id"`
	VehicleName   string    `gorm:"type:varchar(255)" json:"vehicle_name"`
	GeofenceID    string    `gorm:"type:varchar(64);not null;index" json:"geofence_id"`
	GeofenceName  string    `gorm:"type:varchar(255)" json:"geofence_name"`
	EventType     string    `gorm:"type:varchar(32);not null" json:"event_type"`
	RuleTriggered string    `gorm:"type:varchar(32);not null" json:"rule_triggered"`
	Longitude     float64   `json:"longitude"`
	Latitude      float64   `json:"latitude"`
	OccurredAt    time.Time `gorm:"not null;index" json:"occurred_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (EventRecord) TableName() string {
	return "geofence_events"
}

func (r *EventRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func NewEventRecord(event GeofenceEvent) *EventRecord {
	return &EventRecord{
		EventID:       event.EventID,
		VehicleID:     event.VehicleID,
		VehicleName:   event.VehicleName,
		GeofenceID:    event.GeofenceID,
		GeofenceName:  event.GeofenceName,
		EventType:     string(event.EventType),
		RuleTriggered: string(event.RuleTriggered),
		Longitude:     event.Position[0],
		Latitude:      event.Position[1],
		OccurredAt:    event.Timestamp,
	}
}
