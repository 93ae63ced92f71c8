package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-alert-service/internal/model"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Store inserts emitted events. Conflicts on event_id are ignored so the
// at-least-once feed can replay without duplicating rows.
func (r *EventRepository) Store(ctx context.Context, events []model.GeofenceEvent) error {
	if len(events) == 0 {
		return nil
	}

	records := make([]*model.EventRecord, 0, len(events))
	for _, event := range events {
		records = append(records, model.NewEventRecord(event))
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(&records).Error
}

type EventListFilter struct {
	VehicleID  *string
	GeofenceID *string
	From       *time.Time
	To         *time.Time
	Limit      int
}

func (r *EventRepository) List(ctx context.Context, filter EventListFilter) ([]model.EventRecord, error) {
	query := r.db.WithContext(ctx).Model(&model.EventRecord{})

	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.GeofenceID != nil {
		query = query.Where("geofence_id = ?", *filter.GeofenceID)
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at <= ?", *filter.To)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var records []model.EventRecord
	err := query.Order("occurred_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
