// Package stream consumes the backend's WebSocket telemetry feed and drives
// the detector with it.
package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"fleet-alert-service/internal/model"
)

type detector interface {
	DetectVehicleEvents(vehicleID string, coordinates [2]float64, timestamp time.Time) ([]model.GeofenceEvent, error)
}

type alertSink interface {
	Ingest(events []model.GeofenceEvent)
}

// EventArchive persists emitted events; nil disables archiving.
type EventArchive interface {
	Store(ctx context.Context, events []model.GeofenceEvent) error
}

// telemetryMessage mirrors one vehicle_datas row pushed by the backend.
type telemetryMessage struct {
	VehicleID string  `json:"vehicle_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

// Subscriber maintains a WebSocket connection to the telemetry feed,
// reconnecting with backoff when the backend drops it. Detection state
// survives reconnects: resuming the feed simply continues sampling.
type Subscriber struct {
	url      string
	detector detector
	alerts   alertSink
	archive  EventArchive
	log      zerolog.Logger
}

func NewSubscriber(url string, det detector, alerts alertSink, archive EventArchive, log zerolog.Logger) *Subscriber {
	return &Subscriber{
		url:      url,
		detector: det,
		alerts:   alerts,
		archive:  archive,
		log:      log,
	}
}

// Run blocks until ctx is cancelled.
func (s *Subscriber) Run(ctx context.Context) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
		if err != nil {
			s.log.Warn().Err(err).Str("url", s.url).Msg("telemetry feed dial failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		s.log.Info().Str("url", s.url).Msg("telemetry feed connected")
		backoff = time.Second
		s.readLoop(ctx, conn)
		conn.Close()
	}
}

func (s *Subscriber) readLoop(ctx context.Context, conn *websocket.Conn) {
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.log.Warn().Err(err).Msg("telemetry feed read failed")
			}
			return
		}
		s.handleMessage(ctx, payload)
	}
}

func (s *Subscriber) handleMessage(ctx context.Context, payload []byte) {
	var msg telemetryMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		s.log.Warn().Err(err).Msg("invalid telemetry message")
		return
	}

	events, err := s.detector.DetectVehicleEvents(
		msg.VehicleID,
		[2]float64{msg.Longitude, msg.Latitude},
		time.Unix(msg.Timestamp, 0),
	)
	if err != nil {
		// corrupt fix: discard, never feed it into containment state
		s.log.Warn().Err(err).Str("vehicle_id", msg.VehicleID).Msg("telemetry sample rejected")
		return
	}
	if len(events) == 0 {
		return
	}

	s.alerts.Ingest(events)
	if s.archive != nil {
		if err := s.archive.Store(ctx, events); err != nil {
			s.log.Error().Err(err).Msg("failed to archive geofence events")
		}
	}
}
