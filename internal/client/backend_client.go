package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fleet-alert-service/internal/config"
	"fleet-alert-service/internal/model"
	"fleet-alert-service/internal/utils"
)

// BackendClient talks to the Directus-style fleet backend. It only reads the
// geofence and vehicle collections; telemetry arrives over the WebSocket feed.
type BackendClient struct {
	baseURL     string
	staticToken string
	httpClient  *http.Client
}

func NewBackendClient(cfg *config.Config) *BackendClient {
	return &BackendClient{
		baseURL:     cfg.Backend.BaseURL,
		staticToken: cfg.Backend.Token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type geofenceRow struct {
	ID         json.Number     `json:"geofence_id"`
	Name       string          `json:"name"`
	RuleType   string          `json:"rule_type"`
	Status     string          `json:"status"`
	Definition json.RawMessage `json:"definition"`
}

type geofenceDefinition struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
	Radius      float64         `json:"radius"`
}

type vehicleRow struct {
	ID           json.Number `json:"vehicle_id"`
	Name         string      `json:"name"`
	LicensePlate string      `json:"license_plate"`
}

type itemsResponse[T any] struct {
	Data []T `json:"data"`
}

// FetchGeofences pulls the full geofence collection and translates it into
// domain geofences. Rows with unparseable definitions are skipped and
// reported; the registry does its own geometry validation on top.
func (c *BackendClient) FetchGeofences(ctx context.Context) ([]model.Geofence, []error, error) {
	rows, err := fetchItems[geofenceRow](ctx, c, "/items/geofence")
	if err != nil {
		return nil, nil, err
	}

	var warnings []error
	geofences := make([]model.Geofence, 0, len(rows))
	for _, row := range rows {
		gf, err := translateGeofence(row)
		if err != nil {
			warnings = append(warnings, err)
			continue
		}
		geofences = append(geofences, gf)
	}
	return geofences, warnings, nil
}

// FetchVehicles pulls the vehicle roster used for display names.
func (c *BackendClient) FetchVehicles(ctx context.Context) ([]model.Vehicle, error) {
	rows, err := fetchItems[vehicleRow](ctx, c, "/items/vehicle")
	if err != nil {
		return nil, err
	}

	vehicles := make([]model.Vehicle, 0, len(rows))
	for _, row := range rows {
		vehicles = append(vehicles, model.Vehicle{
			ID:          row.ID.String(),
			Name:        row.Name,
			PlateNumber: utils.NormalizePlate(row.LicensePlate),
		})
	}
	return vehicles, nil
}

func translateGeofence(row geofenceRow) (model.Geofence, error) {
	var def geofenceDefinition
	if err := json.Unmarshal(row.Definition, &def); err != nil {
		return model.Geofence{}, fmt.Errorf("geofence %s: bad definition: %w", row.ID, err)
	}

	gf := model.Geofence{
		ID:       row.ID.String(),
		Name:     row.Name,
		RuleType: model.GeofenceRule(row.RuleType),
		Status:   model.GeofenceStatus(row.Status),
	}

	switch def.Type {
	case "Circle", "circle":
		var center [2]float64
		if err := json.Unmarshal(def.Coordinates, &center); err != nil {
			return model.Geofence{}, fmt.Errorf("geofence %s: bad circle center: %w", row.ID, err)
		}
		gf.Shape = model.Shape{
			Type:         model.ShapeCircle,
			Center:       center,
			RadiusMeters: def.Radius,
		}
	case "Polygon", "polygon":
		var rings [][][2]float64
		if err := json.Unmarshal(def.Coordinates, &rings); err != nil {
			return model.Geofence{}, fmt.Errorf("geofence %s: bad polygon coordinates: %w", row.ID, err)
		}
		if len(rings) == 0 {
			return model.Geofence{}, fmt.Errorf("geofence %s: polygon has no rings", row.ID)
		}
		// only the outer ring is evaluated for containment
		gf.Shape = model.Shape{
			Type: model.ShapePolygon,
			Ring: rings[0],
		}
	default:
		return model.Geofence{}, fmt.Errorf("geofence %s: unknown definition type %q", row.ID, def.Type)
	}

	return gf, nil
}

func fetchItems[T any](ctx context.Context, c *BackendClient, path string) ([]T, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("backend base URL is not configured")
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	q := u.Query()
	q.Set("limit", "-1")
	u.RawQuery = q.Encode()

	var resp *http.Response
	var lastErr error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if c.staticToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.staticToken)
		}

		resp, lastErr = c.httpClient.Do(req)
		if lastErr == nil {
			break
		}
		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("failed to execute request after %d attempts: %w", maxRetries, lastErr)
		}
		time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
	}
	if resp == nil {
		return nil, fmt.Errorf("failed to execute request: %w", lastErr)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed itemsResponse[T]
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return parsed.Data, nil
}
