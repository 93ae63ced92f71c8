package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"fleet-alert-service/internal/config"
	"fleet-alert-service/internal/model"
)

func newTestClient(baseURL string) *BackendClient {
	return NewBackendClient(&config.Config{
		Backend: config.BackendConfig{
			BaseURL: baseURL,
			Token:   "test-token",
		},
	})
}

func TestFetchGeofences_TranslatesDefinitions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/items/geofence" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"geofence_id":1,"name":"Depot","rule_type":"STANDARD","status":"active",
			 "definition":{"type":"Circle","coordinates":[106.8456,-6.2088],"radius":500}},
			{"geofence_id":2,"name":"Port area","rule_type":"FORBIDDEN","status":"inactive",
			 "definition":{"type":"Polygon","coordinates":[[[106.80,-6.25],[106.90,-6.25],[106.90,-6.15],[106.80,-6.15]]]}},
			{"geofence_id":3,"name":"Weird","rule_type":"STANDARD","status":"active",
			 "definition":{"type":"Blob"}}
		]}`))
	}))
	defer server.Close()

	geofences, warnings, err := newTestClient(server.URL).FetchGeofences(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for the unknown definition, got %d", len(warnings))
	}
	if len(geofences) != 2 {
		t.Fatalf("expected 2 geofences, got %d", len(geofences))
	}

	circle := geofences[0]
	if circle.ID != "1" || circle.Shape.Type != model.ShapeCircle {
		t.Errorf("circle translated wrong: %+v", circle)
	}
	if circle.Shape.Center != [2]float64{106.8456, -6.2088} || circle.Shape.RadiusMeters != 500 {
		t.Errorf("circle geometry wrong: %+v", circle.Shape)
	}
	if circle.RuleType != model.RuleStandard || circle.Status != model.GeofenceStatusActive {
		t.Errorf("circle attributes wrong: %+v", circle)
	}

	polygon := geofences[1]
	if polygon.Shape.Type != model.ShapePolygon {
		t.Fatalf("expected polygon, got %s", polygon.Shape.Type)
	}
	if len(polygon.Shape.Ring) != 4 {
		t.Errorf("expected outer ring with 4 vertices, got %d", len(polygon.Shape.Ring))
	}
	if polygon.Status != model.GeofenceStatusInactive {
		t.Errorf("expected inactive status preserved, got %s", polygon.Status)
	}
}

func TestFetchVehicles_NormalizesPlates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/items/vehicle" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"vehicle_id":7,"name":"Truck 12","license_plate":"b 1234 xyz"}
		]}`))
	}))
	defer server.Close()

	vehicles, err := newTestClient(server.URL).FetchVehicles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vehicles) != 1 {
		t.Fatalf("expected 1 vehicle, got %d", len(vehicles))
	}
	if vehicles[0].ID != "7" || vehicles[0].PlateNumber != "B1234XYZ" {
		t.Errorf("vehicle translated wrong: %+v", vehicles[0])
	}
}

func TestFetchGeofences_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, _, err := newTestClient(server.URL).FetchGeofences(context.Background())
	if err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestFetchGeofences_NoBaseURL(t *testing.T) {
	_, _, err := newTestClient("").FetchGeofences(context.Background())
	if err == nil {
		t.Fatal("expected error when base URL is not configured")
	}
}
