// Command simulator replays a scripted route through the ingest endpoint.
// It is an external driver: the detection core exposes no timers of its own,
// so a test rig, a cron job, or this simulator can all feed it the same way.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

type sample struct {
	VehicleID string     `json:"vehicle_id"`
	Position  [2]float64 `json:"position"`
	Timestamp int64      `json:"timestamp"`
}

// route walks a vehicle from central Jakarta out past the 500 m demo
// geofence and back, so every transition type fires at least once.
var route = [][2]float64{
	{106.90, -6.30},
	{106.87, -6.25},
	{106.8456, -6.2088},
	{106.8460, -6.2090},
	{106.87, -6.25},
	{106.90, -6.30},
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "fleet alert service base URL")
	token := flag.String("token", "", "bearer token for the ingest endpoint")
	vehicleID := flag.String("vehicle", "sim-1", "vehicle id to report as")
	interval := flag.Duration("interval", 2*time.Second, "delay between samples")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	for i := 0; ; i++ {
		point := route[i%len(route)]
		if err := post(client, *baseURL, *token, sample{
			VehicleID: *vehicleID,
			Position:  point,
			Timestamp: time.Now().Unix(),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "post failed: %v\n", err)
		} else {
			fmt.Printf("sent %s @ [%f, %f]\n", *vehicleID, point[0], point[1])
		}
		time.Sleep(*interval)
	}
}

func post(client *http.Client, baseURL, token string, s sample) error {
	body, err := json.Marshal(s)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/telemetry/positions", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service returned status %d", resp.StatusCode)
	}
	return nil
}
