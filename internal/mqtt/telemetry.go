package mqtt

import (
	"fmt"
	"math"
	"time"
)

// Telemetry is one DHT-22 reading as published by the ESP32 station.
type Telemetry struct {
	StationID   string    `json:"station_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature_c,omitempty"`
	Humidity    *float64  `json:"humidity_pct,omitempty"`
}

func (t Telemetry) Validate() error {
	if t.StationID == "" {
		return fmt.Errorf("station_id is required")
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if t.Temperature != nil && (math.IsNaN(*t.Temperature) || math.IsInf(*t.Temperature, 0)) {
		return fmt.Errorf("temperature_c is not a number")
	}
	if t.Humidity != nil {
		if *t.Humidity < 0 || *t.Humidity > 100 {
			return fmt.Errorf("humidity_pct out of range: %f (must be 0-100)", *t.Humidity)
		}
	}
	if t.Temperature == nil && t.Humidity == nil {
		return fmt.Errorf("at least one reading (temperature_c or humidity_pct) is required")
	}
	return nil
}
