package influxdb

import (
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/roomsense/roomsense-core/internal/telemetry"
)

// Measurement names for mirrored telemetry streams.
const (
	measurementTemperature = "room_temperature"
	measurementDetection   = "room_presence"
	measurementActuator    = "actuator_state"
)

// MirrorTemperature records a temperature sample. The write is
// non-blocking; data is batched and sent asynchronously.
func (c *Client) MirrorTemperature(r telemetry.TemperatureReading) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(temperaturePoint(r))
}

// MirrorDetection records a person-detection sample.
func (c *Client) MirrorDetection(e telemetry.DetectionEvent) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(detectionPoint(e))
}

// MirrorActuatorState records a heater or fan status report.
func (c *Client) MirrorActuatorState(s telemetry.ActuatorState) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(actuatorPoint(s))
}

func temperaturePoint(r telemetry.TemperatureReading) *write.Point {
	return write.NewPoint(
		measurementTemperature,
		map[string]string{
			"room": r.Room,
		},
		map[string]interface{}{
			"temp_f": r.TempF,
		},
		r.RecordedAt,
	)
}

func detectionPoint(e telemetry.DetectionEvent) *write.Point {
	return write.NewPoint(
		measurementDetection,
		map[string]string{
			"room": e.Room,
		},
		map[string]interface{}{
			"detected":   e.Detected,
			"confidence": e.Confidence,
		},
		e.DetectedAt,
	)
}

func actuatorPoint(s telemetry.ActuatorState) *write.Point {
	return write.NewPoint(
		measurementActuator,
		map[string]string{
			"room": s.Room,
			"kind": s.Kind,
		},
		map[string]interface{}{
			"on": s.On,
		},
		s.RecordedAt,
	)
}
