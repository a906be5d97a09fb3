package influxdb

import (
	"errors"
	"testing"
	"time"

	"github.com/roomsense/roomsense-core/internal/infrastructure/config"
	"github.com/roomsense/roomsense-core/internal/telemetry"
)

func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "roomsense-dev-token",
		Org:           "roomsense",
		Bucket:        "telemetry",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

func TestConnectDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := Connect(cfg)
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestCloseNil(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v", err)
	}
}

func TestMirrorSkipsWhenDisconnected(t *testing.T) {
	// Zero-value client is disconnected; mirror calls must be no-ops
	// rather than panics on the nil write API.
	c := &Client{}

	c.MirrorTemperature(telemetry.TemperatureReading{Room: "kitchen", TempF: 70.0})
	c.MirrorDetection(telemetry.DetectionEvent{Room: "bedroom", Detected: true})
	c.MirrorActuatorState(telemetry.ActuatorState{Room: "office", Kind: "fan", On: true})
}

var pointTime = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

func TestTemperaturePoint(t *testing.T) {
	p := temperaturePoint(telemetry.TemperatureReading{
		Room:       "kitchen",
		TempF:      74.1,
		RecordedAt: pointTime,
	})

	if p.Name() != measurementTemperature {
		t.Errorf("measurement = %q, want %q", p.Name(), measurementTemperature)
	}
	if !p.Time().Equal(pointTime) {
		t.Errorf("time = %v, want %v", p.Time(), pointTime)
	}

	tags := p.TagList()
	if len(tags) != 1 || tags[0].Key != "room" || tags[0].Value != "kitchen" {
		t.Errorf("tags = %+v, want room=kitchen", tags)
	}

	fields := p.FieldList()
	if len(fields) != 1 || fields[0].Key != "temp_f" || fields[0].Value != 74.1 {
		t.Errorf("fields = %+v, want temp_f=74.1", fields)
	}
}

func TestDetectionPoint(t *testing.T) {
	p := detectionPoint(telemetry.DetectionEvent{
		Room:       "bedroom",
		Detected:   true,
		Confidence: 0.8003,
		DetectedAt: pointTime,
	})

	if p.Name() != measurementDetection {
		t.Errorf("measurement = %q, want %q", p.Name(), measurementDetection)
	}

	got := map[string]interface{}{}
	for _, f := range p.FieldList() {
		got[f.Key] = f.Value
	}
	if got["detected"] != true {
		t.Errorf("detected = %v, want true", got["detected"])
	}
	if got["confidence"] != 0.8003 {
		t.Errorf("confidence = %v, want 0.8003", got["confidence"])
	}
}

func TestActuatorPoint(t *testing.T) {
	p := actuatorPoint(telemetry.ActuatorState{
		Room:       "office",
		Kind:       "heater",
		On:         true,
		RecordedAt: pointTime,
	})

	if p.Name() != measurementActuator {
		t.Errorf("measurement = %q, want %q", p.Name(), measurementActuator)
	}

	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	if tags["room"] != "office" || tags["kind"] != "heater" {
		t.Errorf("tags = %v, want room=office kind=heater", tags)
	}

	fields := p.FieldList()
	if len(fields) != 1 || fields[0].Key != "on" || fields[0].Value != true {
		t.Errorf("fields = %+v, want on=true", fields)
	}
}
