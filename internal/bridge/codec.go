package bridge

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timestampLayout is the wire format used by every device on the sensor
// network: local time, second precision, no zone offset.
const timestampLayout = "2006-01-02T15:04:05"

// TemperatureReading is a decoded, validated temperature sample.
type TemperatureReading struct {
	Room       string
	TempF      float64
	RecordedAt time.Time
}

// DetectionEvent is a decoded, validated person-detection sample.
// Detected and Confidence are recorded as the camera reported them;
// interpreting the pair against a threshold is the reader's concern.
type DetectionEvent struct {
	Room       string
	Detected   bool
	Confidence float64
	DetectedAt time.Time
}

// ActuatorState is a decoded, validated heater or fan status report.
type ActuatorState struct {
	Room       string
	Kind       Kind
	On         bool
	RecordedAt time.Time
}

// Wire envelopes. Pointer fields distinguish a missing key from a zero
// value so validation can reject incomplete payloads.
type temperatureEnvelope struct {
	TempF     *float64 `json:"temp_f"`
	Timestamp string   `json:"timestamp"`
}

type detectionEnvelope struct {
	Status     *bool    `json:"status"`
	Confidence *float64 `json:"confidence"`
	Timestamp  string   `json:"timestamp"`
}

type actuatorEnvelope struct {
	Status    *bool  `json:"status"`
	Timestamp string `json:"timestamp"`
}

type commandEnvelope struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type targetTemperatureEnvelope struct {
	TargetTempF float64 `json:"target_temp_f"`
	Timestamp   string  `json:"timestamp"`
}

// decodeTemperature parses and validates a temperature status payload.
// arrival substitutes for an unparseable (but present) timestamp.
func decodeTemperature(room string, payload []byte, arrival time.Time) (TemperatureReading, error) {
	var env temperatureEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return TemperatureReading{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if room == "" {
		return TemperatureReading{}, fmt.Errorf("%w: empty room", ErrInvalidMessage)
	}
	if env.TempF == nil {
		return TemperatureReading{}, fmt.Errorf("%w: missing temp_f", ErrInvalidMessage)
	}
	if *env.TempF < 0 {
		return TemperatureReading{}, fmt.Errorf("%w: negative temperature %.2f", ErrInvalidMessage, *env.TempF)
	}
	recordedAt, err := parseTimestamp(env.Timestamp, arrival)
	if err != nil {
		return TemperatureReading{}, err
	}

	return TemperatureReading{
		Room:       room,
		TempF:      *env.TempF,
		RecordedAt: recordedAt,
	}, nil
}

// decodeDetection parses and validates a person detection payload.
func decodeDetection(room string, payload []byte, arrival time.Time) (DetectionEvent, error) {
	var env detectionEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return DetectionEvent{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if room == "" {
		return DetectionEvent{}, fmt.Errorf("%w: empty room", ErrInvalidMessage)
	}
	if env.Status == nil {
		return DetectionEvent{}, fmt.Errorf("%w: missing status", ErrInvalidMessage)
	}
	if env.Confidence == nil {
		return DetectionEvent{}, fmt.Errorf("%w: missing confidence", ErrInvalidMessage)
	}
	if *env.Confidence < 0 || *env.Confidence > 1 {
		return DetectionEvent{}, fmt.Errorf("%w: confidence %.4f out of range [0,1]", ErrInvalidMessage, *env.Confidence)
	}
	detectedAt, err := parseTimestamp(env.Timestamp, arrival)
	if err != nil {
		return DetectionEvent{}, err
	}

	return DetectionEvent{
		Room:       room,
		Detected:   *env.Status,
		Confidence: *env.Confidence,
		DetectedAt: detectedAt,
	}, nil
}

// decodeActuatorStatus parses and validates a heater or fan status payload.
func decodeActuatorStatus(room string, kind Kind, payload []byte, arrival time.Time) (ActuatorState, error) {
	if !kind.Actuatable() {
		return ActuatorState{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	var env actuatorEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return ActuatorState{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if room == "" {
		return ActuatorState{}, fmt.Errorf("%w: empty room", ErrInvalidMessage)
	}
	if env.Status == nil {
		return ActuatorState{}, fmt.Errorf("%w: missing status", ErrInvalidMessage)
	}
	recordedAt, err := parseTimestamp(env.Timestamp, arrival)
	if err != nil {
		return ActuatorState{}, err
	}

	return ActuatorState{
		Room:       room,
		Kind:       kind,
		On:         *env.Status,
		RecordedAt: recordedAt,
	}, nil
}

// parseTimestamp converts a wire timestamp to a time.Time.
//
// A missing timestamp fails validation: a device that omits the field
// entirely is misbehaving and its reading is dropped. A present but
// malformed timestamp degrades to the arrival time, so readings from
// devices with drifting or garbled clocks are kept rather than lost.
func parseTimestamp(raw string, arrival time.Time) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, fmt.Errorf("%w: missing timestamp", ErrInvalidMessage)
	}

	ts, err := time.ParseInLocation(timestampLayout, raw, time.Local)
	if err != nil {
		return arrival, nil
	}
	return ts, nil
}

// encodeCommand builds the JSON payload for an actuator on/off command.
func encodeCommand(on bool, now time.Time) ([]byte, error) {
	status := "off"
	if on {
		status = "on"
	}
	return json.Marshal(commandEnvelope{
		Status:    status,
		Timestamp: now.Format(timestampLayout),
	})
}

// encodeTargetTemperature builds the JSON payload for a setpoint change.
func encodeTargetTemperature(targetTempF float64, now time.Time) ([]byte, error) {
	return json.Marshal(targetTemperatureEnvelope{
		TargetTempF: targetTempF,
		Timestamp:   now.Format(timestampLayout),
	})
}
