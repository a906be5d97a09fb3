package telemetry

import "time"

// TemperatureReading is one stored temperature sample.
type TemperatureReading struct {
	ID         int64     `json:"id"`
	Room       string    `json:"room"`
	TempF      float64   `json:"temp_f"`
	RecordedAt time.Time `json:"recorded_at"`
}

// DetectionEvent is one stored person-detection sample. Detected and
// Confidence are stored exactly as the camera reported them.
type DetectionEvent struct {
	ID         int64     `json:"id"`
	Room       string    `json:"room"`
	Detected   bool      `json:"detected"`
	Confidence float64   `json:"confidence"`
	DetectedAt time.Time `json:"detected_at"`
}

// ActuatorState is one stored heater or fan status report.
type ActuatorState struct {
	ID         int64     `json:"id"`
	Room       string    `json:"room"`
	Kind       string    `json:"kind"`
	On         bool      `json:"on"`
	RecordedAt time.Time `json:"recorded_at"`
}
