package telemetry

import "errors"

// Domain errors for the telemetry package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, telemetry.ErrNoReadings) {
//	    // no data recorded yet for this room
//	}
var (
	// ErrNoReadings is returned when a room has no stored samples of the
	// requested stream.
	ErrNoReadings = errors.New("telemetry: no readings")

	// ErrInvalidKind is returned for actuator queries with a kind other
	// than heater or fan.
	ErrInvalidKind = errors.New("telemetry: invalid actuator kind")
)
