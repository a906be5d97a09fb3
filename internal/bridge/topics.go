package bridge

import (
	"fmt"
	"strings"
)

// Kind identifies the device class encoded in the middle topic segment.
type Kind string

// Device kinds carried on the sensor network.
const (
	KindTemperature Kind = "temperature"
	KindPerson      Kind = "person"
	KindHeater      Kind = "heater"
	KindFan         Kind = "fan"
)

// Actuatable reports whether the kind accepts on/off commands.
// Sensors report state but cannot be commanded.
func (k Kind) Actuatable() bool {
	return k == KindHeater || k == KindFan
}

// Topic structure: {room}/{kind}/{channel}
//
// Status channel (inbound, devices publish):
//
//	kitchen/temperature/status   {"temp_f": 74.1, "timestamp": "2025-11-24T19:36:55"}
//	kitchen/person/status        {"status": true, "confidence": 0.8003, "timestamp": "..."}
//	kitchen/heater/status        {"status": true, "timestamp": "..."}
//
// Command channel (outbound, bridge publishes):
//
//	kitchen/fan/command          {"status": "on", "timestamp": "..."}
//	kitchen/temperature/target   {"target_temp_f": 72.5, "timestamp": "..."}

// StatusTopicFilter returns the wildcard subscription filter covering the
// status channel of a kind across all rooms.
func StatusTopicFilter(kind Kind) string {
	return fmt.Sprintf("+/%s/status", kind)
}

// CommandTopic returns the command topic for an actuator in a room.
func CommandTopic(room string, kind Kind) string {
	return fmt.Sprintf("%s/%s/command", room, kind)
}

// TargetTemperatureTopic returns the setpoint topic for a room's thermostat.
func TargetTemperatureTopic(room string) string {
	return fmt.Sprintf("%s/temperature/target", room)
}

// SplitTopic extracts the room and kind from a {room}/{kind}/... topic.
//
// A topic with fewer than two segments yields the whole topic as the room
// and an empty kind, so the caller's validation produces a useful error
// instead of an index panic.
func SplitTopic(topic string) (room string, kind Kind) {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return topic, ""
	}
	return parts[0], Kind(parts[1])
}
