// Package bridge translates between the room device network (MQTT) and
// the telemetry store.
//
// Devices publish JSON readings on {room}/{kind}/status topics. The
// bridge subscribes to all four streams (temperature, person, heater,
// fan), validates each message, and records it. A malformed message is
// dropped with a log line; the stream keeps flowing.
//
// In the other direction the bridge publishes on/off commands to
// {room}/{fan|heater}/command and thermostat setpoints to
// {room}/temperature/target.
//
// Startup is strict: all four subscriptions must succeed or Start
// returns an error. Runtime is lenient: per-message failures never
// terminate processing.
package bridge
