// Package telemetry stores and serves room sensor history.
//
// The bridge writes through Service (which satisfies bridge.Recorder);
// the HTTP API reads through the same Service. Storage is append-only
// SQLite, with the latest sample per room selected by maximum row id.
// An optional Mirror forwards accepted samples to InfluxDB for
// time-series analytics without affecting the write path.
package telemetry
