// Package influxdb mirrors accepted telemetry into InfluxDB.
//
// It wraps the official influxdb-client-go v2 library and implements
// telemetry.Mirror, so the telemetry service can forward every stored
// sample to a time-series bucket without coupling to the client API.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // mirror is optional; log and continue without it
//	}
//	defer client.Close()
//
//	svc := telemetry.NewService(repo, client, logger)
//
// # Error Handling
//
// Write operations are non-blocking; batch errors are delivered via the
// SetOnError callback. Connection and health check errors are returned
// directly. The mirror is best-effort: SQLite holds the authoritative
// copy of every sample.
package influxdb
