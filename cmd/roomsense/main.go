// RoomSense Core - Room Telemetry Bridge
//
// This is the main entry point for the RoomSense Core service. It
// bridges MQTT room sensors (temperature, person detection, heater and
// fan status) into SQLite, optionally mirrors samples to InfluxDB, and
// exposes the latest state plus actuator commands over a REST API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/roomsense/roomsense-core/migrations"

	"github.com/roomsense/roomsense-core/internal/api"
	"github.com/roomsense/roomsense-core/internal/bridge"
	"github.com/roomsense/roomsense-core/internal/infrastructure/config"
	"github.com/roomsense/roomsense-core/internal/infrastructure/database"
	"github.com/roomsense/roomsense-core/internal/infrastructure/influxdb"
	"github.com/roomsense/roomsense-core/internal/infrastructure/logging"
	"github.com/roomsense/roomsense-core/internal/infrastructure/mqtt"
	"github.com/roomsense/roomsense-core/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting RoomSense Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to InfluxDB (optional mirror)
	var influxClient *influxdb.Client
	var mirror telemetry.Mirror
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		mirror = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Telemetry service: SQLite writes, optional InfluxDB mirror
	repo := telemetry.NewSQLiteRepository(db.DB)
	telemetryService := telemetry.NewService(repo, mirror)

	// Connect to MQTT broker. Bootstrap failures are fatal: a bridge
	// that never came up is an operational error, unlike a runtime
	// drop which paho retries internally.
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		switch {
		case errors.Is(err, mqtt.ErrAuthFailed):
			log.Error("MQTT authentication rejected; check mqtt.auth credentials", "error", err)
		case errors.Is(err, mqtt.ErrTimeout):
			log.Error("MQTT broker unreachable within bootstrap timeout",
				"timeout_s", cfg.MQTT.BootstrapTimeout, "error", err)
		default:
			log.Error("MQTT connection failed", "error", err)
		}
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Start the sensor bridge. All four status streams must subscribe;
	// a partial bridge would silently drop telemetry.
	sensorBridge, err := bridge.New(bridge.Options{
		MQTTClient:        &mqttBridgeAdapter{client: mqttClient},
		Recorder:          telemetryService,
		QoS:               byte(cfg.MQTT.QoS),
		PresenceThreshold: cfg.Presence.ConfidenceThreshold,
		Logger:            log,
	})
	if err != nil {
		return fmt.Errorf("creating sensor bridge: %w", err)
	}
	if err := sensorBridge.Start(ctx); err != nil {
		return fmt.Errorf("starting sensor bridge: %w", err)
	}
	defer func() {
		log.Info("stopping sensor bridge")
		sensorBridge.Stop()
	}()
	log.Info("sensor bridge started")

	// Start the REST API
	apiServer, err := api.New(api.Deps{
		Config:            cfg.API,
		Logger:            log,
		Telemetry:         telemetryService,
		Commands:          sensorBridge,
		PresenceThreshold: cfg.Presence.ConfidenceThreshold,
		Version:           version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. Sensor bridge
	// 3. MQTT
	// 4. InfluxDB (if enabled)
	// 5. Database

	log.Info("RoomSense Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ROOMSENSE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ROOMSENSE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// mqttBridgeAdapter adapts the infrastructure MQTT client to the
// bridge's MQTTClient interface. The bridge declares its Subscribe
// handler as a plain func type, so the named mqtt.MessageHandler
// cannot satisfy it directly.
type mqttBridgeAdapter struct {
	client *mqtt.Client
}

// Publish implements bridge.MQTTClient.
func (a *mqttBridgeAdapter) Publish(topic string, payload []byte, qos byte, retained bool) error {
	return a.client.Publish(topic, payload, qos, retained)
}

// Subscribe implements bridge.MQTTClient.
func (a *mqttBridgeAdapter) Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error {
	return a.client.Subscribe(topic, qos, handler)
}

// IsConnected implements bridge.MQTTClient.
func (a *mqttBridgeAdapter) IsConnected() bool {
	return a.client.IsConnected()
}
