// Package api provides the HTTP REST API for RoomSense Core.
//
// It exposes the latest stored telemetry per room and accepts actuator
// commands, which are forwarded to the MQTT bridge. The server follows
// the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/roomsense/roomsense-core/internal/bridge"
	"github.com/roomsense/roomsense-core/internal/infrastructure/config"
	"github.com/roomsense/roomsense-core/internal/infrastructure/logging"
	"github.com/roomsense/roomsense-core/internal/telemetry"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// TelemetryReader serves the latest stored sample per room. Satisfied
// by *telemetry.Service.
type TelemetryReader interface {
	CurrentTemperature(ctx context.Context, room string) (*telemetry.TemperatureReading, error)
	AllCurrentTemperatures(ctx context.Context) ([]telemetry.TemperatureReading, error)
	CurrentDetection(ctx context.Context, room string) (*telemetry.DetectionEvent, error)
	AllCurrentDetections(ctx context.Context) ([]telemetry.DetectionEvent, error)
	CurrentActuatorState(ctx context.Context, kind, room string) (*telemetry.ActuatorState, error)
	AllCurrentActuatorStates(ctx context.Context, kind string) ([]telemetry.ActuatorState, error)
}

// CommandPublisher forwards actuator commands to the MQTT side.
// Satisfied by *bridge.Bridge.
type CommandPublisher interface {
	PublishCommand(room string, kind bridge.Kind, on bool) error
	PublishTargetTemperature(room string, targetTempF float64) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	Telemetry TelemetryReader
	Commands  CommandPublisher

	// PresenceThreshold is the confidence at or above which a positive
	// detection is reported as presence.
	PresenceThreshold float64

	Version string
}

// Server is the HTTP API server for RoomSense Core.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg               config.APIConfig
	logger            *logging.Logger
	telemetry         TelemetryReader
	commands          CommandPublisher
	presenceThreshold float64
	version           string
	server            *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Telemetry == nil {
		return nil, fmt.Errorf("telemetry reader is required")
	}
	if deps.Commands == nil {
		return nil, fmt.Errorf("command publisher is required")
	}

	return &Server{
		cfg:               deps.Config,
		logger:            deps.Logger,
		telemetry:         deps.Telemetry,
		commands:          deps.Commands,
		presenceThreshold: deps.PresenceThreshold,
		version:           deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the HTTP listener in a background
// goroutine. The server is stopped with Close().
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
