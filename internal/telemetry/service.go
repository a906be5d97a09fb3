package telemetry

import (
	"context"
	"fmt"

	"github.com/roomsense/roomsense-core/internal/bridge"
)

// Mirror receives a copy of every accepted sample for time-series
// analytics. Implementations must not block; failures are invisible to
// the write path (the SQLite row is already committed).
type Mirror interface {
	MirrorTemperature(r TemperatureReading)
	MirrorDetection(e DetectionEvent)
	MirrorActuatorState(s ActuatorState)
}

// Service coordinates telemetry writes and reads. It satisfies
// bridge.Recorder on the write side and backs the HTTP API on the
// read side.
type Service struct {
	repo   Repository
	mirror Mirror // optional
}

// NewService creates a telemetry service. mirror may be nil.
func NewService(repo Repository, mirror Mirror) *Service {
	return &Service{
		repo:   repo,
		mirror: mirror,
	}
}

// RecordTemperature stores one validated temperature sample.
func (s *Service) RecordTemperature(ctx context.Context, r bridge.TemperatureReading) error {
	reading := TemperatureReading{
		Room:       r.Room,
		TempF:      r.TempF,
		RecordedAt: r.RecordedAt,
	}

	if err := s.repo.InsertTemperature(ctx, reading); err != nil {
		return fmt.Errorf("storing temperature: %w", err)
	}

	if s.mirror != nil {
		s.mirror.MirrorTemperature(reading)
	}
	return nil
}

// RecordDetection stores one validated person-detection sample.
func (s *Service) RecordDetection(ctx context.Context, e bridge.DetectionEvent) error {
	event := DetectionEvent{
		Room:       e.Room,
		Detected:   e.Detected,
		Confidence: e.Confidence,
		DetectedAt: e.DetectedAt,
	}

	if err := s.repo.InsertDetection(ctx, event); err != nil {
		return fmt.Errorf("storing detection: %w", err)
	}

	if s.mirror != nil {
		s.mirror.MirrorDetection(event)
	}
	return nil
}

// RecordActuatorState stores one validated heater or fan status report.
func (s *Service) RecordActuatorState(ctx context.Context, st bridge.ActuatorState) error {
	state := ActuatorState{
		Room:       st.Room,
		Kind:       string(st.Kind),
		On:         st.On,
		RecordedAt: st.RecordedAt,
	}

	if err := s.repo.InsertActuatorState(ctx, state); err != nil {
		return fmt.Errorf("storing actuator state: %w", err)
	}

	if s.mirror != nil {
		s.mirror.MirrorActuatorState(state)
	}
	return nil
}

// CurrentTemperature returns the latest temperature sample for a room.
func (s *Service) CurrentTemperature(ctx context.Context, room string) (*TemperatureReading, error) {
	return s.repo.LatestTemperature(ctx, room)
}

// AllCurrentTemperatures returns the latest sample for every room.
func (s *Service) AllCurrentTemperatures(ctx context.Context) ([]TemperatureReading, error) {
	return s.repo.AllLatestTemperatures(ctx)
}

// CurrentDetection returns the latest detection for a room.
func (s *Service) CurrentDetection(ctx context.Context, room string) (*DetectionEvent, error) {
	return s.repo.LatestDetection(ctx, room)
}

// AllCurrentDetections returns the latest detection for every room.
func (s *Service) AllCurrentDetections(ctx context.Context) ([]DetectionEvent, error) {
	return s.repo.AllLatestDetections(ctx)
}

// CurrentActuatorState returns the latest heater or fan state for a room.
func (s *Service) CurrentActuatorState(ctx context.Context, kind, room string) (*ActuatorState, error) {
	if !validActuatorKind(kind) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return s.repo.LatestActuatorState(ctx, kind, room)
}

// AllCurrentActuatorStates returns the latest heater or fan state for
// every room.
func (s *Service) AllCurrentActuatorStates(ctx context.Context, kind string) ([]ActuatorState, error) {
	if !validActuatorKind(kind) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return s.repo.AllLatestActuatorStates(ctx, kind)
}

func validActuatorKind(kind string) bool {
	return kind == string(bridge.KindHeater) || kind == string(bridge.KindFan)
}
