package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/roomsense/roomsense-core/internal/bridge"
)

// mockRepository records inserts and serves canned reads.
type mockRepository struct {
	mu           sync.Mutex
	temperatures []TemperatureReading
	detections   []DetectionEvent
	actuators    []ActuatorState
	insertErr    error
}

func (m *mockRepository) InsertTemperature(_ context.Context, r TemperatureReading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.temperatures = append(m.temperatures, r)
	return nil
}

func (m *mockRepository) InsertDetection(_ context.Context, e DetectionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.detections = append(m.detections, e)
	return nil
}

func (m *mockRepository) InsertActuatorState(_ context.Context, s ActuatorState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.actuators = append(m.actuators, s)
	return nil
}

func (m *mockRepository) LatestTemperature(_ context.Context, room string) (*TemperatureReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.temperatures) - 1; i >= 0; i-- {
		if m.temperatures[i].Room == room {
			r := m.temperatures[i]
			return &r, nil
		}
	}
	return nil, ErrNoReadings
}

func (m *mockRepository) AllLatestTemperatures(_ context.Context) ([]TemperatureReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.temperatures, nil
}

func (m *mockRepository) LatestDetection(_ context.Context, room string) (*DetectionEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.detections) - 1; i >= 0; i-- {
		if m.detections[i].Room == room {
			e := m.detections[i]
			return &e, nil
		}
	}
	return nil, ErrNoReadings
}

func (m *mockRepository) AllLatestDetections(_ context.Context) ([]DetectionEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detections, nil
}

func (m *mockRepository) LatestActuatorState(_ context.Context, kind, room string) (*ActuatorState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.actuators) - 1; i >= 0; i-- {
		if m.actuators[i].Kind == kind && m.actuators[i].Room == room {
			s := m.actuators[i]
			return &s, nil
		}
	}
	return nil, ErrNoReadings
}

func (m *mockRepository) AllLatestActuatorStates(_ context.Context, kind string) ([]ActuatorState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ActuatorState
	for _, s := range m.actuators {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out, nil
}

// mockMirror records every mirrored sample.
type mockMirror struct {
	mu           sync.Mutex
	temperatures []TemperatureReading
	detections   []DetectionEvent
	actuators    []ActuatorState
}

func (m *mockMirror) MirrorTemperature(r TemperatureReading) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.temperatures = append(m.temperatures, r)
}

func (m *mockMirror) MirrorDetection(e DetectionEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detections = append(m.detections, e)
}

func (m *mockMirror) MirrorActuatorState(s ActuatorState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actuators = append(m.actuators, s)
}

var sampleTime = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

func TestRecordTemperature(t *testing.T) {
	repo := &mockRepository{}
	mirror := &mockMirror{}
	svc := NewService(repo, mirror)

	err := svc.RecordTemperature(context.Background(), bridge.TemperatureReading{
		Room:       "kitchen",
		TempF:      74.1,
		RecordedAt: sampleTime,
	})
	if err != nil {
		t.Fatalf("RecordTemperature() error = %v", err)
	}

	if len(repo.temperatures) != 1 {
		t.Fatalf("stored %d readings, want 1", len(repo.temperatures))
	}
	stored := repo.temperatures[0]
	if stored.Room != "kitchen" || stored.TempF != 74.1 || !stored.RecordedAt.Equal(sampleTime) {
		t.Errorf("stored %+v", stored)
	}

	if len(mirror.temperatures) != 1 {
		t.Fatalf("mirrored %d readings, want 1", len(mirror.temperatures))
	}
}

func TestRecordTemperatureWithoutMirror(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil)

	err := svc.RecordTemperature(context.Background(), bridge.TemperatureReading{
		Room:       "kitchen",
		TempF:      70.0,
		RecordedAt: sampleTime,
	})
	if err != nil {
		t.Fatalf("RecordTemperature() error = %v", err)
	}
	if len(repo.temperatures) != 1 {
		t.Errorf("stored %d readings, want 1", len(repo.temperatures))
	}
}

func TestRecordTemperatureInsertFailure(t *testing.T) {
	repoErr := errors.New("disk full")
	repo := &mockRepository{insertErr: repoErr}
	mirror := &mockMirror{}
	svc := NewService(repo, mirror)

	err := svc.RecordTemperature(context.Background(), bridge.TemperatureReading{
		Room:       "kitchen",
		TempF:      70.0,
		RecordedAt: sampleTime,
	})
	if !errors.Is(err, repoErr) {
		t.Errorf("RecordTemperature() error = %v, want wrapped %v", err, repoErr)
	}
	if len(mirror.temperatures) != 0 {
		t.Error("failed insert must not be mirrored")
	}
}

func TestRecordDetection(t *testing.T) {
	repo := &mockRepository{}
	mirror := &mockMirror{}
	svc := NewService(repo, mirror)

	err := svc.RecordDetection(context.Background(), bridge.DetectionEvent{
		Room:       "bedroom",
		Detected:   true,
		Confidence: 0.8003,
		DetectedAt: sampleTime,
	})
	if err != nil {
		t.Fatalf("RecordDetection() error = %v", err)
	}

	if len(repo.detections) != 1 {
		t.Fatalf("stored %d events, want 1", len(repo.detections))
	}
	stored := repo.detections[0]
	if stored.Room != "bedroom" || !stored.Detected || stored.Confidence != 0.8003 {
		t.Errorf("stored %+v", stored)
	}
	if len(mirror.detections) != 1 {
		t.Errorf("mirrored %d events, want 1", len(mirror.detections))
	}
}

func TestRecordActuatorState(t *testing.T) {
	repo := &mockRepository{}
	mirror := &mockMirror{}
	svc := NewService(repo, mirror)

	err := svc.RecordActuatorState(context.Background(), bridge.ActuatorState{
		Room:       "office",
		Kind:       bridge.KindHeater,
		On:         true,
		RecordedAt: sampleTime,
	})
	if err != nil {
		t.Fatalf("RecordActuatorState() error = %v", err)
	}

	if len(repo.actuators) != 1 {
		t.Fatalf("stored %d states, want 1", len(repo.actuators))
	}
	stored := repo.actuators[0]
	if stored.Kind != "heater" || !stored.On {
		t.Errorf("stored %+v", stored)
	}
	if len(mirror.actuators) != 1 {
		t.Errorf("mirrored %d states, want 1", len(mirror.actuators))
	}
}

func TestCurrentActuatorStateKindValidation(t *testing.T) {
	svc := NewService(&mockRepository{}, nil)

	tests := []struct {
		kind    string
		wantErr bool
	}{
		{"heater", false},
		{"fan", false},
		{"temperature", true},
		{"person", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run("kind_"+tt.kind, func(t *testing.T) {
			_, err := svc.CurrentActuatorState(context.Background(), tt.kind, "office")
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidKind) {
					t.Errorf("CurrentActuatorState(%q) error = %v, want ErrInvalidKind", tt.kind, err)
				}
				return
			}
			// Valid kinds reach the repository; empty repo reports no readings
			if !errors.Is(err, ErrNoReadings) {
				t.Errorf("CurrentActuatorState(%q) error = %v, want ErrNoReadings", tt.kind, err)
			}
		})
	}
}

func TestAllCurrentActuatorStatesKindValidation(t *testing.T) {
	svc := NewService(&mockRepository{}, nil)

	_, err := svc.AllCurrentActuatorStates(context.Background(), "person")
	if !errors.Is(err, ErrInvalidKind) {
		t.Errorf("AllCurrentActuatorStates() error = %v, want ErrInvalidKind", err)
	}

	states, err := svc.AllCurrentActuatorStates(context.Background(), "fan")
	if err != nil {
		t.Fatalf("AllCurrentActuatorStates(fan) error = %v", err)
	}
	if len(states) != 0 {
		t.Errorf("got %d states from empty repository", len(states))
	}
}

func TestCurrentTemperaturePassThrough(t *testing.T) {
	repo := &mockRepository{
		temperatures: []TemperatureReading{
			{ID: 1, Room: "kitchen", TempF: 70.0, RecordedAt: sampleTime},
			{ID: 2, Room: "kitchen", TempF: 72.5, RecordedAt: sampleTime.Add(time.Minute)},
		},
	}
	svc := NewService(repo, nil)

	got, err := svc.CurrentTemperature(context.Background(), "kitchen")
	if err != nil {
		t.Fatalf("CurrentTemperature() error = %v", err)
	}
	if got.TempF != 72.5 {
		t.Errorf("TempF = %v, want 72.5", got.TempF)
	}

	_, err = svc.CurrentTemperature(context.Background(), "attic")
	if !errors.Is(err, ErrNoReadings) {
		t.Errorf("CurrentTemperature(attic) error = %v, want ErrNoReadings", err)
	}
}
