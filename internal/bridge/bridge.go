package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Bridge operation constants.
const (
	// recordTimeout bounds a single telemetry write.
	recordTimeout = 5 * time.Second
)

// Bridge connects the room device network to the telemetry store.
// It handles:
//   - Subscribing to every device status channel (all-or-nothing at startup)
//   - Decoding and validating inbound readings, dropping bad ones
//   - Recording accepted readings through the Recorder
//   - Publishing actuator commands and thermostat setpoints
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	mqtt     MQTTClient
	recorder Recorder
	qos      byte

	// presenceThreshold is the confidence at or above which a positive
	// detection is logged as occupancy. Recording is unaffected.
	presenceThreshold float64

	// Shutdown coordination
	stopOnce  sync.Once
	ctx       context.Context
	ctxCancel context.CancelFunc

	// now is swappable for tests that pin the arrival-time fallback.
	now func() time.Time

	// Logger
	logger   Logger
	loggerMu sync.RWMutex
}

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// Recorder persists decoded readings. Satisfied by *telemetry.Service.
type Recorder interface {
	// RecordTemperature stores one temperature sample.
	RecordTemperature(ctx context.Context, r TemperatureReading) error

	// RecordDetection stores one person-detection sample.
	RecordDetection(ctx context.Context, e DetectionEvent) error

	// RecordActuatorState stores one heater or fan status report.
	RecordActuatorState(ctx context.Context, s ActuatorState) error
}

// Logger is the interface for optional structured logging.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options holds configuration for creating a bridge.
type Options struct {
	// MQTTClient is the MQTT client implementation.
	MQTTClient MQTTClient

	// Recorder persists decoded readings.
	Recorder Recorder

	// QoS is the quality of service for subscriptions and publishes.
	QoS byte

	// PresenceThreshold tunes the occupancy log line for detections.
	PresenceThreshold float64

	// Logger is optional structured logger.
	Logger Logger
}

// New creates a bridge instance. Call Start to begin operation.
func New(opts Options) (*Bridge, error) {
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.Recorder == nil {
		return nil, fmt.Errorf("recorder is required")
	}

	ctx, ctxCancel := context.WithCancel(context.Background())

	return &Bridge{
		mqtt:              opts.MQTTClient,
		recorder:          opts.Recorder,
		qos:               opts.QoS,
		presenceThreshold: opts.PresenceThreshold,
		ctx:               ctx,
		ctxCancel:         ctxCancel,
		now:               time.Now,
		logger:            opts.Logger,
	}, nil
}

// Start subscribes to every device status channel.
//
// The subscriptions are all-or-nothing: they run concurrently, and if
// any of them fails Start returns that failure. A bridge listening to
// only some of its streams would silently serve partial data, so the
// caller treats an error here as fatal.
func (b *Bridge) Start(ctx context.Context) error {
	subs := []struct {
		filter  string
		handler func(topic string, payload []byte) error
	}{
		{StatusTopicFilter(KindTemperature), b.handleTemperature},
		{StatusTopicFilter(KindPerson), b.handleDetection},
		{StatusTopicFilter(KindHeater), b.handleActuatorStatus},
		{StatusTopicFilter(KindFan), b.handleActuatorStatus},
	}

	g, _ := errgroup.WithContext(ctx)
	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			if err := b.mqtt.Subscribe(sub.filter, b.qos, sub.handler); err != nil {
				return fmt.Errorf("subscribing to %s: %w", sub.filter, err)
			}
			b.logInfo("subscribed", "filter", sub.filter)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	b.logInfo("bridge started", "streams", len(subs))
	return nil
}

// Stop cancels in-flight recording operations.
// Subscriptions die with the MQTT connection; the caller closes that.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		b.ctxCancel()
		b.logInfo("bridge stopped")
	})
}

// handleTemperature processes one temperature status message.
// Errors are returned for logging but never stop the stream.
func (b *Bridge) handleTemperature(topic string, payload []byte) error {
	room, _ := SplitTopic(topic)

	reading, err := decodeTemperature(room, payload, b.now())
	if err != nil {
		return fmt.Errorf("temperature message on %s: %w", topic, err)
	}

	ctx, cancel := context.WithTimeout(b.ctx, recordTimeout)
	defer cancel()

	if err := b.recorder.RecordTemperature(ctx, reading); err != nil {
		return fmt.Errorf("recording temperature for %s: %w", reading.Room, err)
	}

	b.logInfo("temperature recorded",
		"room", reading.Room,
		"temp_f", reading.TempF)
	return nil
}

// handleDetection processes one person detection message.
func (b *Bridge) handleDetection(topic string, payload []byte) error {
	room, _ := SplitTopic(topic)

	event, err := decodeDetection(room, payload, b.now())
	if err != nil {
		return fmt.Errorf("detection message on %s: %w", topic, err)
	}

	ctx, cancel := context.WithTimeout(b.ctx, recordTimeout)
	defer cancel()

	if err := b.recorder.RecordDetection(ctx, event); err != nil {
		return fmt.Errorf("recording detection for %s: %w", event.Room, err)
	}

	if event.Detected && event.Confidence >= b.presenceThreshold {
		b.logInfo("person present",
			"room", event.Room,
			"confidence", event.Confidence)
	} else {
		b.logInfo("room empty", "room", event.Room)
	}
	return nil
}

// handleActuatorStatus processes one heater or fan status message.
// The kind comes from the topic, so one handler serves both streams.
func (b *Bridge) handleActuatorStatus(topic string, payload []byte) error {
	room, kind := SplitTopic(topic)

	state, err := decodeActuatorStatus(room, kind, payload, b.now())
	if err != nil {
		return fmt.Errorf("actuator message on %s: %w", topic, err)
	}

	ctx, cancel := context.WithTimeout(b.ctx, recordTimeout)
	defer cancel()

	if err := b.recorder.RecordActuatorState(ctx, state); err != nil {
		return fmt.Errorf("recording %s state for %s: %w", state.Kind, state.Room, err)
	}

	b.logInfo("actuator state recorded",
		"room", state.Room,
		"kind", state.Kind,
		"on", state.On)
	return nil
}

// PublishCommand sends an on/off command to an actuator in a room.
//
// Only heaters and fans accept commands; any other kind is rejected
// with ErrUnknownKind before anything reaches the broker.
func (b *Bridge) PublishCommand(room string, kind Kind, on bool) error {
	if !kind.Actuatable() {
		return fmt.Errorf("%w: %q cannot be commanded", ErrUnknownKind, kind)
	}
	if room == "" {
		return ErrInvalidRoom
	}

	payload, err := encodeCommand(on, b.now())
	if err != nil {
		return fmt.Errorf("encoding command: %w", err)
	}

	topic := CommandTopic(room, kind)
	if err := b.mqtt.Publish(topic, payload, b.qos, false); err != nil {
		return fmt.Errorf("publishing command to %s: %w", topic, err)
	}

	b.logInfo("command published",
		"room", room,
		"kind", kind,
		"on", on)
	return nil
}

// PublishTargetTemperature sends a thermostat setpoint to a room.
func (b *Bridge) PublishTargetTemperature(room string, targetTempF float64) error {
	if room == "" {
		return ErrInvalidRoom
	}
	if targetTempF < 0 {
		return fmt.Errorf("%w: negative target temperature %.2f", ErrInvalidMessage, targetTempF)
	}

	payload, err := encodeTargetTemperature(targetTempF, b.now())
	if err != nil {
		return fmt.Errorf("encoding target temperature: %w", err)
	}

	topic := TargetTemperatureTopic(room)
	if err := b.mqtt.Publish(topic, payload, b.qos, false); err != nil {
		return fmt.Errorf("publishing target temperature to %s: %w", topic, err)
	}

	b.logInfo("target temperature published",
		"room", room,
		"target_temp_f", targetTempF)
	return nil
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
}

func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}
