package mqtt

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/roomsense/roomsense-core/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "roomsense-test",
			TLS:      false,
		},
		QoS:              1,
		BootstrapTimeout: 5,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     10,
		},
	}
}

// disconnectedClient returns a client that was never connected.
// IsConnected short-circuits on the tracked state, so validation
// paths are exercised without a broker.
func disconnectedClient() *Client {
	return &Client{
		cfg:           testConfig(),
		subscriptions: make(map[string]subscription),
	}
}

func TestClassifyConnectError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "not authorized",
			err:  errors.New("not Authorized"),
			want: ErrAuthFailed,
		},
		{
			name: "bad credentials",
			err:  errors.New("bad user name or password"),
			want: ErrAuthFailed,
		},
		{
			name: "connection refused",
			err:  errors.New("dial tcp 127.0.0.1:1883: connect: connection refused"),
			want: ErrConnectionFailed,
		},
		{
			name: "dns failure",
			err:  errors.New("dial tcp: lookup broker.invalid: no such host"),
			want: ErrConnectionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyConnectError(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("classifyConnectError(%v) = %v, want %v", tt.err, got, tt.want)
			}
			// Original error must survive wrapping
			if !strings.Contains(got.Error(), tt.err.Error()) {
				t.Errorf("wrapped error %v lost original %v", got, tt.err)
			}
		})
	}
}

func TestBuildClientOptions(t *testing.T) {
	t.Run("plain tcp", func(t *testing.T) {
		opts := buildClientOptions(testConfig())

		servers := opts.Servers
		if len(servers) != 1 {
			t.Fatalf("expected 1 broker, got %d", len(servers))
		}
		if servers[0].Scheme != "tcp" {
			t.Errorf("scheme = %q, want tcp", servers[0].Scheme)
		}
		if servers[0].Host != "127.0.0.1:1883" {
			t.Errorf("host = %q, want 127.0.0.1:1883", servers[0].Host)
		}
		if opts.ClientID != "roomsense-test" {
			t.Errorf("client id = %q", opts.ClientID)
		}
		if !opts.AutoReconnect {
			t.Error("AutoReconnect should be enabled")
		}
		if opts.ConnectRetry {
			t.Error("ConnectRetry should be disabled so bootstrap fails fast")
		}
		if opts.ConnectRetryInterval != 1*time.Second {
			t.Errorf("initial retry interval = %v, want 1s", opts.ConnectRetryInterval)
		}
		if opts.MaxReconnectInterval != 10*time.Second {
			t.Errorf("max reconnect interval = %v, want 10s", opts.MaxReconnectInterval)
		}
	})

	t.Run("tls switches scheme", func(t *testing.T) {
		cfg := testConfig()
		cfg.Broker.TLS = true
		cfg.Broker.Port = 8883

		opts := buildClientOptions(cfg)
		if opts.Servers[0].Scheme != "ssl" {
			t.Errorf("scheme = %q, want ssl", opts.Servers[0].Scheme)
		}
		if opts.TLSConfig == nil {
			t.Fatal("TLSConfig should be set")
		}
	})

	t.Run("credentials applied when present", func(t *testing.T) {
		cfg := testConfig()
		cfg.Auth.Username = "bridge"
		cfg.Auth.Password = "secret"

		opts := buildClientOptions(cfg)
		if opts.Username != "bridge" || opts.Password != "secret" {
			t.Errorf("credentials not applied: %q/%q", opts.Username, opts.Password)
		}
	})
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("roomsense-test")
	if !strings.Contains(online, `"status":"online"`) {
		t.Errorf("online payload missing status: %s", online)
	}
	if !strings.Contains(online, `"client_id":"roomsense-test"`) {
		t.Errorf("online payload missing client id: %s", online)
	}

	offline := buildOfflinePayload("roomsense-test")
	if !strings.Contains(offline, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload missing reason: %s", offline)
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	client := disconnectedClient()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() expected error for cancelled context")
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	client := disconnectedClient()

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestPublishValidation(t *testing.T) {
	client := disconnectedClient()

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		want    error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "kitchen/fan/command", []byte("x"), 3, ErrInvalidQoS},
		{"oversized payload", "kitchen/fan/command", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", "kitchen/fan/command", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.want) {
				t.Errorf("Publish() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSubscribeValidation(t *testing.T) {
	client := disconnectedClient()
	noop := func(topic string, payload []byte) error { return nil }

	tests := []struct {
		name    string
		topic   string
		qos     byte
		handler MessageHandler
		want    error
	}{
		{"empty topic", "", 1, noop, ErrInvalidTopic},
		{"invalid qos", "+/temperature/status", 3, noop, ErrInvalidQoS},
		{"nil handler", "+/temperature/status", 1, nil, ErrSubscribeFailed},
		{"not connected", "+/temperature/status", 1, noop, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Subscribe(tt.topic, tt.qos, tt.handler)
			if !errors.Is(err, tt.want) {
				t.Errorf("Subscribe() error = %v, want %v", err, tt.want)
			}
		})
	}

	// Failed subscribes must not leave tracking entries behind
	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after failed subscribes, want 0", client.SubscriptionCount())
	}
}

func TestUnsubscribeValidation(t *testing.T) {
	client := disconnectedClient()

	if err := client.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe(\"\") error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Unsubscribe("+/temperature/status"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Unsubscribe() error = %v, want ErrNotConnected", err)
	}
}

func TestSubscriptionTracking(t *testing.T) {
	client := disconnectedClient()

	client.subMu.Lock()
	client.subscriptions["+/temperature/status"] = subscription{
		topic: "+/temperature/status",
		qos:   1,
	}
	client.subMu.Unlock()

	if !client.HasSubscription("+/temperature/status") {
		t.Error("HasSubscription() = false for tracked topic")
	}
	if client.HasSubscription("+/person/status") {
		t.Error("HasSubscription() = true for untracked topic")
	}
	if client.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", client.SubscriptionCount())
	}

	client.dropSubscription("+/temperature/status")
	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after drop, want 0", client.SubscriptionCount())
	}
}

// capturingLogger records log calls for assertion.
type capturingLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (l *capturingLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *capturingLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

// fakeMessage implements the paho Message interface surface wrapHandler uses.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

func TestWrapHandlerRecoversPanic(t *testing.T) {
	client := disconnectedClient()
	logger := &capturingLogger{}
	client.SetLogger(logger)

	wrapped := client.wrapHandler(func(topic string, payload []byte) error {
		panic("handler exploded")
	})

	// Must not propagate the panic
	wrapped(nil, &fakeMessage{topic: "kitchen/temperature/status", payload: []byte("{}")})

	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.errors) != 1 {
		t.Errorf("expected 1 error log for panic, got %d", len(logger.errors))
	}
}

func TestWrapHandlerLogsError(t *testing.T) {
	client := disconnectedClient()
	logger := &capturingLogger{}
	client.SetLogger(logger)

	wrapped := client.wrapHandler(func(topic string, payload []byte) error {
		return errors.New("decode failed")
	})

	wrapped(nil, &fakeMessage{topic: "kitchen/temperature/status", payload: []byte("not json")})

	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.warns) != 1 {
		t.Errorf("expected 1 warn log for handler error, got %d", len(logger.warns))
	}
}

func TestConnectionCallbacks(t *testing.T) {
	client := disconnectedClient()

	var connectCalled, disconnectCalled bool
	client.SetOnConnect(func() { connectCalled = true })
	client.SetOnDisconnect(func(err error) { disconnectCalled = true })

	client.callbackMu.RLock()
	onConnect := client.onConnect
	onDisconnect := client.onDisconnect
	client.callbackMu.RUnlock()

	onConnect()
	onDisconnect(errors.New("connection lost"))

	if !connectCalled {
		t.Error("onConnect callback not stored")
	}
	if !disconnectCalled {
		t.Error("onDisconnect callback not stored")
	}
}
