package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/agrosirius-core/internal/infrastructure/config"
)

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "agrosirius-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// requireBroker connects to a local broker or skips the test.
func requireBroker(t *testing.T, clientID string) *Client {
	t.Helper()
	cfg := testConfig()
	cfg.Broker.ClientID = clientID

	client, err := Connect(cfg)
	if err != nil {
		t.Skipf("MQTT broker not available at 127.0.0.1:1883: %v", err)
	}
	t.Cleanup(func() { client.Close() }) //nolint:errcheck // Test cleanup
	return client
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
	errs  []string
}

func (l *recordingLogger) Info(string, ...any) {}
func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}
func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	l.errs = append(l.errs, msg)
	l.mu.Unlock()
}

func TestDisconnectedClient(t *testing.T) {
	c := newClient(testConfig())

	if c.IsConnected() {
		t.Fatal("new client should not be connected")
	}
	if err := c.Publish("agrosirius/test", []byte("x"), 1, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
	noop := func(string, []byte) error { return nil }
	if err := c.Subscribe(Topics{}.AllSowingReports(), 1, noop); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() error = %v, want ErrNotConnected", err)
	}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
	if c.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", c.SubscriptionCount())
	}
}

func TestPublishValidation(t *testing.T) {
	c := newClient(testConfig())

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "agrosirius/test", []byte("x"), 3, ErrInvalidQoS},
		{"oversized payload", "agrosirius/test", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Publish(tt.topic, tt.payload, tt.qos, false); !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if err := c.PublishJSON("agrosirius/test", func() {}); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("PublishJSON(func) error = %v, want ErrPublishFailed", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	c := newClient(testConfig())

	if err := c.Subscribe("", 1, func(string, []byte) error { return nil }); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe(empty) error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Subscribe("a/b", 5, func(string, []byte) error { return nil }); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Subscribe(qos 5) error = %v, want ErrInvalidQoS", err)
	}
	if err := c.Subscribe("a/b", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe(nil handler) error = %v, want ErrSubscribeFailed", err)
	}
	if err := c.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe(empty) error = %v, want ErrInvalidTopic", err)
	}
}

func TestDispatch(t *testing.T) {
	c := newClient(testConfig())
	logger := &recordingLogger{}
	c.SetLogger(logger)

	c.dispatch(func(string, []byte) error { return errors.New("bad payload") }, "agrosirius/sowing/n1", nil)
	c.dispatch(func(string, []byte) error { panic("boom") }, "agrosirius/sowing/n1", nil)

	var gotTopic string
	c.dispatch(func(topic string, _ []byte) error { gotTopic = topic; return nil }, "agrosirius/sowing/n2", nil)

	if len(logger.warns) != 1 {
		t.Errorf("warns = %v, want one handler error", logger.warns)
	}
	if len(logger.errs) != 1 {
		t.Errorf("errs = %v, want one recovered panic", logger.errs)
	}
	if gotTopic != "agrosirius/sowing/n2" {
		t.Errorf("handler topic = %q, want agrosirius/sowing/n2", gotTopic)
	}
}

func TestCloseUnconnected(t *testing.T) {
	var nilClient *Client
	if err := nilClient.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
	if err := newClient(testConfig()).Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Auth.Username = "finca"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "ssl://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want ssl://127.0.0.1:1883", opts.Servers)
	}
	if opts.ClientID != "agrosirius-test" {
		t.Errorf("ClientID = %q, want agrosirius-test", opts.ClientID)
	}
	if opts.Username != "finca" || opts.Password != "secret" {
		t.Errorf("credentials not applied: %q/%q", opts.Username, opts.Password)
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect should be enabled")
	}
	if opts.TLSConfig == nil {
		t.Error("TLSConfig should be set when TLS is enabled")
	}
}

func TestStatusPayloads(t *testing.T) {
	tests := []struct {
		name       string
		payload    []byte
		wantStatus string
		wantReason string
	}{
		{"online", buildOnlinePayload("core-1"), "online", ""},
		{"offline", buildOfflinePayload("core-1"), "offline", "graceful_shutdown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p statusPayload
			if err := json.Unmarshal(tt.payload, &p); err != nil {
				t.Fatalf("payload is not JSON: %v", err)
			}
			if p.Status != tt.wantStatus || p.Reason != tt.wantReason || p.ClientID != "core-1" {
				t.Errorf("payload = %+v", p)
			}
			if _, err := time.Parse(time.RFC3339, p.Timestamp); err != nil {
				t.Errorf("timestamp %q is not RFC3339", p.Timestamp)
			}
		})
	}
}

func TestTopics(t *testing.T) {
	topics := Topics{}
	tests := []struct {
		got, want string
	}{
		{topics.SowingReport("tablet-07"), "agrosirius/sowing/tablet-07"},
		{topics.AllSowingReports(), "agrosirius/sowing/+"},
		{topics.CoreSummary(), "agrosirius/core/summary"},
		{topics.CorePlots(), "agrosirius/core/plots"},
		{topics.SystemStatus(), "agrosirius/system/status"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("topic = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestNodeFromSowingTopic(t *testing.T) {
	tests := []struct {
		topic, want string
	}{
		{"agrosirius/sowing/tablet-07", "tablet-07"},
		{"agrosirius/sowing/", ""},
		{"agrosirius/sowing/a/b", ""},
		{"agrosirius/core/summary", ""},
		{"other/sowing/x", ""},
	}
	for _, tt := range tests {
		if got := NodeFromSowingTopic(tt.topic); got != tt.want {
			t.Errorf("NodeFromSowingTopic(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}

func TestPublishSubscribeRoundtrip(t *testing.T) {
	client := requireBroker(t, "agrosirius-test-roundtrip")

	received := make(chan []byte, 1)
	topic := Topics{}.SowingReport("roundtrip-test")
	err := client.Subscribe(Topics{}.AllSowingReports(), 1, func(got string, payload []byte) error {
		if got == topic {
			received <- payload
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !client.HasSubscription(Topics{}.AllSowingReports()) {
		t.Error("subscription not tracked")
	}

	if err := client.Publish(topic, []byte(`{"crop":"Cacao"}`), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case payload := <-received:
		if string(payload) != `{"crop":"Cacao"}` {
			t.Errorf("payload = %s", payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	if err := client.Unsubscribe(Topics{}.AllSowingReports()); err != nil {
		t.Errorf("Unsubscribe() error = %v", err)
	}
	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", client.SubscriptionCount())
	}
}
