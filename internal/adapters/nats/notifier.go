package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/sunnahassistant/geocoding-service/internal/pkg/metrics"
)

const alertSubject = "geocoding.alerts.operator"

// alertMessage is the payload published for each operator alert.
type alertMessage struct {
	Service string    `json:"service"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// Notifier implements ports.Notifier over NATS JetStream. Delivery is
// best-effort: publish failures are logged and swallowed, never surfaced to
// the request path.
type Notifier struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	service string
}

// NewNotifier connects to NATS and ensures the operator alert stream exists.
func NewNotifier(url, service string) (*Notifier, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "OPERATOR_ALERTS",
		Subjects:  []string{"geocoding.alerts.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Notifier{conn: conn, js: js, service: service}, nil
}

// Notify publishes an operator alert and returns immediately. Failures are
// logged, not propagated.
func (n *Notifier) Notify(ctx context.Context, message string) {
	data, err := json.Marshal(alertMessage{
		Service: n.service,
		Message: message,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "marshal operator alert", "error", err)
		return
	}

	metrics.OperatorAlerts.Inc()
	go func() {
		if _, err := n.js.Publish(alertSubject, data); err != nil {
			slog.Error("publish operator alert", "error", err)
		}
	}()
}

// IsConnected reports NATS connectivity for the readiness probe.
func (n *Notifier) IsConnected() bool {
	return n.conn.IsConnected()
}

// Close drains and closes the connection.
func (n *Notifier) Close() {
	_ = n.conn.Drain()
}
