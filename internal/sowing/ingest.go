package sowing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/agrosirius-core/internal/infrastructure/mqtt"
)

// ingestTimeout bounds a single ledger write from the MQTT callback.
const ingestTimeout = 5 * time.Second

// Subscriber is the part of the MQTT client the ingester needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Ingester feeds MQTT sowing reports into a Ledger.
//
// Reports arrive on agrosirius/sowing/{node}. When the payload has no
// node field the topic segment is used. Malformed or invalid reports
// are logged and dropped; they never stop the subscription.
type Ingester struct {
	ledger *Ledger
	sub    Subscriber
	qos    byte
	logger Logger
}

// NewIngester creates an ingester. Call Start to subscribe.
func NewIngester(ledger *Ledger, sub Subscriber, qos byte) *Ingester {
	return &Ingester{ledger: ledger, sub: sub, qos: qos, logger: noopLogger{}}
}

// SetLogger sets the logger for the ingester.
func (in *Ingester) SetLogger(logger Logger) {
	in.logger = logger
}

// Start subscribes to every node's report topic.
func (in *Ingester) Start() error {
	topic := mqtt.Topics{}.AllSowingReports()
	if err := in.sub.Subscribe(topic, in.qos, in.HandleMessage); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	in.logger.Info("sowing ingester subscribed", "topic", topic)
	return nil
}

// Stop removes the subscription.
func (in *Ingester) Stop() error {
	return in.sub.Unsubscribe(mqtt.Topics{}.AllSowingReports())
}

// HandleMessage decodes and records one report. It satisfies
// mqtt.MessageHandler. Rejected reports return nil after logging so the
// client does not log them twice.
func (in *Ingester) HandleMessage(topic string, payload []byte) error {
	var r Report
	if err := json.Unmarshal(payload, &r); err != nil {
		in.logger.Warn("dropping malformed sowing report", "topic", topic, "error", err)
		return nil
	}
	if r.Node == "" {
		r.Node = mqtt.NodeFromSowingTopic(topic)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	if _, err := in.ledger.Record(ctx, r); err != nil {
		if errors.Is(err, ErrInvalidEvent) || errors.Is(err, ErrEventExists) {
			in.logger.Warn("dropping sowing report", "topic", topic, "node", r.Node, "error", err)
			return nil
		}
		return fmt.Errorf("recording report from %s: %w", r.Node, err)
	}
	return nil
}
