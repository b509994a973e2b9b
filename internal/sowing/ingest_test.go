package sowing

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/agrosirius-core/internal/infrastructure/mqtt"
)

type fakeSubscriber struct {
	topic        string
	qos          byte
	handler      mqtt.MessageHandler
	unsubscribed string
	err          error
}

func (f *fakeSubscriber) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	if f.err != nil {
		return f.err
	}
	f.topic, f.qos, f.handler = topic, qos, handler
	return nil
}

func (f *fakeSubscriber) Unsubscribe(topic string) error {
	f.unsubscribed = topic
	return nil
}

func TestIngester_StartSubscribesToAllNodes(t *testing.T) {
	sub := &fakeSubscriber{}
	in := NewIngester(NewLedger(&memRepository{}), sub, 1)

	if err := in.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if sub.topic != "agrosirius/sowing/+" {
		t.Errorf("subscribed to %q, want %q", sub.topic, "agrosirius/sowing/+")
	}
	if sub.qos != 1 {
		t.Errorf("qos = %d, want 1", sub.qos)
	}
	if sub.handler == nil {
		t.Fatal("handler not registered")
	}

	if err := in.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if sub.unsubscribed != "agrosirius/sowing/+" {
		t.Errorf("unsubscribed %q, want %q", sub.unsubscribed, "agrosirius/sowing/+")
	}
}

func TestIngester_StartError(t *testing.T) {
	sub := &fakeSubscriber{err: errors.New("not connected")}
	in := NewIngester(NewLedger(&memRepository{}), sub, 1)

	if err := in.Start(); err == nil {
		t.Fatal("Start() error = nil, want error")
	}
}

func TestIngester_HandleMessage(t *testing.T) {
	tests := []struct {
		name      string
		topic     string
		payload   string
		wantCount int
		wantNode  string
	}{
		{
			name:      "node from payload",
			topic:     "agrosirius/sowing/node-9",
			payload:   `{"id":"a","timestamp":"2026-03-01","node":"tablet-2","crop":"Café","block":"Lote 1","sector":"Sector A","hectares":1}`,
			wantCount: 1,
			wantNode:  "tablet-2",
		},
		{
			name:      "node from topic",
			topic:     "agrosirius/sowing/node-9",
			payload:   `{"id":"b","timestamp":"2026-03-01","crop":"Café","block":"Lote 1","sector":"Sector A"}`,
			wantCount: 1,
			wantNode:  "node-9",
		},
		{
			name:    "malformed json",
			topic:   "agrosirius/sowing/node-9",
			payload: `{"id":`,
		},
		{
			name:    "missing sector",
			topic:   "agrosirius/sowing/node-9",
			payload: `{"id":"c","timestamp":"2026-03-01","crop":"Café","block":"Lote 1"}`,
		},
		{
			name:    "bad timestamp",
			topic:   "agrosirius/sowing/node-9",
			payload: `{"id":"d","timestamp":"soon","crop":"Café","block":"Lote 1","sector":"Sector A"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memRepository{}
			in := NewIngester(NewLedger(repo), &fakeSubscriber{}, 1)

			if err := in.HandleMessage(tt.topic, []byte(tt.payload)); err != nil {
				t.Fatalf("HandleMessage() error = %v, want nil", err)
			}

			events, _ := repo.List(context.Background()) //nolint:errcheck // memRepository never fails List
			if len(events) != tt.wantCount {
				t.Fatalf("recorded %d events, want %d", len(events), tt.wantCount)
			}
			if tt.wantCount > 0 && events[0].Node != tt.wantNode {
				t.Errorf("Node = %q, want %q", events[0].Node, tt.wantNode)
			}
		})
	}
}

func TestIngester_HandleMessageDuplicateDropped(t *testing.T) {
	repo := &memRepository{}
	in := NewIngester(NewLedger(repo), &fakeSubscriber{}, 1)
	payload := []byte(`{"id":"a","timestamp":"2026-03-01","crop":"Café","block":"Lote 1","sector":"Sector A"}`)

	for i := 0; i < 2; i++ {
		if err := in.HandleMessage("agrosirius/sowing/n", payload); err != nil {
			t.Fatalf("HandleMessage() #%d error = %v", i, err)
		}
	}
	if len(repo.events) != 1 {
		t.Errorf("recorded %d events, want 1", len(repo.events))
	}
}

func TestIngester_HandleMessageStorageError(t *testing.T) {
	in := NewIngester(NewLedger(&memRepository{appendErr: errors.New("locked")}), &fakeSubscriber{}, 1)
	payload := []byte(`{"id":"a","timestamp":"2026-03-01","crop":"Café","block":"Lote 1","sector":"Sector A"}`)

	if err := in.HandleMessage("agrosirius/sowing/n", payload); err == nil {
		t.Fatal("HandleMessage() error = nil, want storage error")
	}
}
