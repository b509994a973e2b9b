package farm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/nerrad567/agrosirius-core/internal/geo"
	"github.com/nerrad567/agrosirius-core/internal/plot"
	"github.com/nerrad567/agrosirius-core/internal/sowing"
)

type fakeRegistry struct {
	boundaries []plot.Boundary
	err        error
}

func (f *fakeRegistry) ListBoundaries(context.Context) ([]plot.Boundary, error) {
	return f.boundaries, f.err
}

type fakeLedger struct {
	events []sowing.Event
	err    error
}

func (f *fakeLedger) ListEvents(context.Context) ([]sowing.Event, error) {
	return f.events, f.err
}

type cropPoint struct {
	crop     string
	hectares float64
	plots    int
}

type fakeMetrics struct {
	mu     sync.Mutex
	crops  []cropPoint
	counts [4]int
	total  float64
}

func (m *fakeMetrics) WriteCropArea(crop string, hectares float64, plots int, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.crops = append(m.crops, cropPoint{crop, hectares, plots})
}

func (m *fakeMetrics) WritePlotCounts(blocks, sectors, sown, empty int, total float64, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = [4]int{blocks, sectors, sown, empty}
	m.total = total
}

type fakePublisher struct {
	mu       sync.Mutex
	messages map[string]any
	err      error
}

func (p *fakePublisher) PublishJSON(topic string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if p.messages == nil {
		p.messages = make(map[string]any)
	}
	p.messages[topic] = v
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

var square = []geo.Point{
	{Lat: 0, Lon: 0},
	{Lat: 0, Lon: 0.001},
	{Lat: 0.001, Lon: 0.001},
	{Lat: 0.001, Lon: 0},
}

func testService() *Service {
	reg := &fakeRegistry{boundaries: []plot.Boundary{
		{Key: plot.Key{Block: "Lote 1", Sector: "Sector A"}, Vertices: square},
		{Key: plot.Key{Block: "Lote 1", Sector: "Sector B"}, Vertices: square},
	}}
	ledger := &fakeLedger{events: []sowing.Event{
		{ID: "e1", Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Crop: "Café",
			Key: plot.Key{Block: "Lote 1", Sector: "Sector A"}},
		{ID: "e2", Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Crop: "Cacao",
			Key: plot.Key{Block: "Lote 9", Sector: "Sector Z"}},
	}}
	svc := NewService(reg, ledger)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_Snapshot(t *testing.T) {
	snap, err := testService().Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if len(snap.Plots) != 2 {
		t.Fatalf("got %d plots, want 2", len(snap.Plots))
	}
	if !snap.Plots[0].IsSown() || snap.Plots[1].IsSown() {
		t.Errorf("sown state = %v/%v, want true/false", snap.Plots[0].IsSown(), snap.Plots[1].IsSown())
	}
	if c := snap.Summary.Counts; c.Blocks != 1 || c.Sectors != 2 || c.Sown != 1 || c.Empty != 1 {
		t.Errorf("Counts = %+v, want 1 block 2 sectors 1 sown 1 empty", c)
	}
	for _, ct := range snap.Summary.ByCrop {
		if ct.Crop == "Cacao" {
			t.Error("unmatched Cacao event leaked into ByCrop")
		}
	}
	if len(snap.Events) != 2 {
		t.Errorf("got %d events, want 2", len(snap.Events))
	}
	if !snap.TakenAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("TakenAt = %v", snap.TakenAt)
	}
}

func TestService_SnapshotErrors(t *testing.T) {
	boom := errors.New("sheet unavailable")

	tests := []struct {
		name   string
		reg    *fakeRegistry
		ledger *fakeLedger
	}{
		{"registry fails", &fakeRegistry{err: boom}, &fakeLedger{}},
		{"ledger fails", &fakeRegistry{}, &fakeLedger{err: boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(tt.reg, tt.ledger).Snapshot(context.Background())
			if !errors.Is(err, boom) {
				t.Errorf("Snapshot() error = %v, want %v", err, boom)
			}
		})
	}
}

func TestService_PublishSinks(t *testing.T) {
	svc := testService()
	metrics := &fakeMetrics{}
	pub := &fakePublisher{}
	svc.SetMetrics(metrics)
	svc.SetPublisher(pub)

	snap, err := svc.Publish(context.Background())
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(metrics.crops) != 1 || metrics.crops[0].crop != "Café" || metrics.crops[0].plots != 1 {
		t.Errorf("crop points = %+v, want one Café point", metrics.crops)
	}
	if metrics.counts != [4]int{1, 2, 1, 1} {
		t.Errorf("counts = %v, want [1 2 1 1]", metrics.counts)
	}
	if metrics.total != snap.Summary.TotalHectares {
		t.Errorf("total = %v, want %v", metrics.total, snap.Summary.TotalHectares)
	}

	if _, ok := pub.messages["agrosirius/core/summary"].(summaryMessage); !ok {
		t.Errorf("summary message = %T, want summaryMessage", pub.messages["agrosirius/core/summary"])
	}
	fc, ok := pub.messages["agrosirius/core/plots"].(*geojson.FeatureCollection)
	if !ok {
		t.Fatalf("plots message = %T, want *geojson.FeatureCollection", pub.messages["agrosirius/core/plots"])
	}
	if len(fc.Features) == 0 {
		t.Error("plots message has no features")
	}
}

func TestService_PublishError(t *testing.T) {
	svc := testService()
	svc.SetPublisher(&fakePublisher{err: errors.New("not connected")})

	snap, err := svc.Publish(context.Background())
	if err == nil {
		t.Fatal("Publish() error = nil, want error")
	}
	if snap == nil {
		t.Error("Publish() should still return the snapshot")
	}
}

func TestService_PublishWithoutSinks(t *testing.T) {
	if _, err := testService().Publish(context.Background()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
}

func TestService_Run(t *testing.T) {
	svc := testService()
	pub := &fakePublisher{}
	svc.SetPublisher(pub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for pub.count() < 2 {
		select {
		case <-deadline:
			t.Fatal("Run() did not publish")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestService_RunDisabled(t *testing.T) {
	done := make(chan struct{})
	go func() {
		testService().Run(context.Background(), 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run(0) should return immediately")
	}
}
