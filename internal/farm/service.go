// Package farm ties the plot registry and the sowing ledger to the
// reconciliation engine.
//
// Every call to Snapshot reads both collaborators afresh (concurrently)
// and reconciles the result. Nothing is cached between calls. A registry
// reset running alongside a snapshot may be observed half done; the next
// snapshot will be consistent again.
package farm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/agrosirius-core/internal/aggregate"
	"github.com/nerrad567/agrosirius-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/agrosirius-core/internal/mapview"
	"github.com/nerrad567/agrosirius-core/internal/plot"
	"github.com/nerrad567/agrosirius-core/internal/reconcile"
	"github.com/nerrad567/agrosirius-core/internal/sowing"
)

// BoundaryLister reads the plot registry.
type BoundaryLister interface {
	ListBoundaries(ctx context.Context) ([]plot.Boundary, error)
}

// EventLister reads the sowing ledger.
type EventLister interface {
	ListEvents(ctx context.Context) ([]sowing.Event, error)
}

// MetricsWriter receives the numbers of each published snapshot.
// influxdb.Client satisfies it.
type MetricsWriter interface {
	WriteCropArea(crop string, hectares float64, plots int, at time.Time)
	WritePlotCounts(blocks, sectors, sown, empty int, totalHectares float64, at time.Time)
}

// Publisher pushes retained JSON documents. mqtt.Client satisfies it.
type Publisher interface {
	PublishJSON(topic string, v any) error
}

// Logger defines the logging interface used by the service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Snapshot is one reconciliation pass over the farm.
type Snapshot struct {
	TakenAt time.Time               `json:"taken_at"`
	Plots   []reconcile.PaintedPlot `json:"plots"`
	Summary aggregate.Summary       `json:"summary"`
	Events  []sowing.Event          `json:"-"`
}

// Service produces snapshots and optionally publishes them.
type Service struct {
	boundaries BoundaryLister
	events     EventLister

	metrics   MetricsWriter
	publisher Publisher
	logger    Logger
	now       func() time.Time
}

// NewService creates a service over the registry and ledger.
func NewService(boundaries BoundaryLister, events EventLister) *Service {
	return &Service{
		boundaries: boundaries,
		events:     events,
		logger:     noopLogger{},
		now:        time.Now,
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// SetMetrics sets where Publish writes metric points. nil disables.
func (s *Service) SetMetrics(m MetricsWriter) {
	s.metrics = m
}

// SetPublisher sets where Publish pushes the summary. nil disables.
func (s *Service) SetPublisher(p Publisher) {
	s.publisher = p
}

// Snapshot reads boundaries and events concurrently and reconciles them.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	var (
		boundaries []plot.Boundary
		events     []sowing.Event
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		boundaries, err = s.boundaries.ListBoundaries(gctx)
		if err != nil {
			return fmt.Errorf("reading boundaries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		events, err = s.events.ListEvents(gctx)
		if err != nil {
			return fmt.Errorf("reading events: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plots := reconcile.Reconcile(boundaries, events)
	return &Snapshot{
		TakenAt: s.now().UTC(),
		Plots:   plots,
		Summary: aggregate.Summarise(plots),
		Events:  events,
	}, nil
}

// Publish takes a snapshot and pushes it to the configured sinks.
//
// The summary goes to agrosirius/core/summary and the GeoJSON map to
// agrosirius/core/plots, both retained.
func (s *Service) Publish(ctx context.Context) (*Snapshot, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		for _, c := range snap.Summary.ByCrop {
			s.metrics.WriteCropArea(c.Crop, c.AreaHectares, c.Plots, snap.TakenAt)
		}
		counts := snap.Summary.Counts
		s.metrics.WritePlotCounts(counts.Blocks, counts.Sectors, counts.Sown, counts.Empty,
			snap.Summary.TotalHectares, snap.TakenAt)
	}

	if s.publisher != nil {
		topics := mqtt.Topics{}
		if err := s.publisher.PublishJSON(topics.CoreSummary(), summaryMessage{
			TakenAt: snap.TakenAt,
			Summary: snap.Summary,
		}); err != nil {
			return snap, fmt.Errorf("publishing summary: %w", err)
		}
		if err := s.publisher.PublishJSON(topics.CorePlots(), mapview.FeatureCollection(snap.Plots)); err != nil {
			return snap, fmt.Errorf("publishing plots: %w", err)
		}
	}

	s.logger.Debug("snapshot published",
		"plots", len(snap.Plots),
		"sown", snap.Summary.Counts.Sown,
		"total_hectares", snap.Summary.TotalHectares,
	)
	return snap, nil
}

type summaryMessage struct {
	TakenAt time.Time `json:"taken_at"`
	aggregate.Summary
}

// Run publishes immediately and then every interval until ctx is done.
// Failed passes are logged and retried on the next tick.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Publish(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("snapshot publish failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
