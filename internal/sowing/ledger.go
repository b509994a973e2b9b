package sowing

import (
	"context"
	"fmt"
	"time"
)

// Logger defines the logging interface used by the Ledger.
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

// Observer is told about every event the ledger accepts.
type Observer interface {
	WriteSowingReport(node, crop, block string, claimedHectares float64, at time.Time)
}

// Ledger accepts validated events and lists them back.
type Ledger struct {
	repo     Repository
	logger   Logger
	observer Observer
}

// NewLedger creates a ledger on repo.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo, logger: noopLogger{}}
}

// SetLogger sets the logger for the ledger.
func (l *Ledger) SetLogger(logger Logger) {
	l.logger = logger
}

// SetObserver registers an observer for accepted events, typically the
// metrics writer. Pass nil to remove it.
func (l *Ledger) SetObserver(o Observer) {
	l.observer = o
}

// Record validates a report and appends the resulting event.
func (l *Ledger) Record(ctx context.Context, r Report) (Event, error) {
	e, err := r.Event()
	if err != nil {
		return Event{}, err
	}
	if err := l.Append(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Append validates and stores an event built elsewhere.
func (l *Ledger) Append(ctx context.Context, e Event) error {
	if err := Validate(e); err != nil {
		return err
	}
	if err := l.repo.Append(ctx, e); err != nil {
		return err
	}

	l.logger.Info("sowing event recorded",
		"id", e.ID,
		"node", e.Node,
		"crop", e.Crop,
		"block", e.Block,
		"sector", e.Sector,
	)
	if l.observer != nil {
		l.observer.WriteSowingReport(e.Node, e.Crop, e.Block, e.ClaimedHectares, e.Timestamp)
	}
	return nil
}

// ListEvents returns every event in ledger order.
func (l *Ledger) ListEvents(ctx context.Context) ([]Event, error) {
	events, err := l.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}
