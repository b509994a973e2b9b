package plot

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Registry.
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

// Registry is the authoritative set of plot boundaries.
//
// Every read goes to the repository, so callers always see the current
// definitions. Writes are serialised so the existence check and the
// insert cannot interleave with another definition of the same plot.
type Registry struct {
	repo    Repository
	names   *NameOptions
	writeMu sync.Mutex
	logger  Logger
	now     func() time.Time
}

// NewRegistry creates a registry on repo.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		logger: noopLogger{},
		now:    time.Now,
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetNameOptions restricts future definitions to the given names.
// Pass nil to allow any non-blank name.
func (r *Registry) SetNameOptions(opts *NameOptions) {
	r.names = opts
}

// Define adds a boundary for a plot that has none yet.
//
// It returns ErrInvalidGeometry for fewer than three vertices and
// ErrDuplicatePlot if the key is already defined. CreatedAt is set here.
func (r *Registry) Define(ctx context.Context, b Boundary) (Boundary, error) {
	if err := ValidateBoundary(b, r.names); err != nil {
		return Boundary{}, err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	exists, err := r.repo.Exists(ctx, b.Key)
	if err != nil {
		return Boundary{}, fmt.Errorf("checking existing boundary: %w", err)
	}
	if exists {
		return Boundary{}, fmt.Errorf("%w: %s", ErrDuplicatePlot, b.Key)
	}

	stored := b.DeepCopy()
	stored.CreatedAt = r.now().UTC().Truncate(time.Second)

	if err := r.repo.Create(ctx, stored); err != nil {
		return Boundary{}, err
	}

	r.logger.Info("plot boundary defined",
		"block", stored.Block,
		"sector", stored.Sector,
		"vertices", len(stored.Vertices),
	)
	return stored.DeepCopy(), nil
}

// ListBoundaries returns every boundary in definition order.
func (r *Registry) ListBoundaries(ctx context.Context) ([]Boundary, error) {
	boundaries, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing boundaries: %w", err)
	}
	return boundaries, nil
}

// Exists reports whether k has a boundary.
func (r *Registry) Exists(ctx context.Context, k Key) (bool, error) {
	return r.repo.Exists(ctx, k)
}

// Clear removes every boundary. It is an administrative reset and returns
// the number of boundaries removed.
func (r *Registry) Clear(ctx context.Context) (int64, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	n, err := r.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clearing boundaries: %w", err)
	}
	r.logger.Warn("plot registry cleared", "removed", n)
	return n, nil
}
