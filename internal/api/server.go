package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/agrosirius-core/internal/farm"
	"github.com/nerrad567/agrosirius-core/internal/infrastructure/config"
	"github.com/nerrad567/agrosirius-core/internal/infrastructure/logging"
	"github.com/nerrad567/agrosirius-core/internal/plot"
	"github.com/nerrad567/agrosirius-core/internal/sowing"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// BoundaryRegistry is the part of plot.Registry the API uses.
type BoundaryRegistry interface {
	Define(ctx context.Context, b plot.Boundary) (plot.Boundary, error)
	ListBoundaries(ctx context.Context) ([]plot.Boundary, error)
	Clear(ctx context.Context) (int64, error)
}

// EventLedger is the part of sowing.Ledger the API uses.
type EventLedger interface {
	Record(ctx context.Context, r sowing.Report) (sowing.Event, error)
	ListEvents(ctx context.Context) ([]sowing.Event, error)
}

// Snapshotter produces reconciliation passes. farm.Service satisfies it.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*farm.Snapshot, error)
}

// ConnectionChecker reports whether an optional backend is reachable.
type ConnectionChecker interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Farm     config.FarmConfig
	Logger   *logging.Logger
	Registry BoundaryRegistry
	Ledger   EventLedger
	Farmer   Snapshotter
	MQTT     ConnectionChecker // optional
	InfluxDB ConnectionChecker // optional
	Version  string
}

// Server is the HTTP API server for Agro Sirius Core.
//
// The server is created with New() and started with Start().
type Server struct {
	cfg      config.APIConfig
	farmCfg  config.FarmConfig
	logger   *logging.Logger
	registry BoundaryRegistry
	ledger   EventLedger
	farm     Snapshotter
	mqtt     ConnectionChecker
	influx   ConnectionChecker
	version  string
	started  time.Time
	server   *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("plot registry is required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("sowing ledger is required")
	}
	if deps.Farmer == nil {
		return nil, fmt.Errorf("farm service is required")
	}

	return &Server{
		cfg:      deps.Config,
		farmCfg:  deps.Farm,
		logger:   deps.Logger,
		registry: deps.Registry,
		ledger:   deps.Ledger,
		farm:     deps.Farmer,
		mqtt:     deps.MQTT,
		influx:   deps.InfluxDB,
		version:  deps.Version,
		started:  time.Now(),
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
