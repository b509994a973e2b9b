// Agro Sirius Core - farm geometry and sowing reconciliation service.
//
// The service keeps a registry of plot boundaries and a ledger of sowing
// reports sent by field nodes, and reconciles the two into a painted map
// of the farm with area totals per crop and per block.
//
// Storage is either SQLite or an .xlsx workbook shared with the office.
// MQTT (report ingestion, summary push) and InfluxDB (area history) are
// optional.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/nerrad567/agrosirius-core/migrations"

	"github.com/nerrad567/agrosirius-core/internal/api"
	"github.com/nerrad567/agrosirius-core/internal/farm"
	"github.com/nerrad567/agrosirius-core/internal/infrastructure/config"
	"github.com/nerrad567/agrosirius-core/internal/infrastructure/database"
	"github.com/nerrad567/agrosirius-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/agrosirius-core/internal/infrastructure/logging"
	"github.com/nerrad567/agrosirius-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/agrosirius-core/internal/plot"
	"github.com/nerrad567/agrosirius-core/internal/sowing"
	"github.com/nerrad567/agrosirius-core/internal/spreadsheet"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// stores groups the two repositories behind the registry and the ledger.
type stores struct {
	plots  plot.Repository
	events sowing.Repository
	db     *database.DB // nil when the workbook backend is in use
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Agro Sirius Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	st, closeStores, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	registry := plot.NewRegistry(st.plots)
	registry.SetLogger(log.Component("plots"))
	if cfg.Farm.StrictNames {
		registry.SetNameOptions(&plot.NameOptions{
			Blocks:  cfg.Farm.BlockOptions,
			Sectors: cfg.Farm.SectorOptions,
		})
	}

	ledger := sowing.NewLedger(st.events)
	ledger.SetLogger(log.Component("sowing"))

	svc := farm.NewService(registry, ledger)
	svc.SetLogger(log.Component("farm"))

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		ingester := sowing.NewIngester(ledger, mqttClient, byte(cfg.MQTT.QoS))
		ingester.SetLogger(log.Component("ingest"))
		if startErr := ingester.Start(); startErr != nil {
			return fmt.Errorf("starting sowing ingester: %w", startErr)
		}
		defer func() {
			log.Info("stopping sowing ingester")
			if stopErr := ingester.Stop(); stopErr != nil {
				log.Warn("error stopping sowing ingester", "error", stopErr)
			}
		}()
		svc.SetPublisher(mqttClient)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB, cfg.Farm.ID)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		ledger.SetObserver(influxClient)
		svc.SetMetrics(influxClient)
	} else {
		log.Info("InfluxDB disabled")
	}

	if err := healthCheck(ctx, st.db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	if mqttClient != nil || influxClient != nil {
		waitPublisher := startPublisher(ctx, svc, cfg.GetPublishInterval())
		// Runs before the MQTT and InfluxDB closes above.
		defer func() {
			log.Info("waiting for summary publisher")
			waitPublisher()
		}()
		log.Info("summary publisher started", "interval", cfg.GetPublishInterval())
	}

	deps := api.Deps{
		Config:   cfg.API,
		Farm:     cfg.Farm,
		Logger:   log.Component("api"),
		Registry: registry,
		Ledger:   ledger,
		Farmer:   svc,
		Version:  version,
	}
	// Only set when present so the API never sees a typed nil.
	if mqttClient != nil {
		deps.MQTT = mqttClient
	}
	if influxClient != nil {
		deps.InfluxDB = influxClient
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()
	log.Info("API server listening", "host", cfg.API.Host, "port", cfg.API.Port)

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("Agro Sirius Core stopped")
	return nil
}

// publishLoop is the periodic publisher run by the service.
type publishLoop interface {
	Run(ctx context.Context, interval time.Duration)
}

// startPublisher runs loop in the background until ctx is cancelled.
// The returned func blocks until the loop has returned.
func startPublisher(ctx context.Context, loop publishLoop, interval time.Duration) func() {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loop.Run(ctx, interval)
	}()
	return wg.Wait
}

// openStores opens the configured storage backend. The returned func
// releases it and is always safe to call.
func openStores(ctx context.Context, cfg *config.Config, log *logging.Logger) (stores, func(), error) {
	if cfg.Workbook.Enabled {
		wb, err := spreadsheet.Open(cfg.Workbook)
		if err != nil {
			return stores{}, nil, fmt.Errorf("opening workbook: %w", err)
		}
		wb.SetLogger(log.Component("workbook"))
		log.Info("using workbook storage", "path", wb.Path())
		return stores{plots: wb.Boundaries(), events: wb.Events()}, func() {}, nil
	}

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return stores{}, nil, fmt.Errorf("opening database: %w", err)
	}
	closeDB := func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}
	log.Info("database connected", "path", cfg.Database.Path)

	if err := db.Migrate(ctx); err != nil {
		closeDB()
		return stores{}, nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete")

	return stores{
		plots:  plot.NewSQLiteRepository(db.DB),
		events: sowing.NewSQLiteRepository(db.DB),
		db:     db,
	}, closeDB, nil
}

// getConfigPath returns the configuration file path.
// Uses AGROSIRIUS_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("AGROSIRIUS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies the infrastructure connections that are in use.
// Any argument may be nil when that backend is disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
