// Gray Logic Remote - Session-Aware Synchronization Daemon
//
// This is the main entry point for the Gray Logic Remote client core.
// It maintains a persisted session against the remote service, runs the
// hierarchical sync chain (homes -> rooms -> devices), folds live device
// state pushed over MQTT into the in-memory snapshot, and optionally
// mirrors device telemetry into InfluxDB.
//
// The packages under internal/ form the embeddable client core; this
// binary wires them together for headless operation.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/gray-logic-remote/migrations"

	"github.com/nerrad567/gray-logic-remote/internal/command"
	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/gateway"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-remote/internal/push"
	"github.com/nerrad567/gray-logic-remote/internal/session"
	"github.com/nerrad567/gray-logic-remote/internal/state"
	"github.com/nerrad567/gray-logic-remote/internal/syncer"
	"github.com/nerrad567/gray-logic-remote/internal/telemetry"
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
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	// This is the Go pattern for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic Remote",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Session store: persisted token, endpoint and active home survive restarts
	sessions := session.NewSQLiteStore(db.DB, cfg.Server.URL)
	if sessions.IsLoggedIn(ctx) {
		log.Info("persisted session found", "endpoint", currentEndpoint(ctx, sessions))
	} else {
		log.Info("no persisted session, waiting for login")
	}

	// Remote gateway
	gw := gateway.New(cfg.Server, sessions, log)

	// Shared state snapshot
	store := state.NewStore()
	store.SetLogger(log)

	// Sync repository drives the hierarchical loadAll chain
	repo := syncer.New(gw, sessions, store)
	repo.SetLogger(log)
	repo.SetChainTimeout(cfg.GetChainTimeout())
	defer func() {
		log.Info("closing sync repository")
		repo.Close()
	}()

	var history device.StateHistoryRepository
	if cfg.Sync.HistoryEnabled {
		history = device.NewSQLiteStateHistoryRepository(db.DB)
		repo.SetHistory(history)
		log.Info("state history recording enabled")
	} else {
		log.Info("state history recording disabled")
	}

	// Command dispatcher: optimistic control with rollback, shared by
	// every control surface (broker commands below, embedding callers)
	dispatcher := command.New(repo, store)
	dispatcher.SetLogger(log)

	// Connect to MQTT broker for live device state (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		var mqttErr error
		mqttClient, mqttErr = mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", mqttClient.ClientID(),
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		receiver := push.New(mqttClient, store, byte(cfg.MQTT.QoS))
		receiver.SetLogger(log)
		if history != nil {
			receiver.SetHistory(history)
		}
		if startErr := receiver.Start(); startErr != nil {
			return fmt.Errorf("subscribing to device state: %w", startErr)
		}
		defer func() {
			log.Info("stopping push receiver")
			if stopErr := receiver.Stop(); stopErr != nil {
				log.Error("error stopping push receiver", "error", stopErr)
			}
		}()
		log.Info("push receiver started", "topic", mqttClient.Topics().AllDeviceStates())

		// Route broker-published commands through the dispatcher so wall
		// panels and scripts share the app's control path
		commands := push.NewCommandReceiver(mqttClient, dispatcher, byte(cfg.MQTT.QoS))
		commands.SetLogger(log)
		if startErr := commands.Start(); startErr != nil {
			return fmt.Errorf("subscribing to device commands: %w", startErr)
		}
		defer func() {
			log.Info("stopping command receiver")
			if stopErr := commands.Stop(); stopErr != nil {
				log.Error("error stopping command receiver", "error", stopErr)
			}
		}()
		log.Info("command receiver started", "topic", mqttClient.Topics().AllDeviceCommands())
	} else {
		log.Info("MQTT disabled, live device state unavailable")
	}

	// Connect to InfluxDB for the telemetry mirror (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		var influxErr error
		influxClient, influxErr = influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
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

		mirror := telemetry.New(influxClient, store)
		mirror.SetLogger(log)
		mirror.Start()
		defer func() {
			log.Info("stopping telemetry mirror")
			mirror.Stop()
		}()
		log.Info("telemetry mirror started")
	} else {
		log.Info("InfluxDB disabled")
	}

	// Verify all infrastructure connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Check the remote service and run the initial sync chain. Neither
	// failure is fatal: the snapshot carries connectivity and the chain
	// can be retried once the service is reachable again.
	if pingErr := repo.Ping(ctx); pingErr != nil {
		log.Warn("remote service unreachable", "error", pingErr)
	} else {
		log.Info("remote service reachable")
	}

	if sessions.IsLoggedIn(ctx) {
		if loadErr := repo.LoadAll(ctx); loadErr != nil && !errors.Is(loadErr, context.Canceled) {
			log.Warn("initial sync failed", "error", loadErr)
		} else if loadErr == nil {
			snap := store.Snapshot()
			log.Info("initial sync complete",
				"homes", len(snap.Homes),
				"rooms", len(snap.Rooms),
				"devices", len(snap.Devices),
			)
		}
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. Telemetry mirror and InfluxDB (if enabled)
	// 2. Command and push receivers, then MQTT (if enabled)
	// 3. Sync repository
	// 4. Database

	log.Info("Gray Logic Remote stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GLREMOTE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GLREMOTE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
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

// currentEndpoint reads the persisted endpoint for startup logging only.
func currentEndpoint(ctx context.Context, sessions session.Store) string {
	endpoint, err := sessions.Endpoint(ctx)
	if err != nil {
		return ""
	}
	return endpoint
}
