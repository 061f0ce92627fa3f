// http2sql exposes a relational database over a small JSON HTTP API.
//
// Clients create and drop tables, insert rows and run free-form SQL through
// /v1 endpoints, and manage accounts and API keys through /v1/auth.
// Statement events are optionally published to MQTT and InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/http2sql/migrations"

	"github.com/nerrad567/http2sql/internal/api"
	"github.com/nerrad567/http2sql/internal/auth"
	"github.com/nerrad567/http2sql/internal/gateway"
	"github.com/nerrad567/http2sql/internal/infrastructure/config"
	"github.com/nerrad567/http2sql/internal/infrastructure/database"
	"github.com/nerrad567/http2sql/internal/infrastructure/influxdb"
	"github.com/nerrad567/http2sql/internal/infrastructure/logging"
	"github.com/nerrad567/http2sql/internal/infrastructure/mqtt"
	"github.com/nerrad567/http2sql/internal/telemetry"
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

// configEnvVar overrides defaultConfigPath.
const configEnvVar = "HTTP2SQL_CONFIG"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
//
// It returns nil on clean shutdown once ctx is cancelled.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting http2sql",
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

	pool := database.NewPool(
		database.NewOpener(cfg.Database),
		database.WithStaleAfter(cfg.GetStaleAfter()),
		database.WithLogger(log),
	)
	defer func() {
		log.Info("closing database pool")
		if closeErr := pool.Close(); closeErr != nil {
			log.Error("error closing database pool", "error", closeErr)
		}
	}()

	if cfg.Database.InitSchema {
		if err := initSchema(ctx, pool, cfg.Database.Driver); err != nil {
			return err
		}
		log.Info("credential schema ready", "driver", cfg.Database.Driver)
	}

	// Event publishing is best-effort: a missing broker must not stop the API.
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT, log)
		if err != nil {
			log.Warn("MQTT unavailable, events will not be published", "error", err)
			mqttClient = nil
		} else {
			defer func() {
				log.Info("disconnecting from MQTT")
				if closeErr := mqttClient.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			}()
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
		}
	} else {
		log.Info("MQTT disabled")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			log.Warn("InfluxDB unavailable, statement metrics will not be written", "error", err)
			influxClient = nil
		} else {
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
		}
	} else {
		log.Info("InfluxDB disabled")
	}

	recorder := telemetry.NewRecorder(log, telemetryOptions(mqttClient, influxClient)...)
	// The worker outlives the signal so Close can drain the queue before the
	// sinks disconnect.
	recorder.Start(context.WithoutCancel(ctx))
	defer func() {
		if closeErr := recorder.Close(); closeErr != nil {
			log.Error("error closing telemetry recorder", "error", closeErr)
		}
	}()

	gw := gateway.NewService(pool, recorder, log)
	authSvc := auth.NewService(
		auth.NewUserRepository(pool),
		auth.NewAPIKeyRepository(pool),
		cfg.GetAPIKeyTTL(),
		log,
	)

	server, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Gateway: gw,
		Auth:    authSvc,
		Pool:    pool,
		MQTT:    mqttClient,
		Version: version,
	})
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

	if err := healthCheck(ctx, log, pool, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal",
		"addr", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. Telemetry recorder
	// 3. InfluxDB (if connected)
	// 4. MQTT (if connected)
	// 5. Database pool

	log.Info("http2sql stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HTTP2SQL_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv(configEnvVar); path != "" {
		return path
	}
	return defaultConfigPath
}

// initSchema creates the credential tables on a pooled handle.
func initSchema(ctx context.Context, pool *database.Pool, driver string) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer conn.Release()

	if err := migrations.Apply(ctx, conn, driver); err != nil {
		return fmt.Errorf("initialising schema: %w", err)
	}
	return nil
}

// telemetryOptions builds recorder options for the sinks that connected.
// Nil clients are skipped so the recorder never holds a typed-nil interface.
func telemetryOptions(mqttClient *mqtt.Client, influxClient *influxdb.Client) []telemetry.Option {
	var opts []telemetry.Option
	if mqttClient != nil {
		opts = append(opts, telemetry.WithPublisher(mqttClient))
	}
	if influxClient != nil {
		opts = append(opts, telemetry.WithMetrics(influxClient))
	}
	return opts
}

// healthCheck verifies the database is reachable. The MQTT and InfluxDB
// sinks are best-effort: a failure there is logged, never returned.
//
// The MQTT and InfluxDB clients may be nil when disabled or unavailable.
func healthCheck(ctx context.Context, log *logging.Logger, pool *database.Pool, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := pool.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			log.Warn("mqtt health check failed, telemetry will not be published", "error", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			log.Warn("influxdb health check failed, telemetry will not be written", "error", err)
		}
	}

	return nil
}
