// Tartan Home Core - smart-home policy engine.
//
// tartanhome serves any number of independent houses. Each house keeps
// one state record that is changed only by whole evaluation cycles
// driven by the HTTP API, the MQTT feed and the simulation ticker.
//
// Usage:
//
//	tartanhome [--config path]       run the service
//	tartanhome --script file.yaml    play a scenario and exit
//	tartanhome --hash-password       read a password on stdin, print its hash
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	_ "github.com/nerrad567/tartan-home-core/migrations"

	"github.com/nerrad567/tartan-home-core/internal/api"
	"github.com/nerrad567/tartan-home-core/internal/auth"
	"github.com/nerrad567/tartan-home-core/internal/feed"
	"github.com/nerrad567/tartan-home-core/internal/history"
	"github.com/nerrad567/tartan-home-core/internal/house"
	"github.com/nerrad567/tartan-home-core/internal/infrastructure/config"
	"github.com/nerrad567/tartan-home-core/internal/infrastructure/database"
	"github.com/nerrad567/tartan-home-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/tartan-home-core/internal/infrastructure/logging"
	"github.com/nerrad567/tartan-home-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/tartan-home-core/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// errScenarioFailed is returned when a played scenario has failed expectations.
var errScenarioFailed = errors.New("scenario failed")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args and either plays a scenario or serves until ctx is
// cancelled. It is separated from main for testability.
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	flags := pflag.NewFlagSet("tartanhome", pflag.ContinueOnError)
	flags.SetOutput(stdout)
	configPath := flags.String("config", "", "path to config file (default $TARTAN_CONFIG or "+defaultConfigPath+")")
	scriptPath := flags.String("script", "", "play a scenario file against an in-memory house and exit")
	hashPassword := flags.Bool("hash-password", false, "read a password from stdin and print its Argon2id hash for password_hash")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "tartanhome %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}
	if *hashPassword {
		return printPasswordHash(stdin, stdout)
	}
	if *scriptPath != "" {
		return runScript(ctx, *scriptPath, stdout)
	}
	return serve(ctx, getConfigPath(*configPath))
}

// getConfigPath returns the configuration file path: the flag if set,
// then TARTAN_CONFIG, then the default.
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if path := os.Getenv("TARTAN_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// printPasswordHash hashes the first line of stdin.
func printPasswordHash(stdin io.Reader, stdout io.Writer) error {
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("password must not be empty")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, hash)
	return nil
}

// runScript plays a scenario file and prints one line per step.
func runScript(ctx context.Context, path string, stdout io.Writer) error {
	sc, err := feed.LoadScenario(path)
	if err != nil {
		return err
	}

	log := logging.New(config.LoggingConfig{Level: "warn", Format: "text", Output: "stderr"}, version)
	report, err := feed.Play(ctx, sc, log)
	if report != nil {
		printReport(stdout, report)
	}
	if err != nil {
		return fmt.Errorf("playing %s: %w", path, err)
	}
	if report.Failed() {
		return fmt.Errorf("%w: %d expectation(s) not met", errScenarioFailed, report.FailureCount())
	}
	return nil
}

func printReport(w io.Writer, report *feed.Report) {
	for _, step := range report.Steps {
		if len(step.Failures) == 0 {
			fmt.Fprintf(w, "PASS  %s\n", step.Name)
			continue
		}
		fmt.Fprintf(w, "FAIL  %s\n", step.Name)
		for _, f := range step.Failures {
			fmt.Fprintf(w, "      %s\n", f)
		}
	}
	fmt.Fprintf(w, "%s: %d steps, %d failures\n", report.House, len(report.Steps), report.FailureCount())
}

// serve runs the service until ctx is cancelled.
func serve(ctx context.Context, configPath string) error { //nolint:gocognit,gocyclo // linear startup sequence
	log := logging.Default()
	log.Info("starting Tartan Home Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

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

	db, err := database.Open(database.Config{
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

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Houses
	registry := house.NewRegistry(house.WithLogger(log.With("component", "house")))
	if err := feed.ConfigureHouses(registry, cfg.Houses); err != nil {
		return fmt.Errorf("configuring houses: %w", err)
	}
	for _, hc := range cfg.Houses {
		if _, err := registry.Open(hc.Name); err != nil {
			return fmt.Errorf("opening house %s: %w", hc.Name, err)
		}
	}
	log.Info("houses configured", "count", len(cfg.Houses))

	metrics := telemetry.NewMetrics()
	registry.AddObserver(metrics)

	checks := map[string]api.HealthChecker{"database": db}

	influxClient, err := connectInflux(cfg.InfluxDB, log)
	if err != nil {
		return err
	}
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		registry.AddObserver(telemetry.NewInfluxRecorder(influxClient))
		checks["influxdb"] = influxClient
	}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = connectMQTT(cfg.MQTT, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		checks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	// Background workers stop before the connections they use are closed.
	workCtx, stopWorkers := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		stopWorkers()
		wg.Wait()
	}()
	goWorker := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(workCtx)
		}()
	}

	repo := history.NewSQLiteRepository(db.DB)
	if cfg.History.Enabled {
		historian := history.NewHistorian(repo, registry, history.Config{
			Interval:      time.Duration(cfg.History.Interval) * time.Second,
			RetentionDays: cfg.History.RetentionDays,
		}, log.With("component", "history"))
		registry.AddObserver(historian)
		goWorker(historian.Run)
		log.Info("historian started", "interval_s", cfg.History.Interval, "retention_days", cfg.History.RetentionDays)
	}

	if mqttClient != nil {
		mqttFeed := feed.NewMQTTFeed(mqttClient, registry,
			feed.WithFeedLogger(log.With("component", "feed")),
			feed.WithRecorder(metrics),
		)
		registry.AddObserver(mqttFeed)
		if err := mqttFeed.Start(); err != nil {
			return fmt.Errorf("starting MQTT feed: %w", err)
		}
		goWorker(mqttFeed.Run)
		log.Info("MQTT feed started", "topic", mqttClient.Topics().AllHouseUpdates())
	}

	if cfg.Simulation.TickInterval > 0 {
		interval := time.Duration(cfg.Simulation.TickInterval) * time.Second
		goWorker(func(ctx context.Context) {
			simulate(ctx, registry, interval, metrics, log)
		})
	}

	authn, err := buildAuthenticator(cfg)
	if err != nil {
		return err
	}

	server, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log.With("component", "api"),
		Houses:  registry,
		Auth:    authn,
		History: repo,
		Metrics: metrics,
		Checks:  checks,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order: API server, background
	// workers, MQTT, InfluxDB, database.
	return nil
}

// connectInflux returns nil when InfluxDB is disabled.
func connectInflux(cfg config.InfluxDBConfig, log *logging.Logger) (*influxdb.Client, error) {
	client, err := influxdb.Connect(cfg)
	if errors.Is(err, influxdb.ErrDisabled) {
		log.Info("InfluxDB disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected", "url", cfg.URL, "org", cfg.Org, "bucket", cfg.Bucket)
	return client, nil
}

// connectMQTT connects to the broker with logging callbacks attached.
func connectMQTT(cfg config.MQTTConfig, log *logging.Logger) (*mqtt.Client, error) {
	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log.With("component", "mqtt"))
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
	)
	return client, nil
}

// simulate runs an empty cycle on every house each interval so the
// climate moves toward its target and the alarm delay elapses.
func simulate(ctx context.Context, registry *house.Registry, interval time.Duration, metrics *telemetry.Metrics, log *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := registry.TickAll()
			metrics.RecordUpdate("tick", err)
			if err != nil {
				log.Error("simulation tick failed", "error", err)
			}
		}
	}
}

// buildAuthenticator creates one login per configured house user.
func buildAuthenticator(cfg *config.Config) (*auth.Authenticator, error) {
	issuer, err := auth.NewTokenIssuer(cfg.Security.JWT.Secret, cfg.GetAccessTokenTTL())
	if err != nil {
		return nil, fmt.Errorf("creating token issuer: %w", err)
	}
	users := make([]auth.User, 0, len(cfg.Houses))
	for _, hc := range cfg.Houses {
		if hc.Username == "" {
			continue
		}
		users = append(users, auth.User{
			Username:     hc.Username,
			House:        hc.Name,
			PasswordHash: hc.PasswordHash,
		})
	}
	return auth.NewAuthenticator(users, issuer), nil
}

// healthCheck verifies every dependency is healthy.
func healthCheck(ctx context.Context, checks map[string]api.HealthChecker) error {
	for name, c := range checks {
		if err := c.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
