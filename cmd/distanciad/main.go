package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"distancia/config"
	"distancia/core"
	"distancia/core/ledger"
	"distancia/observability"
	"distancia/observability/logging"
	"distancia/observability/otel"
	"distancia/rpc"
	"distancia/storage"
	"distancia/token"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	seedFile := flag.String("seed", "", "Path to an optional YAML seed file applied at first boot")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("DISTANCIA_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	var logger *slog.Logger
	if cfg.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogFileMaxSizeMegabytes,
			MaxBackups: 3,
			Compress:   true,
		}
		logger = logging.Setup("distanciad", env, rotating)
	} else {
		logger = logging.Setup("distanciad", env)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := otel.Init(ctx, otel.Config{
		ServiceName: "distanciad",
		Environment: env,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Metrics:     cfg.Telemetry.Metrics,
		Traces:      cfg.Telemetry.Traces,
	})
	if err != nil {
		logger.Error("failed to initialise telemetry", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", slog.String("dir", cfg.DataDir), slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	store := ledger.NewStore(db)
	if err := bootstrap(store, cfg); err != nil {
		logger.Error("failed to bootstrap ledger", slog.Any("error", err))
		os.Exit(1)
	}

	tokens := token.NewHTTPService(cfg.TokenServiceURL, cfg.CallbackURL)
	node := core.NewNode(store, tokens, &payoutLogger{logger: logger},
		core.WithLogger(logger),
		core.WithReservationTTL(cfg.ReservationTTL()),
		core.WithSweepInterval(cfg.SweepInterval()),
	)

	if *seedFile != "" {
		if err := applySeed(node, cfg.Owner, *seedFile); err != nil {
			logger.Error("failed to apply seed file", slog.String("path", *seedFile), slog.Any("error", err))
			os.Exit(1)
		}
	}

	go node.Start(ctx)

	server := rpc.NewServer(node, logger)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           otelhttp.NewHandler(server.Router(), "rpc"),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("starting JSON-RPC server", slog.String("addr", cfg.ListenAddress))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("RPC server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// bootstrap writes the owner principal and the genesis parameters into an
// empty ledger. An already-initialised ledger is left untouched so the
// owner-gated setters remain the single write path for parameters.
func bootstrap(store *ledger.Store, cfg *config.Config) error {
	if _, err := store.Owner(); err == nil {
		return nil
	}
	if err := store.SetOwner(cfg.Owner); err != nil {
		return err
	}
	params, err := cfg.GenesisParams()
	if err != nil {
		return err
	}
	return store.SetParams(params)
}

type seedMilestone struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type seedData struct {
	Milestones []seedMilestone `yaml:"milestones"`
}

// applySeed preloads milestones on behalf of the owner. Keys that already
// exist are skipped so re-running with the same seed is harmless.
func applySeed(node *core.Node, owner, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var seed seedData
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	existing, err := node.GetMilestones()
	if err != nil {
		return err
	}
	taken := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		taken[m.Key] = struct{}{}
	}
	for _, m := range seed.Milestones {
		if _, ok := taken[m.Key]; ok {
			continue
		}
		value, ok := new(big.Int).SetString(strings.TrimSpace(m.Value), 10)
		if !ok {
			return fmt.Errorf("seed milestone %q: invalid value %q", m.Key, m.Value)
		}
		if _, err := node.CreateMilestone(owner, m.Key, value); err != nil {
			return fmt.Errorf("seed milestone %q: %w", m.Key, err)
		}
	}
	return nil
}

// payoutLogger is the native-currency transfer primitive for nodes without a
// settlement backend: it records the transfer and trusts the host to settle.
type payoutLogger struct {
	logger *slog.Logger
}

func (p *payoutLogger) Pay(account string, amount *big.Int) error {
	observability.Token().RecordPayout()
	p.logger.Info("paying out base currency",
		slog.String("account", account),
		slog.String("amount", amount.String()))
	return nil
}
