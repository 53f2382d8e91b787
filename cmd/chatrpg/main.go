package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/chatrpg/internal/command"
	"github.com/udisondev/chatrpg/internal/config"
	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/db"
	"github.com/udisondev/chatrpg/internal/game/encounter"
	"github.com/udisondev/chatrpg/internal/telemetry"
)

const ConfigPath = "config/chatrpg.yaml"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// .env is optional; real environment wins over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfgPath := ConfigPath
	if p := os.Getenv("CHATRPG_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))
	slog.Info("chatrpg starting", "version", version, "log_level", cfg.LogLevel)

	cfg.Telemetry.Version = version
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Error("telemetry shutdown", "error", err)
		}
	}()

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	catalog, err := loadCatalog(cfg.CatalogDir)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	pool := database.Pool()
	characters := db.NewCharacterRepository(pool)
	history := db.NewHistoryRepository(pool)
	outcomes := db.NewOutcomeService(pool, db.NewInventoryRepository(pool), history)

	opts := []encounter.Option{
		encounter.WithPersister(outcomes),
		encounter.WithTuning(cfg.Tuning()),
		encounter.WithRules(cfg.Rules()),
		encounter.WithTracer(telemetry.Tracer("encounter")),
	}
	if cfg.Seed != 0 {
		opts = append(opts, encounter.WithMasterSeed(cfg.Seed))
		slog.Warn("deterministic seeding enabled", "seed", cfg.Seed)
	}
	engine := encounter.NewEngine(catalog, opts...)

	handler := command.NewHandler(catalog, nil)
	command.RegisterAll(handler, command.Deps{
		Engine:     engine,
		Characters: characters,
		History:    history,
	})
	slog.Info("commands registered", "count", handler.CommandCount())

	con := newConsole(os.Stdin, os.Stdout, handler, characters, catalog)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return con.Serve(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("chatrpg stopped", "live_sessions", engine.SessionCount())
	return nil
}

func loadCatalog(dir string) (*data.Catalog, error) {
	if dir == "" {
		return data.LoadDefault()
	}
	return data.LoadDir(dir)
}
