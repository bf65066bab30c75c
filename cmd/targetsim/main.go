package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/ai"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/config"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/db"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/spawn"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/world"
)

const ConfigPath = "config/targetsim.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("DRAGON_SIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSimulation(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("target simulator starting",
		"log_level", cfg.LogLevel,
		"actors", len(cfg.Actors),
		"tick", cfg.TickInterval)

	ids := world.IDGenerator()
	arena := spawn.NewArena(cfg.Arena, nil, ids)

	actors, err := buildActors(cfg, arena, ids)
	if err != nil {
		return err
	}

	var store snapshotStore
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database ready")

		repo := db.NewSnapshotRepository(database.Pool())
		if err := restoreActors(ctx, repo, actors); err != nil {
			return err
		}
		store = repo
	}

	mgr := ai.NewTickManager(arena, cfg.TickInterval)
	for _, a := range actors {
		mgr.Register(a.ai.ActorID(), a.ai)
		a.ai.Start()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting tick manager", "interval", cfg.TickInterval)
		if err := mgr.Start(gctx); err != nil {
			return fmt.Errorf("tick manager: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		slog.Info("starting reporter", "interval", cfg.SnapshotInterval)
		return runReporter(gctx, cfg.SnapshotInterval, arena, actors, store)
	})

	err = g.Wait()

	// Final flush with a fresh context: the run context is already cancelled.
	if store != nil {
		flushSnapshots(context.WithoutCancel(ctx), store, actors)
	}
	spawned, killed, breached := arena.Stats()
	slog.Info("target simulator stopped",
		"spawned", spawned,
		"killed", killed,
		"breached", breached)
	return err
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
