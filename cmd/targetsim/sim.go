package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/ai"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/config"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/db"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/metrics"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/spawn"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/targeting"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/unlock"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/world"
)

// actor bundles one dragon's controller with its timing recorder.
type actor struct {
	ai       *ai.TargetingAI
	recorder *metrics.Recorder
}

type snapshotStore interface {
	Save(ctx context.Context, actor string, s targeting.Snapshot) (bool, error)
}

type snapshotLoader interface {
	Load(ctx context.Context, actor string) (targeting.Snapshot, error)
}

func buildActors(cfg config.Simulation, arena *spawn.Arena, ids *world.EntityIDGenerator) ([]*actor, error) {
	if len(cfg.Actors) == 0 {
		return nil, errors.New("no actors configured")
	}

	unlocks := unlocksFor(cfg.Unlocks)
	actors := make([]*actor, 0, len(cfg.Actors))
	for _, ac := range cfg.Actors {
		element, err := model.ParseElement(ac.Element)
		if err != nil {
			return nil, fmt.Errorf("actor %q: %w", ac.Name, err)
		}

		dragon := model.NewActor(model.NewPosition(ac.X, ac.Y), ac.Range, element)
		engine, err := targeting.NewEngine(dragon, cfg.ForActor(ac), nil, nil)
		if err != nil {
			return nil, fmt.Errorf("actor %q: %w", ac.Name, err)
		}
		engine.SetUnlocks(unlocks)

		recorder := metrics.NewRecorder(cfg.Metrics.Window, metrics.DefaultBudgets())
		if cfg.Metrics.LogSamples {
			engine.SetMetrics(metrics.Tee{recorder, metrics.LogSink{Logger: slog.Default().With("actor", ac.Name)}})
		} else {
			engine.SetMetrics(recorder)
		}

		controller := ai.NewTargetingAI(ids.NextActorID(), ac.Name, engine)
		controller.SetAttackFunc(attackFunc(arena, ac.DPS))

		actors = append(actors, &actor{ai: controller, recorder: recorder})
		slog.Info("actor ready",
			"name", ac.Name,
			"element", element,
			"range", ac.Range,
			"strategy", engine.State().Strategy)
	}
	return actors, nil
}

// unlocksFor returns AllowAll unless the config restricts something.
func unlocksFor(u config.Unlocks) unlock.Provider {
	if len(u.Strategies) == 0 && len(u.Modes) == 0 {
		return unlock.AllowAll()
	}
	strategies := u.Strategies
	if len(strategies) == 0 {
		strategies = model.BuiltinStrategies()
	}
	return unlock.NewStatic(strategies, u.Modes)
}

func attackFunc(arena *spawn.Arena, dps float64) ai.AttackFunc {
	return func(actorID uint32, target model.EntityID, dt time.Duration) {
		if dt <= 0 || dps <= 0 {
			return
		}
		if arena.Damage(target, dps*dt.Seconds()) {
			slog.Debug("target destroyed", "actor", actorID, "target", target)
		}
	}
}

func restoreActors(ctx context.Context, repo snapshotLoader, actors []*actor) error {
	for _, a := range actors {
		snap, err := repo.Load(ctx, a.ai.Name())
		if errors.Is(err, db.ErrSnapshotNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := a.ai.Restore(snap); err != nil {
			slog.Warn("discarding stored targeting state", "actor", a.ai.Name(), "err", err)
			continue
		}
		slog.Info("targeting state restored",
			"actor", a.ai.Name(),
			"last_target", snap.CurrentTarget,
			"switches", snap.SwitchCount)
	}
	return nil
}

func flushSnapshots(ctx context.Context, store snapshotStore, actors []*actor) int {
	written := 0
	for _, a := range actors {
		ok, err := store.Save(ctx, a.ai.Name(), a.ai.Snapshot())
		if err != nil {
			slog.Error("saving targeting state", "actor", a.ai.Name(), "err", err)
			continue
		}
		if ok {
			written++
		}
	}
	return written
}

// runReporter logs timing stats and flushes snapshots every interval until
// ctx is done. A nil store only reports.
func runReporter(ctx context.Context, interval time.Duration, arena *spawn.Arena, actors []*actor, store snapshotStore) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			report(arena, actors)
			if store != nil {
				if n := flushSnapshots(ctx, store, actors); n > 0 {
					slog.Info("targeting state saved", "actors", n)
				}
			}
		}
	}
}

func report(arena *spawn.Arena, actors []*actor) {
	spawned, killed, breached := arena.Stats()
	slog.Info("arena",
		"enemies", arena.Len(),
		"spawned", spawned,
		"killed", killed,
		"breached", breached)

	for _, a := range actors {
		st := a.ai.Status()
		attrs := []any{
			"actor", a.ai.Name(),
			"target", st.TargetID,
			"strategy", st.Strategy,
			"switches", st.SwitchCount,
			"fallback", st.FallbackUsed,
		}
		if s, ok := a.recorder.Stats(metrics.OpUpdateTarget); ok {
			attrs = append(attrs, "update_avg", s.Average, "update_p95", s.P95, "over_budget", s.OverBudget)
		}
		slog.Info("actor", attrs...)
	}
}
