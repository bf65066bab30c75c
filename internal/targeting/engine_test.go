package targeting

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/config"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/metrics"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/unlock"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func enemy(id model.EntityID, x, y float64) *model.Entity {
	return &model.Entity{
		ID:       id,
		Position: model.NewPosition(x, y),
		Health:   model.Health{Current: 100, Max: 100},
		Damage:   20,
		Speed:    50,
		Alive:    true,
	}
}

func newTestEngine(t *testing.T, mutate func(*config.Targeting)) (*Engine, *fakeClock) {
	t.Helper()

	cfg := config.DefaultTargeting()
	if mutate != nil {
		mutate(&cfg)
	}
	actor := model.NewActor(model.NewPosition(0, 0), 500, model.ElementFire)
	e, err := NewEngine(actor, cfg, nil, nil)
	require.NoError(t, err)

	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	e.SetClock(clock.Now)
	return e, clock
}

func TestNewEngine_Errors(t *testing.T) {
	_, err := NewEngine(nil, config.DefaultTargeting(), nil, nil)
	require.Error(t, err)

	actor := model.NewActor(model.NewPosition(0, 0), 500, model.ElementNone)

	cfg := config.DefaultTargeting()
	cfg.SwitchThreshold = 2
	_, err = NewEngine(actor, cfg, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = config.DefaultTargeting()
	cfg.PrimaryStrategy = "teleport"
	_, err = NewEngine(actor, cfg, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	cfg = config.DefaultTargeting()
	cfg.PersistenceMode = "sticky"
	_, err = NewEngine(actor, cfg, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestUpdateTarget_AcquiresClosest(t *testing.T) {
	e, clock := newTestEngine(t, nil)
	near := enemy(1, 100, 100)
	mid := enemy(2, 200, 200)
	far := enemy(3, 600, 600)

	e.UpdateTarget([]*model.Entity{far, mid, near})

	st := e.State()
	assert.Equal(t, model.EntityID(1), st.CurrentTarget)
	assert.Equal(t, uint64(1), st.SwitchCount)
	assert.Equal(t, clock.now, st.LastUpdate)
	assert.Empty(t, st.History)
}

func TestUpdateTarget_AllDeadGoesIdle(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	a := enemy(1, 10, 0)
	b := enemy(2, 20, 0)
	e.UpdateTarget([]*model.Entity{a, b})
	require.Equal(t, model.EntityID(1), e.State().CurrentTarget)

	a.Alive, b.Alive = false, false
	assert.NotPanics(t, func() { e.UpdateTarget([]*model.Entity{a, b}) })

	st := e.State()
	assert.Equal(t, model.EntityID(0), st.CurrentTarget)
	assert.Equal(t, model.EntityID(1), st.LastTarget)
	assert.Equal(t, []model.EntityID{1}, st.History)
	assert.Equal(t, uint64(1), st.SwitchCount, "going idle is not an acquisition")

	assert.NotPanics(t, func() { e.UpdateTarget(nil) })
	assert.False(t, e.State().HasTarget())
}

func TestUpdateTarget_KeepTargetIgnoresBetterCandidate(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	first := enemy(1, 300, 0)
	e.UpdateTarget([]*model.Entity{first})
	require.Equal(t, model.EntityID(1), e.State().CurrentTarget)

	better := enemy(2, 10, 0)
	better.Damage = 100
	e.UpdateTarget([]*model.Entity{first, better})

	assert.Equal(t, model.EntityID(1), e.State().CurrentTarget)
	assert.Equal(t, uint64(1), e.State().SwitchCount)
}

func TestUpdateTarget_SelfHeals(t *testing.T) {
	tests := []struct {
		name  string
		spoil func(current *model.Entity) []*model.Entity
	}{
		{"dies", func(c *model.Entity) []*model.Entity { c.Alive = false; return []*model.Entity{c} }},
		{"leaves range", func(c *model.Entity) []*model.Entity {
			c.Position = model.NewPosition(900, 0)
			return []*model.Entity{c}
		}},
		{"despawns", func(*model.Entity) []*model.Entity { return nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, nil)
			current := enemy(1, 50, 0)
			next := enemy(2, 250, 0)
			e.UpdateTarget([]*model.Entity{current, next})
			require.Equal(t, model.EntityID(1), e.State().CurrentTarget)

			e.UpdateTarget(append(tt.spoil(current), next))

			st := e.State()
			assert.Equal(t, model.EntityID(2), st.CurrentTarget)
			assert.Equal(t, model.EntityID(1), st.LastTarget)
			assert.Equal(t, uint64(2), st.SwitchCount)
		})
	}
}

func TestUpdateTarget_SwitchAggressive(t *testing.T) {
	e, _ := newTestEngine(t, func(c *config.Targeting) {
		c.PrimaryStrategy = model.StrategyHighestThreat
		c.PersistenceMode = model.ModeSwitchAggressive
	})
	weak := enemy(1, 200, 0)
	weak.Damage = 10
	e.UpdateTarget([]*model.Entity{weak})
	require.Equal(t, model.EntityID(1), e.State().CurrentTarget)

	strong := enemy(2, 200, 0)
	strong.Damage = 90
	require.Greater(t, e.ThreatLevel(strong), e.ThreatLevel(weak))

	e.UpdateTarget([]*model.Entity{weak, strong})
	assert.Equal(t, model.EntityID(2), e.State().CurrentTarget)
	assert.Equal(t, []model.EntityID{1}, e.State().History)
}

func TestUpdateTarget_SwitchFreelyRespectsThreshold(t *testing.T) {
	e, _ := newTestEngine(t, func(c *config.Targeting) {
		c.PrimaryStrategy = model.StrategyHighestDamage
		c.PersistenceMode = model.ModeSwitchFreely
		c.SwitchThreshold = 0.1
	})
	current := enemy(1, 200, 0)
	current.Damage = 50
	e.UpdateTarget([]*model.Entity{current})

	// damage weight .2 on default config: +20 damage is +0.04 threat
	slightly := enemy(2, 200, 0)
	slightly.Damage = 70
	e.UpdateTarget([]*model.Entity{current, slightly})
	assert.Equal(t, model.EntityID(1), e.State().CurrentTarget)

	// +50 damage and +0.4 proximity clears the margin
	much := enemy(3, 0, 0)
	much.Damage = 100
	e.UpdateTarget([]*model.Entity{current, slightly, much})
	assert.Equal(t, model.EntityID(3), e.State().CurrentTarget)
}

func TestUpdateTarget_ManualOnly(t *testing.T) {
	e, clock := newTestEngine(t, func(c *config.Targeting) {
		c.PersistenceMode = model.ModeManualOnly
	})
	far := enemy(1, 400, 0)
	e.UpdateTarget([]*model.Entity{far})
	require.Equal(t, model.EntityID(1), e.State().CurrentTarget)

	near := enemy(2, 10, 0)
	e.UpdateTarget([]*model.Entity{far, near})
	assert.Equal(t, model.EntityID(1), e.State().CurrentTarget, "passive re-evaluation never switches")

	require.NoError(t, e.SwitchStrategy(model.StrategyClosest))
	clock.Advance(500 * time.Millisecond)
	e.UpdateTarget([]*model.Entity{far, near})
	assert.Equal(t, model.EntityID(2), e.State().CurrentTarget)

	clock.Advance(2 * time.Second)
	e.UpdateTarget([]*model.Entity{far, near, enemy(3, 1, 0)})
	assert.Equal(t, model.EntityID(2), e.State().CurrentTarget, "window closed")
}

func TestLock_IsAbsolute(t *testing.T) {
	e, clock := newTestEngine(t, func(c *config.Targeting) {
		c.PrimaryStrategy = model.StrategyHighestDamage
		c.PersistenceMode = model.ModeSwitchAggressive
		c.TargetLockDuration = 0
	})
	weak := enemy(1, 300, 0)
	weak.Damage = 1
	strong := enemy(2, 10, 0)
	strong.Damage = 100

	e.LockTarget(weak)
	assert.False(t, e.CanSwitchTarget())
	for range 5 {
		clock.Advance(time.Minute)
		e.UpdateTarget([]*model.Entity{weak, strong})
		assert.Equal(t, model.EntityID(1), e.State().CurrentTarget)
		assert.True(t, e.State().Locked)
	}

	e.UnlockTarget()
	assert.True(t, e.CanSwitchTarget())
	e.UpdateTarget([]*model.Entity{weak, strong})
	assert.Equal(t, model.EntityID(2), e.State().CurrentTarget)
}

func TestLock_ClearedWhenTargetDies(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	a := enemy(1, 100, 0)
	b := enemy(2, 200, 0)

	e.LockTarget(b)
	a.Alive = true
	b.Alive = false
	e.UpdateTarget([]*model.Entity{a, b})

	st := e.State()
	assert.False(t, st.Locked)
	assert.True(t, st.LockStart.IsZero())
	assert.Equal(t, model.EntityID(1), st.CurrentTarget)
}

func TestLockTarget_IgnoresNilAndZeroID(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	e.LockTarget(nil)
	e.LockTarget(&model.Entity{Alive: true})

	st := e.State()
	assert.False(t, st.Locked)
	assert.False(t, st.HasTarget())
	assert.Equal(t, model.PhaseIdle, st.Phase())
	assert.True(t, e.CanSwitchTarget())
}

func TestLock_Expires(t *testing.T) {
	e, clock := newTestEngine(t, func(c *config.Targeting) {
		c.TargetLockDuration = 5 * time.Second
		c.PersistenceMode = model.ModeSwitchAggressive
	})
	far := enemy(1, 400, 0)
	near := enemy(2, 10, 0)

	e.LockTarget(far)
	assert.Equal(t, clock.now, e.State().LockStart)

	clock.Advance(4 * time.Second)
	e.UpdateTarget([]*model.Entity{far, near})
	assert.Equal(t, model.EntityID(1), e.State().CurrentTarget)

	clock.Advance(time.Second)
	e.UpdateTarget([]*model.Entity{far, near})
	assert.False(t, e.State().Locked)
	assert.Equal(t, model.EntityID(2), e.State().CurrentTarget)
}

func TestLockTarget_NilAndHistory(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.LockTarget(nil)
	assert.False(t, e.State().Locked)

	a := enemy(1, 10, 0)
	e.UpdateTarget([]*model.Entity{a})
	e.LockTarget(enemy(2, 20, 0))

	st := e.State()
	assert.Equal(t, model.EntityID(2), st.CurrentTarget)
	assert.Equal(t, model.EntityID(1), st.LastTarget)
	assert.Equal(t, []model.EntityID{1}, st.History)
	assert.Equal(t, uint64(1), st.SwitchCount)
}

func TestSwitchStrategy(t *testing.T) {
	e, clock := newTestEngine(t, nil)

	err := e.SwitchStrategy("teleport")
	require.ErrorIs(t, err, ErrUnknownStrategy)
	assert.True(t, e.State().LastStrategyChange.IsZero())

	require.NoError(t, e.SwitchStrategy(model.StrategyFastest))
	assert.Equal(t, model.StrategyFastest, e.State().Strategy)
	assert.Equal(t, clock.now, e.State().LastStrategyChange)
}

func TestSetPersistenceMode(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	require.ErrorIs(t, e.SetPersistenceMode("sticky"), ErrUnknownMode)
	assert.Equal(t, model.ModeKeepTarget, e.Config().PersistenceMode)

	require.NoError(t, e.SetPersistenceMode(model.ModeSwitchFreely))
	assert.Equal(t, model.ModeSwitchFreely, e.Status().Mode)
}

func TestFallback_DisabledAndLockedStrategies(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	near := enemy(1, 10, 0)
	near.Damage = 1
	brute := enemy(2, 200, 0)
	brute.Damage = 100
	brute.Speed = 200
	set := []*model.Entity{near, brute}

	// custom is not enabled by default and resolves to closest, not to
	// the configured fallback.
	require.NoError(t, e.SwitchStrategy(model.StrategyCustom))
	assert.Same(t, near, e.FindTarget(set))
	e.UpdateTarget(set)
	assert.Equal(t, model.EntityID(1), e.State().CurrentTarget)
	assert.True(t, e.FallbackUsed())
	assert.True(t, e.Status().FallbackUsed)

	// Locked strategy: configured fallback highest_threat.
	e.Reset()
	e.SetUnlocks(unlock.NewStatic([]model.StrategyName{model.StrategyClosest, model.StrategyHighestThreat}, nil))
	require.NoError(t, e.SwitchStrategy(model.StrategyFastest))
	assert.Same(t, brute, e.FindTarget(set))

	// Fallback locked too: closest.
	e.Reset()
	e.SetUnlocks(unlock.NewStatic([]model.StrategyName{model.StrategyClosest}, nil))
	require.NoError(t, e.SwitchStrategy(model.StrategyFastest))
	e.UpdateTarget(set)
	assert.Equal(t, model.EntityID(1), e.State().CurrentTarget)
	assert.True(t, e.FallbackUsed())

	// Even closest locked: closest is still the last resort.
	e.Reset()
	e.SetUnlocks(unlock.NewStatic(nil, nil))
	e.UpdateTarget(set)
	assert.Equal(t, model.EntityID(1), e.State().CurrentTarget)

	e.SetUnlocks(nil)
	e.Reset()
	e.UpdateTarget(set)
	assert.False(t, e.FallbackUsed())
}

func TestLockedMode_BehavesAsKeepTarget(t *testing.T) {
	e, _ := newTestEngine(t, func(c *config.Targeting) {
		c.PersistenceMode = model.ModeSwitchAggressive
	})
	e.SetUnlocks(unlock.NewStatic(model.BuiltinStrategies(), []model.PersistenceMode{model.ModeKeepTarget}))

	far := enemy(1, 400, 0)
	e.UpdateTarget([]*model.Entity{far})
	near := enemy(2, 10, 0)
	near.Damage = 100
	e.UpdateTarget([]*model.Entity{far, near})

	assert.Equal(t, model.EntityID(1), e.State().CurrentTarget)
}

func TestCustomSelectorThroughEngine(t *testing.T) {
	e, _ := newTestEngine(t, func(c *config.Targeting) {
		c.PrimaryStrategy = model.StrategyCustom
		c.EnabledStrategies = nil
	})
	e.lib.SetCustomSelector(func(valid []*model.Entity, _ *model.Actor) (*model.Entity, error) {
		return valid[len(valid)-1], nil
	})

	e.UpdateTarget([]*model.Entity{enemy(1, 10, 0), enemy(2, 20, 0)})
	assert.Equal(t, model.EntityID(2), e.State().CurrentTarget)
	assert.False(t, e.FallbackUsed())
}

func TestFindTarget_DoesNotMutateState(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	set := []*model.Entity{enemy(1, 100, 0), enemy(2, 50, 0), enemy(3, 700, 0)}
	e.UpdateTarget(set[:1])
	e.LockTarget(set[0])

	before := e.State()
	first := e.FindTarget(set)
	second := e.FindTarget(set)

	assert.Same(t, first, second)
	assert.Equal(t, model.EntityID(2), first.ID)
	assert.Equal(t, before, e.State())
}

func TestRangeOverride(t *testing.T) {
	e, _ := newTestEngine(t, func(c *config.Targeting) { c.Range = 100 })
	assert.False(t, e.IsInRange(enemy(1, 150, 0)))
	assert.True(t, e.IsInRange(enemy(2, 100, 0)))
	assert.False(t, e.IsInRange(nil))

	require.NoError(t, e.UpdateConfig(Patch{Range: ptr(0.0)}))
	assert.True(t, e.IsInRange(enemy(1, 150, 0)), "zero uses actor range")
}

func TestUpdateConfig(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	err := e.UpdateConfig(Patch{SwitchThreshold: ptr(1.5), Range: ptr(10.0)})
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, 500.0, e.Config().Range, "rejected patch changes nothing")

	err = e.UpdateConfig(Patch{FallbackStrategy: ptr(model.StrategyName("teleport"))})
	require.ErrorIs(t, err, ErrUnknownStrategy)

	err = e.UpdateConfig(Patch{PersistenceMode: ptr(model.PersistenceMode("sticky"))})
	require.ErrorIs(t, err, ErrUnknownMode)

	require.NoError(t, e.UpdateConfig(Patch{
		PrimaryStrategy: ptr(model.StrategyLowestHP),
		SwitchThreshold: ptr(0.3),
		HistorySize:     ptr(2),
	}))
	cfg := e.Config()
	assert.Equal(t, model.StrategyLowestHP, cfg.PrimaryStrategy)
	assert.Equal(t, 0.3, cfg.SwitchThreshold)
	assert.Equal(t, model.StrategyLowestHP, e.State().Strategy)
	assert.True(t, e.State().LastStrategyChange.IsZero(), "config updates are not manual strategy changes")
}

func TestHistoryBounded(t *testing.T) {
	e, _ := newTestEngine(t, func(c *config.Targeting) { c.HistorySize = 3 })

	for id := model.EntityID(1); id <= 6; id++ {
		e.UpdateTarget([]*model.Entity{enemy(id, 10, 0)})
	}

	st := e.State()
	assert.Equal(t, model.EntityID(6), st.CurrentTarget)
	assert.Equal(t, []model.EntityID{3, 4, 5}, st.History)
	assert.Equal(t, uint64(6), st.SwitchCount)
}

func TestReset(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.UpdateTarget([]*model.Entity{enemy(1, 10, 0)})
	require.NoError(t, e.SwitchStrategy(model.StrategyFastest))
	e.LockTarget(enemy(2, 10, 0))

	e.Reset()

	assert.Equal(t, model.TargetingState{Strategy: model.StrategyClosest}, e.State())
	assert.True(t, e.CanSwitchTarget())
}

func TestStatus(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	assert.Equal(t, Status{Strategy: model.StrategyClosest, Mode: model.ModeKeepTarget}, e.Status())

	e.UpdateTarget([]*model.Entity{enemy(9, 10, 0)})
	assert.Equal(t, model.PhaseEngaged, e.Status().Phase)

	e.LockTarget(enemy(9, 10, 0))
	st := e.Status()
	assert.Equal(t, model.PhaseLocked, st.Phase)
	assert.True(t, st.HasTarget)
	assert.Equal(t, model.EntityID(9), st.TargetID)
	assert.True(t, st.Locked)
	assert.Equal(t, uint64(1), st.SwitchCount)
}

func TestSpatialIndexMatchesLinear(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 8))
	set := make([]*model.Entity, 400)
	for i := range set {
		set[i] = enemy(model.EntityID(i+1), r.Float64()*3000-1500, r.Float64()*3000-1500)
		set[i].Damage = r.Float64() * 100
		set[i].Alive = r.IntN(5) != 0
	}

	for _, name := range model.BuiltinStrategies() {
		indexed, _ := newTestEngine(t, func(c *config.Targeting) {
			c.PrimaryStrategy = name
			c.SpatialIndexThreshold = 16
		})
		linear, _ := newTestEngine(t, func(c *config.Targeting) {
			c.PrimaryStrategy = name
			c.SpatialIndexThreshold = 0
		})
		assert.Same(t, linear.FindTarget(set), indexed.FindTarget(set), name)
	}
}

func TestSwitchCountMonotonic(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 9))
	modes := model.BuiltinModes()
	strategies := model.BuiltinStrategies()

	for _, mode := range modes {
		e, clock := newTestEngine(t, func(c *config.Targeting) { c.PersistenceMode = mode })
		pool := make([]*model.Entity, 40)
		for i := range pool {
			pool[i] = enemy(model.EntityID(i+1), 0, 0)
		}

		var last uint64
		for step := range 300 {
			for _, en := range pool {
				en.Position = model.NewPosition(r.Float64()*1400-700, r.Float64()*1400-700)
				en.Alive = r.IntN(6) != 0
				en.Damage = r.Float64() * 100
			}
			switch r.IntN(10) {
			case 0:
				e.LockTarget(pool[r.IntN(len(pool))])
			case 1:
				e.UnlockTarget()
			case 2:
				_ = e.SwitchStrategy(strategies[r.IntN(len(strategies))])
			}
			clock.Advance(time.Duration(r.IntN(800)) * time.Millisecond)
			e.UpdateTarget(pool[:r.IntN(len(pool))])

			count := e.State().SwitchCount
			require.GreaterOrEqual(t, count, last, "mode %s step %d", mode, step)
			last = count

			if st := e.State(); st.Locked {
				require.True(t, st.HasTarget(), "locked while idle")
			}
		}
	}
}

func TestPerformance(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	assert.Nil(t, e.Performance())

	rec := metrics.NewRecorder(16, nil)
	e.SetMetrics(rec)
	a := enemy(1, 10, 0)
	b := enemy(2, 20, 0)
	b.Damage = 99
	require.NoError(t, e.SetPersistenceMode(model.ModeSwitchAggressive))
	e.UpdateTarget([]*model.Entity{b})
	e.UpdateTarget([]*model.Entity{a, b})
	_ = e.FindTarget([]*model.Entity{a, b})

	ops := make([]string, 0, 4)
	for _, st := range e.Performance() {
		ops = append(ops, st.Operation)
	}
	assert.ElementsMatch(t, []string{
		metrics.OpFindTarget,
		metrics.OpRangeFilter,
		metrics.OpThreatCalculation,
		metrics.OpUpdateTarget,
	}, ops)
}

func TestDue(t *testing.T) {
	e, clock := newTestEngine(t, nil)
	assert.True(t, e.Due(clock.now))

	e.UpdateTarget(nil)
	assert.False(t, e.Due(clock.now.Add(50*time.Millisecond)))
	assert.True(t, e.Due(clock.now.Add(100*time.Millisecond)))
}

func ptr[T any](v T) *T { return &v }

func BenchmarkUpdateTarget_500(b *testing.B) {
	r := rand.New(rand.NewPCG(2, 3))
	set := make([]*model.Entity, 500)
	for i := range set {
		set[i] = enemy(model.EntityID(i+1), r.Float64()*2000-1000, r.Float64()*2000-1000)
		set[i].Damage = r.Float64() * 100
	}

	for _, threshold := range []int{0, 128} {
		cfg := config.DefaultTargeting()
		cfg.PrimaryStrategy = model.StrategyHighestThreat
		cfg.PersistenceMode = model.ModeSwitchAggressive
		cfg.SpatialIndexThreshold = threshold
		e, err := NewEngine(model.NewActor(model.NewPosition(0, 0), 500, model.ElementFire), cfg, nil, nil)
		require.NoError(b, err)

		name := "linear"
		if threshold > 0 {
			name = "indexed"
		}
		b.Run(name, func(b *testing.B) {
			for range b.N {
				e.UpdateTarget(set)
			}
		})
	}
}
