package strategy

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/rangefilter"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/testutil"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/unlock"
)

func enemy(id model.EntityID, x, y float64) *model.Entity {
	return &model.Entity{
		ID:       id,
		Position: model.NewPosition(x, y),
		Health:   model.Health{Current: 100, Max: 100},
		Damage:   10,
		Speed:    50,
		Armor:    5,
		Alive:    true,
	}
}

func dragon(element model.Element) *model.Actor {
	return model.NewActor(model.NewPosition(0, 0), 500, element)
}

func TestSelect_ClosestScenario(t *testing.T) {
	lib := NewLibrary(nil)
	actor := dragon(model.ElementFire)
	near := enemy(1, 100, 100)
	mid := enemy(2, 200, 200)
	far := enemy(3, 600, 600)
	far.Damage = 1000
	far.Health.Current = 1000

	got, err := lib.Select(model.StrategyClosest, []*model.Entity{far, mid, near}, actor)
	require.NoError(t, err)
	assert.Same(t, near, got)

	for _, name := range lib.Names() {
		got, err := lib.Select(name, []*model.Entity{far, mid, near}, actor)
		require.NoError(t, err, name)
		assert.NotSame(t, far, got, "%s picked an out-of-range entity", name)
	}
}

func TestSelect_StatExtremes(t *testing.T) {
	lib := NewLibrary(nil)
	actor := dragon(model.ElementNone)

	a := enemy(1, 50, 0)
	a.Health.Current, a.Damage, a.Speed, a.Armor = 80, 30, 10, 40
	b := enemy(2, 150, 0)
	b.Health.Current, b.Damage, b.Speed, b.Armor = 20, 90, 150, 0
	c := enemy(3, 250, 0)
	c.Health.Current, c.Damage, c.Speed, c.Armor = 60, 5, 80, 20
	set := []*model.Entity{a, b, c}

	tests := []struct {
		name model.StrategyName
		want *model.Entity
	}{
		{model.StrategyClosest, a},
		{model.StrategyHighestHP, a},
		{model.StrategyLowestHP, b},
		{model.StrategyHighestDamage, b},
		{model.StrategyLowestDamage, c},
		{model.StrategyFastest, b},
		{model.StrategySlowest, a},
		{model.StrategyHighestArmor, a},
		{model.StrategyLowestArmor, b},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			got, err := lib.Select(tt.name, set, actor)
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestSelect_TiesKeepFirst(t *testing.T) {
	lib := NewLibrary(nil)
	actor := dragon(model.ElementNone)
	a := enemy(1, 100, 0)
	b := enemy(2, 0, 100)

	for _, name := range lib.Names() {
		got, err := lib.Select(name, []*model.Entity{a, b}, actor)
		require.NoError(t, err)
		assert.Same(t, a, got, "%s broke a tie in favour of a later entity", name)

		got, err = lib.Select(name, []*model.Entity{b, a}, actor)
		require.NoError(t, err)
		assert.Same(t, b, got, name)
	}
}

func TestSelect_Threat(t *testing.T) {
	lib := NewLibrary(nil)
	actor := dragon(model.ElementNone)

	harmless := enemy(1, 400, 0)
	harmless.Damage, harmless.Speed, harmless.Armor = 0, 0, 0
	harmless.Health.Current = 10
	brute := enemy(2, 50, 0)
	brute.Damage, brute.Speed = 100, 200
	set := []*model.Entity{harmless, brute}

	got, err := lib.Select(model.StrategyHighestThreat, set, actor)
	require.NoError(t, err)
	assert.Same(t, brute, got)

	got, err = lib.Select(model.StrategyLowestThreat, set, actor)
	require.NoError(t, err)
	assert.Same(t, harmless, got)
}

func TestSelect_ShieldedFallsBackToClosest(t *testing.T) {
	lib := NewLibrary(nil)
	actor := dragon(model.ElementNone)
	near := enemy(1, 30, 0)
	far := enemy(2, 300, 0)
	set := []*model.Entity{far, near}

	closest, err := lib.Select(model.StrategyClosest, set, actor)
	require.NoError(t, err)
	got, err := lib.Select(model.StrategyShielded, set, actor)
	require.NoError(t, err)
	assert.Same(t, closest, got)

	far.Shield = 25
	got, err = lib.Select(model.StrategyShielded, set, actor)
	require.NoError(t, err)
	assert.Same(t, far, got)

	got, err = lib.Select(model.StrategyUnshielded, set, actor)
	require.NoError(t, err)
	assert.Same(t, near, got)

	near.Shield = 5
	got, err = lib.Select(model.StrategyUnshielded, set, actor)
	require.NoError(t, err)
	assert.Same(t, near, got, "all shielded falls back to closest")
}

func TestSelect_ElementalTriad(t *testing.T) {
	lib := NewLibrary(nil)
	actor := dragon(model.ElementFire)

	lightning := enemy(1, 50, 0)
	lightning.Element = model.ElementLightning
	ice := enemy(2, 300, 0)
	ice.Element = model.ElementIce
	plain := enemy(3, 10, 0)
	set := []*model.Entity{lightning, plain, ice}

	got, err := lib.Select(model.StrategyElementalWeak, set, actor)
	require.NoError(t, err)
	assert.Same(t, ice, got, "fire beats ice")

	got, err = lib.Select(model.StrategyElementalStrong, set, actor)
	require.NoError(t, err)
	assert.Same(t, lightning, got, "energy resists fire")

	got, err = lib.Select(model.StrategyElementalWeak, []*model.Entity{enemy(4, 200, 0), plain}, actor)
	require.NoError(t, err)
	assert.Same(t, plain, got, "no affinities falls back to closest")
}

func TestSelect_ElementalRespectsResistance(t *testing.T) {
	lib := NewLibrary(nil)
	actor := dragon(model.ElementFire)

	resistantIce := enemy(1, 50, 0)
	resistantIce.Element = model.ElementIce
	resistantIce.Resistances = map[model.Element]float64{model.ElementFire: 80}
	mist := enemy(2, 100, 0)
	mist.Element = model.ElementMist

	got, err := lib.Select(model.StrategyElementalWeak, []*model.Entity{resistantIce, mist}, actor)
	require.NoError(t, err)
	assert.Same(t, mist, got)
}

func TestSelect_EmptyAndUnknown(t *testing.T) {
	lib := NewLibrary(nil)
	actor := dragon(model.ElementFire)

	dead := enemy(1, 10, 0)
	dead.Alive = false
	for _, name := range lib.Names() {
		got, err := lib.Select(name, []*model.Entity{dead}, actor)
		require.NoError(t, err)
		assert.Nil(t, got, name)
	}

	_, err := lib.Select("teleport", nil, actor)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestCustom(t *testing.T) {
	actor := dragon(model.ElementNone)
	near := enemy(1, 10, 0)
	far := enemy(2, 400, 0)
	set := []*model.Entity{near, far}

	tests := []struct {
		name     string
		selector CustomSelector
		want     *model.Entity
	}{
		{"nil selector", nil, near},
		{"picks far", func(v []*model.Entity, _ *model.Actor) (*model.Entity, error) { return v[1], nil }, far},
		{"copy with same id", func([]*model.Entity, *model.Actor) (*model.Entity, error) { return &model.Entity{ID: 2}, nil }, far},
		{"returns nil", func([]*model.Entity, *model.Actor) (*model.Entity, error) { return nil, nil }, near},
		{"returns error", func([]*model.Entity, *model.Actor) (*model.Entity, error) { return far, testutil.ErrSimulated }, near},
		{"panics", func([]*model.Entity, *model.Actor) (*model.Entity, error) { panic("script crashed") }, near},
		{"outside set", func([]*model.Entity, *model.Actor) (*model.Entity, error) { return enemy(99, 0, 0), nil }, near},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := NewLibrary(nil)
			lib.SetCustomSelector(tt.selector)
			got, err := lib.Select(model.StrategyCustom, set, actor)
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestRegistry(t *testing.T) {
	lib := NewLibrary(nil)
	names := lib.Names()
	require.Len(t, names, 16)
	assert.Equal(t, model.BuiltinStrategies(), names)
	assert.Equal(t, CategoryElemental, lib.Category(model.StrategyElementalWeak))
	assert.Equal(t, "Target the nearest enemy in range", lib.Descriptions()[model.StrategyClosest])

	require.Error(t, lib.Register(Definition{Name: "", Handler: Closest}))
	require.Error(t, lib.Register(Definition{Name: "x"}))

	farthest := func(valid []*model.Entity, actor *model.Actor) *model.Entity {
		sorted := rangefilter.SortedByDistance(valid, actor)
		return sorted[len(sorted)-1]
	}
	require.NoError(t, lib.Register(Definition{Name: "farthest", Description: "Target the farthest enemy", Handler: farthest}))
	assert.True(t, lib.Has("farthest"))
	assert.Equal(t, CategoryAdvanced, lib.Category("farthest"))
	assert.Equal(t, model.StrategyName("farthest"), lib.Names()[16])

	got, err := lib.Select("farthest", []*model.Entity{enemy(1, 10, 0), enemy(2, 90, 0)}, dragon(model.ElementNone))
	require.NoError(t, err)
	assert.Equal(t, model.EntityID(2), got.ID)

	assert.True(t, lib.Unregister("farthest"))
	assert.False(t, lib.Unregister("farthest"))
	assert.False(t, lib.Has("farthest"))
	assert.Len(t, lib.Names(), 16)
}

func TestIsUnlocked(t *testing.T) {
	lib := NewLibrary(nil)
	p := unlock.NewStatic([]model.StrategyName{model.StrategyClosest}, nil)

	assert.True(t, lib.IsUnlocked(model.StrategyClosest, p))
	assert.False(t, lib.IsUnlocked(model.StrategyFastest, p))
	assert.True(t, lib.IsUnlocked(model.StrategyFastest, nil))
	assert.False(t, lib.IsUnlocked("nope", unlock.AllowAll()))
}

// Every strategy returns an in-range live entity whenever one exists.
func TestStrategies_RangeExclusivityAndTotality(t *testing.T) {
	lib := NewLibrary(nil)
	r := rand.New(rand.NewPCG(7, 11))
	elements := []model.Element{model.ElementNone, model.ElementFire, model.ElementIce, model.ElementVoid}

	for round := range 200 {
		actor := model.NewActor(model.NewPosition(r.Float64()*200, r.Float64()*200), 50+r.Float64()*400, elements[round%len(elements)])
		set := make([]*model.Entity, 1+r.IntN(30))
		for i := range set {
			e := enemy(model.EntityID(i+1), r.Float64()*1200-600, r.Float64()*1200-600)
			e.Alive = r.IntN(4) != 0
			e.Shield = float64(r.IntN(2)) * 10
			e.Element = elements[r.IntN(len(elements))]
			e.Health.Current = r.Float64() * 100
			e.Damage = r.Float64() * 120
			set[i] = e
		}
		valid := rangefilter.Filter(set, actor)

		for _, name := range lib.Names() {
			got, err := lib.Select(name, set, actor)
			require.NoError(t, err)
			if len(valid) == 0 {
				assert.Nil(t, got, name)
				continue
			}
			require.NotNil(t, got, "%s returned nil with %d valid entities", name, len(valid))
			assert.True(t, got.Alive, name)
			assert.True(t, rangefilter.InRange(actor, got), name)

			again, _ := lib.Select(name, set, actor)
			assert.Same(t, got, again, "%s is not deterministic", name)
		}
	}
}

func BenchmarkSelect_HighestThreat_500(b *testing.B) {
	lib := NewLibrary(nil)
	r := rand.New(rand.NewPCG(1, 1))
	set := make([]*model.Entity, 500)
	for i := range set {
		set[i] = enemy(model.EntityID(i+1), r.Float64()*1000-500, r.Float64()*1000-500)
	}
	actor := dragon(model.ElementFire)

	for range b.N {
		_, _ = lib.Select(model.StrategyHighestThreat, set, actor)
	}
}

func TestSelect_MixedRoster(t *testing.T) {
	lib := NewLibrary(nil)
	actor := testutil.Dragon(500, model.ElementFire)

	near, mid, far := testutil.ThreeDistances()
	roster := []*model.Entity{
		far, mid, near,
		testutil.Enemy(4, 150, 0, testutil.WithHealth(10, 100)),
		testutil.Enemy(5, 300, 0, testutil.WithDamage(95)),
		testutil.Enemy(6, 250, 0, testutil.WithShield(40)),
		testutil.Enemy(7, 350, 0, testutil.WithElement(model.ElementIce, 0)),
		testutil.Enemy(8, 5, 0, testutil.Dead(), testutil.WithDamage(100)),
	}

	tests := []struct {
		strategy model.StrategyName
		want     model.EntityID
	}{
		{model.StrategyClosest, 1},
		{model.StrategyLowestHP, 4},
		{model.StrategyHighestDamage, 5},
		{model.StrategyShielded, 6},
		{model.StrategyElementalWeak, 7},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			got, err := lib.Select(tt.strategy, roster, actor)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}
