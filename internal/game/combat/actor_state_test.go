package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/chatrpg/internal/game/stats"
)

type testSource struct {
	level int
	defs  stats.Table
	mods  []stats.Modifier
}

func (s testSource) Level() int                      { return s.level }
func (s testSource) StatDef(st stats.Stat) stats.Def { return s.defs[st] }
func (s testSource) Modifiers() []stats.Modifier     { return s.mods }

func newTestActor(hp int) *ActorState {
	return NewActorState("dummy", testSource{
		level: 1,
		defs: stats.Table{
			stats.MaxHP:   {Base: float64(hp)},
			stats.MaxMP:   {Base: 20},
			stats.MaxAmmo: {Base: 5},
		},
	})
}

func TestNewActorState_StartsFull(t *testing.T) {
	a := newTestActor(50)
	assert.Equal(t, 50, a.Health())
	assert.Equal(t, 50, a.MaxHealth())
	assert.Equal(t, 20, a.Resource(Mana))
	assert.Equal(t, 5, a.Resource(Ammo))
	assert.True(t, a.Alive())
}

func TestApplyDamage_ClampsAndSignalsOnce(t *testing.T) {
	a := newTestActor(30)
	signals := 0
	a.OnDefeated(func(*ActorState) { signals++ })

	assert.Equal(t, 10, a.ApplyDamage(10))
	assert.Equal(t, 20, a.Health())

	assert.Equal(t, 20, a.ApplyDamage(100))
	assert.Equal(t, 0, a.Health())
	assert.False(t, a.Alive())
	assert.True(t, a.Defeated())

	assert.Equal(t, 0, a.ApplyDamage(5))
	assert.Equal(t, 0, a.ApplyDamage(50))
	assert.Equal(t, 0, a.Health())
	assert.Equal(t, 1, signals)
}

func TestApplyDamage_IgnoresNonPositive(t *testing.T) {
	a := newTestActor(30)
	assert.Equal(t, 0, a.ApplyDamage(0))
	assert.Equal(t, 0, a.ApplyDamage(-4))
	assert.Equal(t, 30, a.Health())
}

func TestApplyHealing(t *testing.T) {
	a := newTestActor(40)
	a.ApplyDamage(25)

	assert.Equal(t, 10, a.ApplyHealing(10))
	assert.Equal(t, 25, a.Health())

	assert.Equal(t, 15, a.ApplyHealing(500))
	assert.Equal(t, 40, a.Health())

	a.ApplyDamage(40)
	assert.Equal(t, 0, a.ApplyHealing(20), "healing a defeated actor is a no-op")
	assert.False(t, a.Alive())
}

func TestConsumeResource(t *testing.T) {
	a := newTestActor(10)

	require.NoError(t, a.ConsumeResource(Mana, 8))
	assert.Equal(t, 12, a.Resource(Mana))

	err := a.ConsumeResource(Mana, 13)
	assert.ErrorIs(t, err, ErrInsufficientResource)
	assert.Equal(t, 12, a.Resource(Mana), "failed consume leaves the pool unchanged")

	require.NoError(t, a.ConsumeResource(Ammo, 5))
	assert.ErrorIs(t, a.ConsumeResource(Ammo, 1), ErrInsufficientResource)

	assert.Equal(t, 5, a.RestoreResource(Ammo, 9))
	assert.Equal(t, 5, a.Resource(Ammo))
}

func TestTickEffects_ExpiresAndRemovesModifiers(t *testing.T) {
	a := newTestActor(30)
	a.AddEffect(StatusEffect{
		ID:        "stoneskin",
		Remaining: 2,
		Modifiers: []stats.Modifier{stats.Add(stats.Defence, 5)},
	})
	assert.InDelta(t, 5, a.Stat(stats.Defence), 1e-9)

	ticks := a.TickEffects()
	require.Len(t, ticks, 1)
	assert.False(t, ticks[0].Expired)
	assert.InDelta(t, 5, a.Stat(stats.Defence), 1e-9)
	assert.Equal(t, 1, a.Effects()[0].Remaining)

	ticks = a.TickEffects()
	require.Len(t, ticks, 1)
	assert.True(t, ticks[0].Expired)
	assert.Empty(t, a.Effects())
	assert.Zero(t, a.Stat(stats.Defence))

	assert.Nil(t, a.TickEffects())
}

func TestTickEffects_HealthPerTurn(t *testing.T) {
	a := newTestActor(20)
	defeated := 0
	a.OnDefeated(func(*ActorState) { defeated++ })

	a.AddEffect(StatusEffect{ID: "poison", Remaining: 10, HealthPerTurn: -8})
	ticks := a.TickEffects()
	assert.Equal(t, -8, ticks[0].HealthDelta)
	assert.Equal(t, 12, a.Health())

	a.TickEffects()
	a.TickEffects()
	assert.Equal(t, 0, a.Health())
	assert.Equal(t, 1, defeated)
}

func TestTickEffects_ReclampsWhenMaxShrinks(t *testing.T) {
	a := newTestActor(50)
	a.AddEffect(StatusEffect{
		ID:        "vigor",
		Remaining: 1,
		Modifiers: []stats.Modifier{stats.Add(stats.MaxHP, 50)},
	})
	a.ApplyHealing(50)
	assert.Equal(t, 100, a.Health())

	a.TickEffects()
	assert.Equal(t, 50, a.MaxHealth())
	assert.Equal(t, 50, a.Health())
}

func TestAddEffect_SameIDReplaces(t *testing.T) {
	a := newTestActor(10)
	a.AddEffect(StatusEffect{ID: "haste", Remaining: 1})
	a.AddEffect(StatusEffect{ID: "haste", Remaining: 4})
	a.AddEffect(StatusEffect{ID: "ignored", Remaining: 0})

	effects := a.Effects()
	require.Len(t, effects, 1)
	assert.Equal(t, 4, effects[0].Remaining)
	assert.True(t, a.HasEffect("haste"))
	assert.False(t, a.HasEffect("ignored"))
}

func TestSetHealth(t *testing.T) {
	a := newTestActor(40)
	a.SetHealth(15)
	assert.Equal(t, 15, a.Health())
	a.SetHealth(400)
	assert.Equal(t, 40, a.Health())
	a.SetHealth(0)
	assert.True(t, a.Defeated())
}
