package encounter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/game/combat"
	"github.com/udisondev/chatrpg/internal/game/rng"
)

func testView(t *testing.T, turn int) View {
	t.Helper()
	cat := testCatalog(t)
	foe := spawn(t, cat, "tank")[0]
	return View{
		Turn:   turn,
		Self:   combat.NewActorState("Tank", foe),
		Player: combat.NewActorState("Hero", newHero(t, cat, 1)),
		Rand:   rng.New(99),
	}
}

func TestParseEnemyAction(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{in: "attack", want: Attack(0)},
		{in: "  attack ", want: Attack(0)},
		{in: "ability:bite", want: UseAbility("bite", 0)},
		{in: "ability:", wantErr: true},
		{in: "flee", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEnemyAction(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeightedBehavior(t *testing.T) {
	ctx := context.Background()

	t.Run("empty table attacks", func(t *testing.T) {
		b, err := NewWeightedBehavior(nil)
		require.NoError(t, err)
		a, err := b.Choose(ctx, testView(t, 1))
		require.NoError(t, err)
		assert.Equal(t, ActionAttack, a.Kind)
	})

	t.Run("zero weight never chosen", func(t *testing.T) {
		b, err := NewWeightedBehavior([]data.BehaviorEntry{
			{Action: "attack", Weight: 0},
			{Action: "ability:bite", Weight: 5},
		})
		require.NoError(t, err)
		v := testView(t, 1)
		for range 200 {
			a, err := b.Choose(ctx, v)
			require.NoError(t, err)
			assert.Equal(t, "bite", a.Ability)
		}
	})

	t.Run("frequencies follow weights", func(t *testing.T) {
		b, err := NewWeightedBehavior([]data.BehaviorEntry{
			{Action: "attack", Weight: 70},
			{Action: "ability:bite", Weight: 30},
		})
		require.NoError(t, err)
		v := testView(t, 1)

		const draws = 10000
		bites := 0
		for range draws {
			a, err := b.Choose(ctx, v)
			require.NoError(t, err)
			if a.Kind == ActionAbility {
				bites++
			}
		}
		assert.InDelta(t, 3000, bites, 300)
	})

	t.Run("bad action", func(t *testing.T) {
		_, err := NewWeightedBehavior([]data.BehaviorEntry{{Action: "dance", Weight: 1}})
		assert.Error(t, err)
	})
}

func TestLuaBehavior(t *testing.T) {
	ctx := context.Background()

	t.Run("reads state", func(t *testing.T) {
		b, err := NewLuaBehavior("t", `
function choose(state)
  if state.turn >= 3 and state.player_hp == state.player_max_hp then
    return "ability:bite"
  end
  return "attack"
end`)
		require.NoError(t, err)
		defer b.Close()

		a, err := b.Choose(ctx, testView(t, 1))
		require.NoError(t, err)
		assert.Equal(t, Attack(0), a)

		a, err = b.Choose(ctx, testView(t, 3))
		require.NoError(t, err)
		assert.Equal(t, UseAbility("bite", 0), a)
	})

	t.Run("roll comes from the session source", func(t *testing.T) {
		b, err := NewLuaBehavior("t", `
function choose(state)
  if state.roll < 0 or state.roll > 99 then error("roll out of range") end
  return "attack"
end`)
		require.NoError(t, err)
		defer b.Close()

		v := testView(t, 1)
		before := v.Rand.Position()
		_, err = b.Choose(ctx, v)
		require.NoError(t, err)
		assert.Equal(t, before+1, v.Rand.Position())
	})

	t.Run("sandbox", func(t *testing.T) {
		b, err := NewLuaBehavior("t", `
function choose(state)
  if os ~= nil or io ~= nil or load ~= nil or dofile ~= nil or math.random ~= nil then
    return "ability:escaped"
  end
  return "attack"
end`)
		require.NoError(t, err)
		defer b.Close()

		a, err := b.Choose(ctx, testView(t, 1))
		require.NoError(t, err)
		assert.Equal(t, ActionAttack, a.Kind)
	})

	t.Run("compile error", func(t *testing.T) {
		_, err := NewLuaBehavior("t", "function choose(")
		assert.Error(t, err)
	})

	t.Run("missing choose", func(t *testing.T) {
		_, err := NewLuaBehavior("t", "x = 1")
		assert.ErrorContains(t, err, "choose")
	})

	t.Run("non-string result", func(t *testing.T) {
		b, err := NewLuaBehavior("t", "function choose(state) return 42 end")
		require.NoError(t, err)
		defer b.Close()
		_, err = b.Choose(ctx, testView(t, 1))
		assert.Error(t, err)
	})

	t.Run("runtime error", func(t *testing.T) {
		b, err := NewLuaBehavior("t", `function choose(state) error("boom") end`)
		require.NoError(t, err)
		defer b.Close()
		_, err = b.Choose(ctx, testView(t, 1))
		assert.ErrorContains(t, err, "boom")
	})
}

func TestCatalogBehaviors(t *testing.T) {
	cat := testCatalog(t)

	b, err := CatalogBehaviors{}.BehaviorFor(spawn(t, cat, "scripted")[0])
	require.NoError(t, err)
	lb, ok := b.(*LuaBehavior)
	require.True(t, ok)
	defer lb.Close()

	b, err = CatalogBehaviors{}.BehaviorFor(spawn(t, cat, "wolf")[0])
	require.NoError(t, err)
	assert.IsType(t, &WeightedBehavior{}, b)
}

func TestEngine_ScriptedEnemyActs(t *testing.T) {
	cat := testCatalog(t)
	e, _ := newTestEngine(t, cat)
	ctx := context.Background()

	start, err := e.CreateSession(ctx, newHero(t, cat, 1), spawn(t, cat, "scripted"))
	require.NoError(t, err)

	ev, err := e.SubmitAction(ctx, start.SessionID, UseAbility("ward", AutoTarget))
	require.NoError(t, err)
	require.Len(t, ev.Entries, 2)
	assert.Equal(t, EntryHit, ev.Entries[1].Kind)
	assert.Equal(t, "Scripted", ev.Entries[1].Actor)
	assert.Empty(t, ev.Entries[1].Detail, "plain attack")
}
