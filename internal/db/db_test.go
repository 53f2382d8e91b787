package db_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/db"
	"github.com/udisondev/chatrpg/internal/game/encounter"
	"github.com/udisondev/chatrpg/internal/game/loot"
	"github.com/udisondev/chatrpg/internal/model"
	"github.com/udisondev/chatrpg/internal/testutil"
)

type fixture struct {
	pool    *pgxpool.Pool
	catalog *data.Catalog
	chars   *db.CharacterRepository
	inv     *db.InventoryRepository
	history *db.HistoryRepository
	outcome *db.OutcomeService
}

func setup(t *testing.T) fixture {
	t.Helper()
	pool := testutil.SetupTestDB(t)
	cat, err := data.LoadDefault()
	require.NoError(t, err)

	inv := db.NewInventoryRepository(pool)
	history := db.NewHistoryRepository(pool)
	return fixture{
		pool:    pool,
		catalog: cat,
		chars:   db.NewCharacterRepository(pool),
		inv:     inv,
		history: history,
		outcome: db.NewOutcomeService(pool, inv, history),
	}
}

func TestCharacterRepository_CreateAndLoad(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.chars.Create(ctx, "Aria", "warrior")
	require.NoError(t, err)

	found, err := f.chars.FindByName(ctx, "Aria")
	require.NoError(t, err)
	assert.Equal(t, id, found)

	sword, _ := f.catalog.Item("rusty_sword")
	require.NoError(t, f.chars.Equip(ctx, id, sword))
	require.NoError(t, f.chars.LearnAbility(ctx, id, "fireball"))
	require.NoError(t, f.chars.LearnAbility(ctx, id, "fireball"), "learning twice is harmless")
	require.NoError(t, f.inv.Add(ctx, id, "potion", 3))
	require.NoError(t, f.inv.Add(ctx, id, "goblin_ear", 2))

	c, err := f.chars.LoadCharacter(ctx, id, f.catalog)
	require.NoError(t, err)
	assert.Equal(t, "Aria", c.Name())
	assert.Equal(t, 1, c.Level())
	assert.Equal(t, "warrior", c.Archetype())
	assert.Equal(t, sword, c.Equipped(data.SlotWeapon))
	assert.True(t, c.KnowsAbility("fireball"))
	assert.True(t, c.KnowsAbility("stoneskin"))
	assert.Equal(t, map[string]int{"potion": 3}, c.Consumables(), "materials are not consumables")

	potion, _ := f.catalog.Item("potion")
	assert.ErrorIs(t, f.chars.Equip(ctx, id, potion), model.ErrNotEquippable)
}

func TestCharacterRepository_NotFound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.chars.LoadCharacter(ctx, 404, f.catalog)
	assert.ErrorIs(t, err, db.ErrCharacterNotFound)
	_, err = f.chars.FindByName(ctx, "nobody")
	assert.ErrorIs(t, err, db.ErrCharacterNotFound)
}

func TestOutcomeService_ApplyOutcome(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id := testutil.SeedCharacter(t, f.pool, "Borin", "adventurer", map[string]int{"potion": 1, "ether": 2})

	victory := encounter.Outcome{
		SessionID:   "s-victory",
		CharacterID: id,
		State:       encounter.StateVictory,
		Turns:       3,
		Health:      40,
		Experience:  data.ExpForLevel(2),
		Currency:    25,
		Loot:        []loot.Drop{{Item: "goblin_ear", Quantity: 2}, {Item: "potion", Quantity: 1}},
		Defeated:    []string{"goblin"},
		Consumed:    map[string]int{"potion": 1, "ether": 1},
	}
	require.NoError(t, f.outcome.ApplyOutcome(ctx, victory))
	require.NoError(t, f.outcome.ApplyOutcome(ctx, victory), "second apply is a no-op")

	c, err := f.chars.LoadCharacter(ctx, id, f.catalog)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Level())
	assert.Equal(t, data.ExpForLevel(2), c.Experience())
	assert.Equal(t, int64(25), c.Currency())
	assert.Equal(t, 0, c.Health(), "level-up restores full health")

	items, err := f.inv.List(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"goblin_ear": 2, "potion": 1, "ether": 1}, items)

	history, err := f.history.Recent(ctx, id, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "s-victory", history[0].SessionID)
	assert.Equal(t, "victory", history[0].State)
	assert.Equal(t, victory.Loot, history[0].Loot)
	assert.Equal(t, []string{"goblin"}, history[0].Defeated)

	defeat := encounter.Outcome{
		SessionID:   "s-defeat",
		CharacterID: id,
		State:       encounter.StateDefeat,
		Turns:       2,
		Consumed:    map[string]int{"ether": 5},
	}
	require.NoError(t, f.outcome.ApplyOutcome(ctx, defeat))

	c, err = f.chars.LoadCharacter(ctx, id, f.catalog)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Health(), "defeat leaves the character on 1 health")
	assert.Equal(t, int64(25), c.Currency())

	items, err = f.inv.List(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"goblin_ear": 2, "potion": 1}, items, "over-consumption removes the stack")

	history, err = f.history.Recent(ctx, id, 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestOutcomeService_UnknownCharacter(t *testing.T) {
	f := setup(t)
	err := f.outcome.ApplyOutcome(context.Background(), encounter.Outcome{
		SessionID:   "s-ghost",
		CharacterID: 999,
		State:       encounter.StateFled,
	})
	assert.ErrorIs(t, err, db.ErrCharacterNotFound)
}
