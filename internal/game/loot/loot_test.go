package loot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/chatrpg/internal/game/rng"
)

func TestSlotRoll_FrequenciesConverge(t *testing.T) {
	slot := Slot{Entries: []Entry{
		{Weight: 1, Item: "a"},
		{Weight: 3, Item: "b"},
		{Weight: 6, Item: "c"},
	}}
	r := rng.New(2024)

	const draws = 100_000
	counts := map[string]int{}
	for range draws {
		e, ok := slot.Roll(r)
		require.True(t, ok)
		counts[e.Item]++
	}

	assert.InDelta(t, 0.1, float64(counts["a"])/draws, 0.01)
	assert.InDelta(t, 0.3, float64(counts["b"])/draws, 0.01)
	assert.InDelta(t, 0.6, float64(counts["c"])/draws, 0.01)
}

func TestSlotRoll_ZeroWeightNeverSelected(t *testing.T) {
	slot := Slot{Entries: []Entry{
		{Weight: 0, Item: "never"},
		{Weight: 5, Item: "sometimes"},
		{Weight: 0, Item: "never-either"},
		{Weight: 5, Item: "often"},
	}}
	r := rng.New(1)
	for range 20_000 {
		e, ok := slot.Roll(r)
		require.True(t, ok)
		require.NotEqual(t, "never", e.Item)
		require.NotEqual(t, "never-either", e.Item)
	}
}

func TestResolve_ZeroTotalWeightYieldsNothing(t *testing.T) {
	table := Table{ID: "empty", Slots: []Slot{
		{Entries: []Entry{{Weight: 0, Item: "x"}}},
		{},
	}}
	r := rng.New(3)
	for range 100 {
		assert.Empty(t, Resolve(table, r))
	}
}

func TestResolve_PotionSlot(t *testing.T) {
	table := Table{ID: "goblin", Slots: []Slot{{Entries: []Entry{
		{Weight: 70, NoDrop: true},
		{Weight: 30, Item: "potion", Min: 1, Max: 2},
	}}}}
	r := rng.New(777)

	const draws = 10_000
	potions := 0
	quantities := map[int]int{}
	for range draws {
		drops := Resolve(table, r)
		if len(drops) == 0 {
			continue
		}
		require.Len(t, drops, 1)
		require.Equal(t, "potion", drops[0].Item)
		potions++
		quantities[drops[0].Quantity]++
	}

	assert.InDelta(t, 3000, potions, 250)
	for q := range quantities {
		assert.Contains(t, []int{1, 2}, q)
	}
	assert.InDelta(t, 0.5, float64(quantities[1])/float64(potions), 0.05)
}

func TestResolve_QuantityDefaultsToOne(t *testing.T) {
	table := Table{Slots: []Slot{{Entries: []Entry{{Weight: 1, Item: "coin"}}}}}
	drops := Resolve(table, rng.New(8))
	require.Len(t, drops, 1)
	assert.Equal(t, Drop{Item: "coin", Quantity: 1}, drops[0])
}

func TestResolve_SlotsIndependent(t *testing.T) {
	table := Table{Slots: []Slot{
		{Entries: []Entry{{Weight: 1, Item: "a"}}},
		{Entries: []Entry{{Weight: 1, Item: "b", Min: 3, Max: 3}}},
	}}
	drops := Resolve(table, rng.New(9))
	assert.Equal(t, []Drop{{Item: "a", Quantity: 1}, {Item: "b", Quantity: 3}}, drops)
}

func TestScale(t *testing.T) {
	drops := []Drop{{Item: "a", Quantity: 3}, {Item: "b", Quantity: 1}}

	assert.Equal(t, drops, Scale(drops, 1))
	assert.Equal(t, []Drop{{Item: "a", Quantity: 6}, {Item: "b", Quantity: 2}}, Scale(drops, 2))
	assert.Equal(t, []Drop{{Item: "a", Quantity: 1}, {Item: "b", Quantity: 1}}, Scale(drops, 0.1))
}

func TestMerge(t *testing.T) {
	got := Merge([]Drop{
		{Item: "potion", Quantity: 1},
		{Item: "fang", Quantity: 2},
		{Item: "potion", Quantity: 2},
	})
	assert.Equal(t, []Drop{{Item: "potion", Quantity: 3}, {Item: "fang", Quantity: 2}}, got)
}

func TestValidate(t *testing.T) {
	known := func(id string) bool { return id == "potion" || id == "fang" }

	valid := Table{ID: "ok", Slots: []Slot{{Entries: []Entry{
		{Weight: 70, NoDrop: true},
		{Weight: 30, Item: "potion", Min: 1, Max: 2},
		{Weight: 0, Item: "fang"},
	}}}}
	require.NoError(t, Validate(valid, known))

	tests := []struct {
		name  string
		entry Entry
	}{
		{"unknown item", Entry{Weight: 1, Item: "dragon_egg"}},
		{"negative weight", Entry{Weight: -1, Item: "potion"}},
		{"missing item", Entry{Weight: 1}},
		{"min above max", Entry{Weight: 1, Item: "potion", Min: 3, Max: 2}},
		{"negative quantity", Entry{Weight: 1, Item: "potion", Min: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := Table{ID: "bad", Slots: []Slot{{Entries: []Entry{tt.entry}}}}
			err := Validate(table, known)
			assert.ErrorIs(t, err, ErrInvalidLootEntry)
		})
	}
}
