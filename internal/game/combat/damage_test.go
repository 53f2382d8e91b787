package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/chatrpg/internal/game/rng"
	"github.com/udisondev/chatrpg/internal/game/stats"
)

func duelists(attackerCrit, defenderDodge, defence float64) (*ActorState, *ActorState) {
	attacker := NewActorState("attacker", testSource{level: 1, defs: stats.Table{
		stats.MaxHP:     {Base: 100},
		stats.MinDamage: {Base: 7},
		stats.MaxDamage: {Base: 12},
		stats.Crit:      {Base: attackerCrit},
	}})
	defender := NewActorState("defender", testSource{level: 1, defs: stats.Table{
		stats.MaxHP:   {Base: 100},
		stats.Defence: {Base: defence},
		stats.Dodge:   {Base: defenderDodge},
	}})
	return attacker, defender
}

func TestResolveHit_DamageWithinMitigatedBounds(t *testing.T) {
	attacker, defender := duelists(0, 0, 3)
	r := rng.New(11)

	seen := map[int]bool{}
	for range 5000 {
		h := ResolveHit(r, attacker, defender, WeaponStrike(attacker), DefaultTuning())
		assert.False(t, h.Dodged)
		assert.False(t, h.Crit)
		assert.GreaterOrEqual(t, h.Damage, 4)
		assert.LessOrEqual(t, h.Damage, 9)
		seen[h.Damage] = true
	}
	assert.Len(t, seen, 6)
}

func TestResolveHit_CritMultiplies(t *testing.T) {
	attacker, defender := duelists(100, 0, 3)
	r := rng.New(12)

	for range 1000 {
		h := ResolveHit(r, attacker, defender, WeaponStrike(attacker), DefaultTuning())
		assert.True(t, h.Crit)
		assert.GreaterOrEqual(t, h.Raw, 10) // 7 * 1.5
		assert.LessOrEqual(t, h.Raw, 18)
		assert.Equal(t, h.Raw-3, h.Damage)
	}
}

func TestResolveHit_DodgeSkipsCritAndDamage(t *testing.T) {
	attacker, defender := duelists(100, 100, 0)
	r := rng.New(13)

	h := ResolveHit(r, attacker, defender, WeaponStrike(attacker), Tuning{CritMultiplier: 2, MaxDodge: 100, MaxCrit: 100})
	assert.True(t, h.Dodged)
	assert.False(t, h.Crit)
	assert.Zero(t, h.Damage)
	assert.Equal(t, int64(1), r.Position(), "only the dodge roll is drawn")
}

func TestResolveHit_DodgeCapped(t *testing.T) {
	attacker, defender := duelists(0, 100, 0)
	r := rng.New(14)

	dodged := 0
	const n = 10_000
	for range n {
		if ResolveHit(r, attacker, defender, WeaponStrike(attacker), DefaultTuning()).Dodged {
			dodged++
		}
	}
	assert.InDelta(t, 0.75, float64(dodged)/n, 0.02)
}

func TestResolveHit_MagicalIgnoresDefence(t *testing.T) {
	attacker, defender := duelists(0, 0, 50)
	h := ResolveHit(rng.New(15), attacker, defender, Strike{Min: 20, Max: 20, Magical: true}, DefaultTuning())
	assert.Equal(t, 20, h.Damage)
}

func TestMitigate(t *testing.T) {
	tests := []struct {
		raw     int
		defence float64
		want    int
	}{
		{10, 0, 10},
		{10, 3, 7},
		{10, 3.9, 7},
		{10, 10, 1},
		{10, 400, 1},
		{0, 5, 0},
		{10, -5, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Mitigate(tt.raw, tt.defence), "raw=%d defence=%v", tt.raw, tt.defence)
	}

	for raw := 1; raw < 40; raw++ {
		for def := 0.0; def < 40; def++ {
			assert.LessOrEqual(t, Mitigate(raw, def+1), Mitigate(raw, def))
			assert.GreaterOrEqual(t, Mitigate(raw+1, def), Mitigate(raw, def))
		}
	}
}
