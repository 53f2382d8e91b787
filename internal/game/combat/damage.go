package combat

import (
	"math"

	"github.com/udisondev/chatrpg/internal/game/stats"
)

// Roller is the random source used by hit resolution.
type Roller interface {
	Range(lo, hi int) int
	Chance(percent float64) bool
}

// Tuning holds the global combat constants.
type Tuning struct {
	CritMultiplier float64 // damage factor on a critical hit
	MaxDodge       float64 // cap on dodge chance, percent
	MaxCrit        float64 // cap on crit chance, percent
}

// DefaultTuning returns the stock combat constants.
func DefaultTuning() Tuning {
	return Tuning{
		CritMultiplier: 1.5,
		MaxDodge:       75,
		MaxCrit:        100,
	}
}

// Strike describes the damage an attack can do before rolls.
type Strike struct {
	Min, Max int
	Magical  bool // ignores defence
}

// WeaponStrike builds a strike from the attacker's damage range.
func WeaponStrike(attacker *ActorState) Strike {
	lo := int(attacker.Stat(stats.MinDamage))
	hi := int(attacker.Stat(stats.MaxDamage))
	return Strike{Min: lo, Max: max(hi, lo)}
}

// Hit is the result of resolving one offensive action.
type Hit struct {
	Dodged bool
	Crit   bool
	Raw    int // rolled damage after crit, before mitigation
	Damage int // damage to apply
}

// ResolveHit rolls dodge, then crit, then damage, and mitigates the result
// by the defender's defence. A dodged hit never rolls crit or damage.
func ResolveHit(rnd Roller, attacker, defender *ActorState, strike Strike, t Tuning) Hit {
	dodge := min(defender.Stat(stats.Dodge), t.MaxDodge)
	if rnd.Chance(dodge) {
		return Hit{Dodged: true}
	}

	var h Hit
	crit := min(attacker.Stat(stats.Crit), t.MaxCrit)
	h.Crit = rnd.Chance(crit)

	h.Raw = rnd.Range(max(strike.Min, 0), max(strike.Max, 0))
	if h.Crit && t.CritMultiplier > 0 {
		h.Raw = int(float64(h.Raw) * t.CritMultiplier)
	}

	if strike.Magical {
		h.Damage = h.Raw
	} else {
		h.Damage = Mitigate(h.Raw, defender.Stat(stats.Defence))
	}
	return h
}

// Mitigate reduces raw damage by defence. The result is monotonic in both
// arguments, never negative, and a non-zero hit always deals at least 1.
func Mitigate(raw int, defence float64) int {
	if raw <= 0 {
		return 0
	}
	return max(raw-int(math.Floor(max(defence, 0))), 1)
}
