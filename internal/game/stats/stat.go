// Package stats computes effective combat statistics from layered sources:
// intrinsic base values, per-level growth, and additive or multiplicative
// modifiers contributed by equipment and active effects.
package stats

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStat is returned for a stat identifier outside the known set.
var ErrUnknownStat = errors.New("unknown stat")

// Stat identifies a combat statistic.
type Stat uint8

const (
	Defence Stat = iota + 1
	Dodge
	Crit
	SpellPower
	MinDamage
	MaxDamage
	MaxHP
	MaxMP
	MaxAmmo

	statCount = iota
)

var statNames = [...]string{
	Defence:    "defence",
	Dodge:      "dodge",
	Crit:       "crit",
	SpellPower: "spellPower",
	MinDamage:  "minDamage",
	MaxDamage:  "maxDamage",
	MaxHP:      "maxHp",
	MaxMP:      "maxMp",
	MaxAmmo:    "maxAmmo",
}

// All returns every known stat in declaration order.
func All() []Stat {
	out := make([]Stat, 0, statCount)
	for s := Defence; s <= MaxAmmo; s++ {
		out = append(out, s)
	}
	return out
}

// Valid reports whether s is a known stat.
func (s Stat) Valid() bool {
	return s >= Defence && s <= MaxAmmo
}

func (s Stat) String() string {
	if !s.Valid() {
		return fmt.Sprintf("stat(%d)", uint8(s))
	}
	return statNames[s]
}

// NonNegative reports whether the effective value of s is floored at zero.
// Spell power is the only stat allowed to go negative (curses).
func (s Stat) NonNegative() bool {
	return s != SpellPower
}

// Parse resolves a stat name case-insensitively.
func Parse(name string) (Stat, error) {
	for s := Defence; s <= MaxAmmo; s++ {
		if strings.EqualFold(statNames[s], name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStat, name)
}
