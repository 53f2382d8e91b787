package combat

import (
	"fmt"
	"strings"

	"github.com/udisondev/chatrpg/internal/game/stats"
)

// Resource names a spendable pool on an actor.
type Resource string

const (
	Mana Resource = "mana"
	Ammo Resource = "ammo"
)

// Resources lists the pools every actor carries.
var Resources = []Resource{Mana, Ammo}

// MaxStat returns the stat that bounds the pool.
func (r Resource) MaxStat() stats.Stat {
	switch r {
	case Ammo:
		return stats.MaxAmmo
	default:
		return stats.MaxMP
	}
}

// ParseResource accepts "mana" or "ammo".
func ParseResource(s string) (Resource, error) {
	switch r := Resource(strings.ToLower(s)); r {
	case Mana, Ammo:
		return r, nil
	default:
		return "", fmt.Errorf("unknown resource %q", s)
	}
}
