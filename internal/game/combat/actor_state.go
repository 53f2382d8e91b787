package combat

import (
	"errors"
	"fmt"
	"slices"

	"github.com/udisondev/chatrpg/internal/game/stats"
)

// ErrInsufficientResource is returned when a pool holds less than requested.
var ErrInsufficientResource = errors.New("insufficient resource")

// ActorState is the mutable in-combat view of a character or enemy.
//
// Stat inputs come from the wrapped source (level, growth, equipment);
// active status effects contribute additional modifiers. Health and
// resource pools are clamped to the effective maxima.
//
// Not safe for concurrent use: the owning encounter session serializes
// every mutation.
type ActorState struct {
	name       string
	src        stats.Source
	health     int
	resources  map[Resource]int
	effects    []StatusEffect
	defeated   bool
	onDefeated func(*ActorState)
}

// NewActorState creates an actor at full health and full resources.
func NewActorState(name string, src stats.Source) *ActorState {
	a := &ActorState{
		name:      name,
		src:       src,
		resources: make(map[Resource]int, len(Resources)),
	}
	a.health = a.MaxHealth()
	for _, r := range Resources {
		a.resources[r] = a.MaxResource(r)
	}
	return a
}

// Name returns the display name.
func (a *ActorState) Name() string { return a.name }

// Base returns the wrapped stat source.
func (a *ActorState) Base() stats.Source { return a.src }

// Level implements stats.Source.
func (a *ActorState) Level() int { return a.src.Level() }

// StatDef implements stats.Source.
func (a *ActorState) StatDef(s stats.Stat) stats.Def { return a.src.StatDef(s) }

// Modifiers implements stats.Source: source modifiers followed by the
// modifiers of every active effect.
func (a *ActorState) Modifiers() []stats.Modifier {
	base := a.src.Modifiers()
	if len(a.effects) == 0 {
		return base
	}
	out := slices.Clone(base)
	for _, e := range a.effects {
		out = append(out, e.Modifiers...)
	}
	return out
}

// Stat returns the effective value of a known stat.
func (a *ActorState) Stat(s stats.Stat) float64 {
	v, _ := stats.Effective(a, s)
	return v
}

// MaxHealth returns the effective maximum health, at least 1.
func (a *ActorState) MaxHealth() int {
	return max(int(a.Stat(stats.MaxHP)), 1)
}

// MaxResource returns the effective maximum of a pool.
func (a *ActorState) MaxResource(r Resource) int {
	return int(a.Stat(r.MaxStat()))
}

// Health returns current health.
func (a *ActorState) Health() int { return a.health }

// Resource returns the current amount in a pool.
func (a *ActorState) Resource(r Resource) int { return a.resources[r] }

// Alive reports whether health is above zero.
func (a *ActorState) Alive() bool { return a.health > 0 }

// Defeated reports whether the defeat signal has fired.
func (a *ActorState) Defeated() bool { return a.defeated }

// OnDefeated registers the callback invoked once when health reaches zero.
func (a *ActorState) OnDefeated(fn func(*ActorState)) { a.onDefeated = fn }

// SetHealth sets current health clamped to [0, max]. Used when an actor
// enters combat wounded or is restored from a snapshot; it never fires
// the defeat signal.
func (a *ActorState) SetHealth(hp int) {
	a.health = min(max(hp, 0), a.MaxHealth())
	if a.health == 0 {
		a.defeated = true
	}
}

// SetResource sets a pool clamped to [0, max].
func (a *ActorState) SetResource(r Resource, n int) {
	a.resources[r] = min(max(n, 0), a.MaxResource(r))
}

// ApplyDamage lowers health by n, clamping at zero, and returns the amount
// actually removed. The first time health reaches zero the defeat callback
// fires; damage to a defeated actor is a no-op.
func (a *ActorState) ApplyDamage(n int) int {
	if n <= 0 || a.defeated {
		return 0
	}
	applied := min(n, a.health)
	a.health -= applied
	if a.health == 0 {
		a.defeated = true
		if a.onDefeated != nil {
			a.onDefeated(a)
		}
	}
	return applied
}

// ApplyHealing raises health by n, clamping at max, and returns the amount
// actually restored. No-op on a defeated actor.
func (a *ActorState) ApplyHealing(n int) int {
	if n <= 0 || !a.Alive() {
		return 0
	}
	before := a.health
	a.health = min(a.health+n, a.MaxHealth())
	return a.health - before
}

// ConsumeResource removes n from the pool or fails without change.
func (a *ActorState) ConsumeResource(r Resource, n int) error {
	if n <= 0 {
		return nil
	}
	if a.resources[r] < n {
		return fmt.Errorf("%w: %s needs %d, has %d", ErrInsufficientResource, r, n, a.resources[r])
	}
	a.resources[r] -= n
	return nil
}

// RestoreResource adds n to the pool clamped at max and returns the amount
// actually restored.
func (a *ActorState) RestoreResource(r Resource, n int) int {
	if n <= 0 {
		return 0
	}
	before := a.resources[r]
	a.resources[r] = min(before+n, a.MaxResource(r))
	return a.resources[r] - before
}

// AddEffect applies a status effect. An effect with the same id replaces
// the existing one and restarts its duration.
func (a *ActorState) AddEffect(e StatusEffect) {
	if e.Remaining <= 0 {
		return
	}
	e.Modifiers = slices.Clone(e.Modifiers)
	for i := range a.effects {
		if a.effects[i].ID == e.ID {
			a.effects[i] = e
			return
		}
	}
	a.effects = append(a.effects, e)
}

// Effects returns a copy of the active effects.
func (a *ActorState) Effects() []StatusEffect {
	return slices.Clone(a.effects)
}

// HasEffect reports whether an effect with the id is active.
func (a *ActorState) HasEffect(id string) bool {
	return slices.ContainsFunc(a.effects, func(e StatusEffect) bool { return e.ID == id })
}

// TickEffects advances every effect by one turn. Per-turn health changes
// are applied first, then durations are decremented and expired effects
// removed, after which health and pools are re-clamped to the new maxima.
func (a *ActorState) TickEffects() []EffectTick {
	if len(a.effects) == 0 {
		return nil
	}

	ticks := make([]EffectTick, len(a.effects))
	for i, e := range a.effects {
		ticks[i].ID = e.ID
		switch {
		case e.HealthPerTurn < 0:
			ticks[i].HealthDelta = -a.ApplyDamage(-e.HealthPerTurn)
		case e.HealthPerTurn > 0:
			ticks[i].HealthDelta = a.ApplyHealing(e.HealthPerTurn)
		}
	}

	kept := make([]StatusEffect, 0, len(a.effects))
	for i, e := range a.effects {
		e.Remaining--
		if e.Remaining <= 0 {
			ticks[i].Expired = true
			continue
		}
		kept = append(kept, e)
	}
	a.effects = kept

	a.clampToMax()
	return ticks
}

func (a *ActorState) clampToMax() {
	if a.health > a.MaxHealth() {
		a.health = a.MaxHealth()
	}
	for r, v := range a.resources {
		if m := a.MaxResource(r); v > m {
			a.resources[r] = m
		}
	}
}
