package combat

import "github.com/udisondev/chatrpg/internal/game/stats"

// StatusEffect is a timed set of stat modifiers on an actor, optionally
// with a per-turn health change (negative for poison, positive for regen).
type StatusEffect struct {
	ID            string
	Name          string
	Remaining     int // turns left
	Modifiers     []stats.Modifier
	HealthPerTurn int
}

// EffectTick reports what happened to one effect during TickEffects.
type EffectTick struct {
	ID          string
	HealthDelta int
	Expired     bool
}
