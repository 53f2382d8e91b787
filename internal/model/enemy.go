package model

import (
	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/game/stats"
)

// Enemy is a non-player combatant built from a catalog definition.
// Implements stats.Source; enemies carry no equipment modifiers.
type Enemy struct {
	def   *data.EnemyDef
	level int
}

// NewEnemy creates an enemy at its catalog level.
func NewEnemy(def *data.EnemyDef) *Enemy {
	return &Enemy{def: def, level: max(def.Level, 1)}
}

// NewEnemyAtLevel creates an enemy at an explicit level.
func NewEnemyAtLevel(def *data.EnemyDef, level int) *Enemy {
	return &Enemy{def: def, level: max(level, 1)}
}

// Def returns the catalog definition.
func (e *Enemy) Def() *data.EnemyDef { return e.def }

// ID returns the catalog id.
func (e *Enemy) ID() string { return e.def.ID }

// Name returns the display name.
func (e *Enemy) Name() string { return e.def.Name }

// Level implements stats.Source.
func (e *Enemy) Level() int { return e.level }

// StatDef implements stats.Source.
func (e *Enemy) StatDef(s stats.Stat) stats.Def {
	if d, ok := e.def.Stats[s]; ok {
		return d
	}
	return stats.EnemyGrowth[s]
}

// Modifiers implements stats.Source.
func (e *Enemy) Modifiers() []stats.Modifier { return nil }
