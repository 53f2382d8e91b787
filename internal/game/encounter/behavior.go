package encounter

import (
	"context"

	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/game/combat"
	"github.com/udisondev/chatrpg/internal/game/rng"
	"github.com/udisondev/chatrpg/internal/model"
)

// View is what an enemy behavior sees when choosing its action.
type View struct {
	Turn   int
	Self   *combat.ActorState
	Player *combat.ActorState
	Rand   *rng.RNG // session random source; draws are part of the replayable stream
}

// Behavior chooses an enemy's action for the current turn. Any error is
// an engine fault and ends the encounter in defeat.
type Behavior interface {
	Choose(ctx context.Context, v View) (Action, error)
}

// BehaviorSource builds the behavior for an enemy entering a session.
type BehaviorSource interface {
	BehaviorFor(e *model.Enemy) (Behavior, error)
}

// CatalogBehaviors builds behaviors from enemy definitions: a Lua script
// when the definition carries one, otherwise its weighted action table.
type CatalogBehaviors struct{}

// BehaviorFor implements BehaviorSource.
func (CatalogBehaviors) BehaviorFor(e *model.Enemy) (Behavior, error) {
	def := e.Def()
	if def.Script != "" {
		return NewLuaBehavior(def.ID, def.Script)
	}
	return NewWeightedBehavior(def.Behavior)
}

// WeightedBehavior picks one action from a weighted table each turn.
// An empty or zero-weight table always attacks.
type WeightedBehavior struct {
	actions []Action
	weights []int
	total   int
}

// NewWeightedBehavior parses a behavior table.
func NewWeightedBehavior(entries []data.BehaviorEntry) (*WeightedBehavior, error) {
	b := &WeightedBehavior{}
	for _, e := range entries {
		a, err := ParseEnemyAction(e.Action)
		if err != nil {
			return nil, err
		}
		b.actions = append(b.actions, a)
		b.weights = append(b.weights, max(e.Weight, 0))
		b.total += max(e.Weight, 0)
	}
	return b, nil
}

// Choose implements Behavior.
func (b *WeightedBehavior) Choose(_ context.Context, v View) (Action, error) {
	switch {
	case b.total == 0:
		return Attack(0), nil
	case len(b.actions) == 1:
		return b.actions[0], nil
	}

	roll := v.Rand.IntN(b.total)
	cumulative := 0
	for i, w := range b.weights {
		cumulative += w
		if roll < cumulative {
			return b.actions[i], nil
		}
	}
	return b.actions[len(b.actions)-1], nil
}
