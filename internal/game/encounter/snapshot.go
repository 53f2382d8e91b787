package encounter

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/udisondev/chatrpg/internal/game/combat"
	"github.com/udisondev/chatrpg/internal/game/rng"
	"github.com/udisondev/chatrpg/internal/game/stats"
	"github.com/udisondev/chatrpg/internal/model"
)

// Snapshot captures a live session so it can be resumed later, possibly
// in another process. Restoring a snapshot and replaying the same actions
// reproduces the same terminal outcome.
//
// Behaviors are rebuilt from the catalog on restore; scripted behaviors
// must therefore keep no state between calls.
type Snapshot struct {
	ID          string          `json:"id"`
	CharacterID int64           `json:"character_id"`
	State       string          `json:"state"`
	Turn        int             `json:"turn"`
	RNG         rng.State       `json:"rng"`
	Player      ActorSnapshot   `json:"player"`
	Enemies     []EnemySnapshot `json:"enemies"`
	Consumables map[string]int  `json:"consumables,omitempty"`
	Used        map[string]int  `json:"used,omitempty"`
	Defeated    []string        `json:"defeated,omitempty"`
}

// ActorSnapshot is the mutable part of an actor.
type ActorSnapshot struct {
	Health    int                     `json:"health"`
	Resources map[combat.Resource]int `json:"resources"`
	Effects   []EffectSnapshot        `json:"effects,omitempty"`
}

// EnemySnapshot identifies an enemy and its state.
type EnemySnapshot struct {
	ID    string        `json:"id"`
	Level int           `json:"level"`
	Actor ActorSnapshot `json:"actor"`
}

// EffectSnapshot is a serialized status effect.
type EffectSnapshot struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Remaining     int                `json:"remaining"`
	HealthPerTurn int                `json:"health_per_turn,omitempty"`
	Modifiers     []ModifierSnapshot `json:"modifiers,omitempty"`
}

// ModifierSnapshot is a serialized stat modifier.
type ModifierSnapshot struct {
	Stat   string  `json:"stat"`
	Kind   string  `json:"kind"`
	Value  float64 `json:"value"`
	Source string  `json:"source,omitempty"`
}

// Encode marshals the snapshot to JSON.
func (s Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot parses a snapshot produced by Encode.
func DecodeSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("decoding snapshot: %w", err)
	}
	return s, nil
}

// Snapshot captures a live session.
func (e *Engine) Snapshot(sessionID string) (Snapshot, error) {
	s, err := e.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	if !s.busy.CompareAndSwap(false, true) {
		return Snapshot{}, fmt.Errorf("%w: session %s", ErrEncounterBusy, sessionID)
	}
	defer s.busy.Store(false)

	rs, err := s.rnd.State()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		ID:          s.id,
		CharacterID: s.CharacterID(),
		State:       s.state.String(),
		Turn:        s.turn,
		RNG:         rs,
		Player:      snapshotActor(s.player),
		Consumables: maps.Clone(s.consumables),
		Used:        maps.Clone(s.used),
		Defeated:    append([]string(nil), s.defeated...),
	}
	for _, c := range s.enemies {
		snap.Enemies = append(snap.Enemies, EnemySnapshot{
			ID:    c.enemy.ID(),
			Level: c.enemy.Level(),
			Actor: snapshotActor(c.state),
		})
	}
	return snap, nil
}

// Restore resumes a session from a snapshot. character must be the
// character the session was created for, in the same state (level,
// equipment) it had when the session started.
func (e *Engine) Restore(ctx context.Context, snap Snapshot, character *model.Character) (Event, error) {
	_, span := e.tracer.Start(ctx, "encounter.restore")
	defer span.End()

	if snap.CharacterID != character.ID() {
		return Event{}, fmt.Errorf("snapshot belongs to character %d, got %d", snap.CharacterID, character.ID())
	}
	state, ok := ParseState(snap.State)
	if !ok || state != StateInProgress {
		return Event{}, fmt.Errorf("cannot restore session in state %q", snap.State)
	}

	enemies := make([]*model.Enemy, 0, len(snap.Enemies))
	for _, es := range snap.Enemies {
		def, ok := e.catalog.Enemy(es.ID)
		if !ok {
			return Event{}, fmt.Errorf("snapshot enemy %q not in catalog", es.ID)
		}
		enemies = append(enemies, model.NewEnemyAtLevel(def, es.Level))
	}
	rnd, err := rng.Restore(snap.RNG)
	if err != nil {
		return Event{}, err
	}

	s, err := e.newSession(snap.ID, character.Clone(), enemies, rnd)
	if err != nil {
		return Event{}, err
	}
	if err := restoreActor(s.player, snap.Player); err != nil {
		s.closeBehaviors()
		return Event{}, err
	}
	for i, es := range snap.Enemies {
		if err := restoreActor(s.enemies[i].state, es.Actor); err != nil {
			s.closeBehaviors()
			return Event{}, err
		}
	}
	s.state = state
	s.turn = snap.Turn
	s.consumables = maps.Clone(snap.Consumables)
	if s.consumables == nil {
		s.consumables = make(map[string]int)
	}
	s.used = maps.Clone(snap.Used)
	if s.used == nil {
		s.used = make(map[string]int)
	}
	s.defeated = append([]string(nil), snap.Defeated...)

	if err := e.register(s); err != nil {
		s.closeBehaviors()
		return Event{}, err
	}
	e.logger.Info("encounter restored", "session", s.id, "character", s.CharacterID(), "turn", s.turn)
	return s.event(nil), nil
}

func snapshotActor(a *combat.ActorState) ActorSnapshot {
	snap := ActorSnapshot{
		Health:    a.Health(),
		Resources: make(map[combat.Resource]int, len(combat.Resources)),
	}
	for _, r := range combat.Resources {
		snap.Resources[r] = a.Resource(r)
	}
	for _, eff := range a.Effects() {
		es := EffectSnapshot{
			ID:            eff.ID,
			Name:          eff.Name,
			Remaining:     eff.Remaining,
			HealthPerTurn: eff.HealthPerTurn,
		}
		for _, m := range eff.Modifiers {
			es.Modifiers = append(es.Modifiers, ModifierSnapshot{
				Stat:   m.Stat.String(),
				Kind:   m.Kind.String(),
				Value:  m.Value,
				Source: m.Source,
			})
		}
		snap.Effects = append(snap.Effects, es)
	}
	return snap
}

// restoreActor applies effects before health and pools so the restored
// maxima include effect modifiers.
func restoreActor(a *combat.ActorState, snap ActorSnapshot) error {
	for _, es := range snap.Effects {
		eff := combat.StatusEffect{
			ID:            es.ID,
			Name:          es.Name,
			Remaining:     es.Remaining,
			HealthPerTurn: es.HealthPerTurn,
		}
		for _, ms := range es.Modifiers {
			st, err := stats.Parse(ms.Stat)
			if err != nil {
				return fmt.Errorf("restoring effect %s: %w", es.ID, err)
			}
			kind, err := stats.ParseModKind(ms.Kind)
			if err != nil {
				return fmt.Errorf("restoring effect %s: %w", es.ID, err)
			}
			eff.Modifiers = append(eff.Modifiers, stats.Modifier{Stat: st, Kind: kind, Value: ms.Value, Source: ms.Source})
		}
		a.AddEffect(eff)
	}
	a.SetHealth(snap.Health)
	for r, n := range snap.Resources {
		a.SetResource(r, n)
	}
	return nil
}
