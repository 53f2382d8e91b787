package encounter

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/udisondev/chatrpg/internal/game/combat"
	"github.com/udisondev/chatrpg/internal/game/rng"
	"github.com/udisondev/chatrpg/internal/model"
)

type combatant struct {
	enemy    *model.Enemy
	state    *combat.ActorState
	behavior Behavior
}

// Session is one encounter between a character and its enemies.
//
// All mutation happens inside Engine.SubmitAction under the busy flag, so
// the session itself holds no mutex.
type Session struct {
	id        string
	character *model.Character // private clone
	player    *combat.ActorState
	enemies   []*combatant

	state State
	turn  int
	rnd   *rng.RNG
	fault string

	consumables map[string]int
	used        map[string]int
	defeated    []string
	entries     []LogEntry // entries of the action being resolved

	busy atomic.Bool
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// CharacterID returns the owning character id.
func (s *Session) CharacterID() int64 { return s.character.ID() }

func (s *Session) log(e LogEntry) {
	e.Turn = s.turn
	s.entries = append(s.entries, e)
}

func (s *Session) event(out *Outcome) Event {
	return Event{
		SessionID: s.id,
		Turn:      s.turn,
		State:     s.state,
		Entries:   slices.Clone(s.entries),
		Outcome:   out,
	}
}

// participants returns the character followed by enemies in declaration
// order.
func (s *Session) participants() []*combat.ActorState {
	out := make([]*combat.ActorState, 0, len(s.enemies)+1)
	out = append(out, s.player)
	for _, c := range s.enemies {
		out = append(out, c.state)
	}
	return out
}

func (s *Session) allEnemiesDefeated() bool {
	for _, c := range s.enemies {
		if c.state.Alive() {
			return false
		}
	}
	return true
}

// watch wires defeat signals into the turn log.
func (s *Session) watch() {
	s.player.OnDefeated(func(a *combat.ActorState) {
		s.log(LogEntry{Kind: EntryDefeated, Actor: a.Name()})
	})
	for _, c := range s.enemies {
		id := c.enemy.ID()
		c.state.OnDefeated(func(a *combat.ActorState) {
			s.defeated = append(s.defeated, id)
			s.log(LogEntry{Kind: EntryDefeated, Actor: a.Name()})
		})
	}
}

func (s *Session) closeBehaviors() {
	for _, c := range s.enemies {
		if cl, ok := c.behavior.(interface{ Close() error }); ok {
			_ = cl.Close()
		}
	}
}

// enemyLabels names enemies for the log, numbering duplicates:
// "Goblin #1", "Goblin #2", "Wolf".
func enemyLabels(enemies []*model.Enemy) []string {
	counts := make(map[string]int, len(enemies))
	for _, e := range enemies {
		counts[e.Name()]++
	}
	seen := make(map[string]int, len(enemies))
	labels := make([]string, len(enemies))
	for i, e := range enemies {
		name := e.Name()
		if counts[name] == 1 {
			labels[i] = name
			continue
		}
		seen[name]++
		labels[i] = fmt.Sprintf("%s #%d", name, seen[name])
	}
	return labels
}

// ActorStatus is a read-only view of a participant.
type ActorStatus struct {
	Name      string
	Health    int
	MaxHealth int
	Mana      int
	MaxMana   int
	Ammo      int
	MaxAmmo   int
	Effects   []string
	Alive     bool
}

// Status is a read-only view of a session.
type Status struct {
	SessionID   string
	State       State
	Turn        int
	Player      ActorStatus
	Enemies     []ActorStatus
	Consumables map[string]int
}

func actorStatus(a *combat.ActorState) ActorStatus {
	st := ActorStatus{
		Name:      a.Name(),
		Health:    a.Health(),
		MaxHealth: a.MaxHealth(),
		Mana:      a.Resource(combat.Mana),
		MaxMana:   a.MaxResource(combat.Mana),
		Ammo:      a.Resource(combat.Ammo),
		MaxAmmo:   a.MaxResource(combat.Ammo),
		Alive:     a.Alive(),
	}
	for _, e := range a.Effects() {
		st.Effects = append(st.Effects, e.Name)
	}
	return st
}
