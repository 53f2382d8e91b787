package encounter

import "github.com/udisondev/chatrpg/internal/game/loot"

// EntryKind classifies a turn log entry.
type EntryKind string

const (
	EntryStart         EntryKind = "start"
	EntryDodge         EntryKind = "dodge"
	EntryCrit          EntryKind = "crit"
	EntryHit           EntryKind = "hit"
	EntryHeal          EntryKind = "heal"
	EntryRestore       EntryKind = "restore"
	EntryEffect        EntryKind = "effect"
	EntryEffectTick    EntryKind = "effect_tick"
	EntryEffectExpired EntryKind = "effect_expired"
	EntryItem          EntryKind = "item"
	EntryDefeated      EntryKind = "defeated"
	EntryFleeFailed    EntryKind = "flee_failed"
	EntryFled          EntryKind = "fled"
	EntryFault         EntryKind = "fault"
	EntryEnd           EntryKind = "end"
)

// LogEntry is one line of the turn log. Text rendering is left to the
// command adapter.
type LogEntry struct {
	Turn   int       `json:"turn"`
	Kind   EntryKind `json:"kind"`
	Actor  string    `json:"actor,omitempty"`
	Target string    `json:"target,omitempty"`
	Amount int       `json:"amount,omitempty"`
	Detail string    `json:"detail,omitempty"` // ability, item, effect or resource id
}

// Event is the result of creating a session or submitting an action.
type Event struct {
	SessionID string
	Turn      int
	State     State
	Entries   []LogEntry
	Outcome   *Outcome // set once the session reached a terminal state
}

// Outcome is what a finished encounter hands to persistence.
type Outcome struct {
	SessionID   string
	CharacterID int64
	State       State
	Turns       int
	Health      int // character health at the end, 0 on defeat
	Experience  int64
	Currency    int64
	Loot        []loot.Drop
	Defeated    []string       // enemy ids in defeat order
	Consumed    map[string]int // consumables used during the fight
	Fault       string
}
