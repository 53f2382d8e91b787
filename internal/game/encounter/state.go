package encounter

// State is the lifecycle state of an encounter session.
type State int

const (
	StateInitializing State = iota
	StateInProgress
	StateVictory
	StateDefeat
	StateFled
)

var stateNames = [...]string{
	StateInitializing: "initializing",
	StateInProgress:   "in_progress",
	StateVictory:      "victory",
	StateDefeat:       "defeat",
	StateFled:         "fled",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateVictory || s == StateDefeat || s == StateFled
}

// ParseState is the inverse of State.String.
func ParseState(name string) (State, bool) {
	for i, n := range stateNames {
		if n == name {
			return State(i), true
		}
	}
	return 0, false
}
