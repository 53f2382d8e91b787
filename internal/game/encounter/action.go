package encounter

import (
	"fmt"
	"strings"
)

// ActionKind is the kind of a combat action.
type ActionKind string

const (
	ActionAttack  ActionKind = "attack"
	ActionAbility ActionKind = "ability"
	ActionItem    ActionKind = "item"
	ActionFlee    ActionKind = "flee"
)

// AutoTarget selects the first enemy still standing.
const AutoTarget = -1

// Action is a command submitted for the character's half of a turn.
// Target is a zero-based enemy index or AutoTarget.
type Action struct {
	Kind    ActionKind
	Target  int
	Ability string
	Item    string
}

// Attack returns a weapon attack on the target.
func Attack(target int) Action { return Action{Kind: ActionAttack, Target: target} }

// UseAbility returns an ability action on the target.
func UseAbility(id string, target int) Action {
	return Action{Kind: ActionAbility, Ability: id, Target: target}
}

// UseItem returns a consumable action.
func UseItem(id string) Action { return Action{Kind: ActionItem, Item: id, Target: AutoTarget} }

// Flee returns a flee attempt.
func Flee() Action { return Action{Kind: ActionFlee, Target: AutoTarget} }

func (a Action) String() string {
	switch a.Kind {
	case ActionAbility:
		return fmt.Sprintf("ability:%s@%d", a.Ability, a.Target)
	case ActionItem:
		return "item:" + a.Item
	case ActionAttack:
		return fmt.Sprintf("attack@%d", a.Target)
	default:
		return string(a.Kind)
	}
}

// ParseEnemyAction parses the action notation used by enemy behavior
// tables and scripts: "attack" or "ability:<id>". Enemies always target
// the character.
func ParseEnemyAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	if s == "attack" {
		return Attack(0), nil
	}
	if id, ok := strings.CutPrefix(s, "ability:"); ok && id != "" {
		return UseAbility(id, 0), nil
	}
	return Action{}, fmt.Errorf("unknown enemy action %q", s)
}
