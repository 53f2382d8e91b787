package command

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/udisondev/chatrpg/internal/data"
)

// Message keys. English text lives in messages; other languages can be
// added to the same catalog builder.
const (
	msgUnknownCommand  = "unknown_command"
	msgUsage           = "usage"
	msgCommandError    = "command_error"
	msgBusy            = "busy"
	msgNoFight         = "no_fight"
	msgAlreadyFighting = "already_fighting"
	msgFault           = "fault"
	msgNoCharacter     = "no_character"
	msgUnknownEnemy    = "unknown_enemy"
	msgKnownEnemies    = "known_enemies"
	msgHelpHeader      = "help.header"
	msgHelpLine        = "help.line"
	msgHelpName        = "help.name"

	msgUnavailable       = "unavailable"
	msgUnavailablePrefix = "unavailable."

	msgStart         = "entry.start"
	msgDodge         = "entry.dodge"
	msgCrit          = "entry.crit"
	msgHit           = "entry.hit"
	msgAbilityHit    = "entry.ability_hit"
	msgHeal          = "entry.heal"
	msgRestore       = "entry.restore"
	msgEffect        = "entry.effect"
	msgEffectDamage  = "entry.effect_damage"
	msgEffectHeal    = "entry.effect_heal"
	msgEffectExpired = "entry.effect_expired"
	msgItem          = "entry.item"
	msgDefeated      = "entry.defeated"
	msgFleeFailed    = "entry.flee_failed"
	msgFled          = "entry.fled"
	msgFaultEntry    = "entry.fault"

	msgVictory = "outcome.victory"
	msgLoot    = "outcome.loot"
	msgDefeat  = "outcome.defeat"
	msgEscaped = "outcome.fled"

	msgStatusTurn    = "status.turn"
	msgStatusPlayer  = "status.player"
	msgStatusEffects = "status.effects"
	msgStatusEnemy   = "status.enemy"
	msgStatusDown    = "status.enemy_down"
	msgStatusItems   = "status.items"

	msgHistoryEmpty = "history.empty"
	msgHistoryLine  = "history.line"
)

var english = map[string]string{
	msgUnknownCommand:  "Unknown command: %s. Try !help.",
	msgUsage:           "Usage: %s %s",
	msgCommandError:    "Something went wrong, try again later.",
	msgBusy:            "Hold on, your last action is still resolving.",
	msgNoFight:         "You are not in a fight. Start one with !fight.",
	msgAlreadyFighting: "You are already in a fight.",
	msgFault:           "The fight was interrupted by an error and has ended.",
	msgNoCharacter:     "You have no character yet.",
	msgUnknownEnemy:    "There is no enemy called %s.",
	msgKnownEnemies:    "Enemies: %s",
	msgHelpHeader:      "Commands:",
	msgHelpLine:        "  %s %s",
	msgHelpName:        "  %s",

	msgUnavailable: "You can't do that right now.",

	msgUnavailablePrefix + "encounter_over":  "The fight is already over.",
	msgUnavailablePrefix + "no_target":       "There is nothing left to attack.",
	msgUnavailablePrefix + "unknown_target":  "There is no enemy #%s.",
	msgUnavailablePrefix + "target_defeated": "%s is already defeated.",
	msgUnavailablePrefix + "no_ammo":         "%s is out of ammo.",
	msgUnavailablePrefix + "unknown_ability": "You don't know %s.",
	msgUnavailablePrefix + "no_resource":     "Not enough %s.",
	msgUnavailablePrefix + "no_item":         "You have no %s.",
	msgUnavailablePrefix + "not_usable":      "%s can't be used.",
	msgUnavailablePrefix + "unknown_action":  "Unknown action %s.",

	msgStart:         "%s engages %s!",
	msgDodge:         "%s dodges %s's attack.",
	msgCrit:          "Critical hit by %s!",
	msgHit:           "%s hits %s for %d damage.",
	msgAbilityHit:    "%s uses %s on %s for %d damage.",
	msgHeal:          "%s recovers %d health (%s).",
	msgRestore:       "%s restores %d %s.",
	msgEffect:        "%s is affected by %s for %d turns.",
	msgEffectDamage:  "%s takes %d damage from %s.",
	msgEffectHeal:    "%s recovers %d health from %s.",
	msgEffectExpired: "%s on %s wears off.",
	msgItem:          "%s uses %s.",
	msgDefeated:      "%s is defeated!",
	msgFleeFailed:    "%s fails to escape!",
	msgFled:          "%s escapes!",
	msgFaultEntry:    "Something went wrong with the fight.",

	msgVictory: "Victory! +%d exp, +%d coins.",
	msgLoot:    "Loot: %s",
	msgDefeat:  "You have been defeated.",
	msgEscaped: "You got away.",

	msgStatusTurn:    "Turn %d",
	msgStatusPlayer:  "%s: %d/%d HP, %d/%d MP, %d/%d ammo",
	msgStatusEffects: "  effects: %s",
	msgStatusEnemy:   "%d. %s: %d/%d HP",
	msgStatusDown:    "%d. %s: defeated",
	msgStatusItems:   "Items: %s",

	msgHistoryEmpty: "No fights yet.",
	msgHistoryLine:  "%s in %d turns: +%d exp, +%d coins",
}

func newPrinter() *message.Printer {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range english {
		if err := b.SetString(language.English, key, msg); err != nil {
			panic(fmt.Sprintf("command: message %q: %v", key, err))
		}
	}
	return message.NewPrinter(language.English, message.Catalog(b))
}

func itemName(c *data.Catalog, id string) string {
	if c != nil {
		if d, ok := c.Item(id); ok && d.Name != "" {
			return d.Name
		}
	}
	return humanize(id)
}

func abilityName(c *data.Catalog, id string) string {
	if c != nil {
		if d, ok := c.Ability(id); ok && d.Name != "" {
			return d.Name
		}
	}
	return humanize(id)
}

// humanize turns an id like "goblin_ear" into "goblin ear".
func humanize(id string) string {
	return strings.ReplaceAll(id, "_", " ")
}
