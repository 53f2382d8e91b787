package command

import (
	"fmt"
	"slices"
	"strings"

	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/game/encounter"
	"github.com/udisondev/chatrpg/internal/game/loot"
)

// renderEvent appends the turn log and, on a terminal event, the outcome.
func renderEvent(call *Call, cat *data.Catalog, ev encounter.Event, enemies string) {
	for _, e := range ev.Entries {
		renderEntry(call, cat, e, enemies)
	}
	if ev.Outcome != nil {
		renderOutcome(call, cat, *ev.Outcome)
	}
}

func renderEntry(call *Call, cat *data.Catalog, e encounter.LogEntry, enemies string) {
	switch e.Kind {
	case encounter.EntryStart:
		call.Printf(msgStart, e.Actor, enemies)
	case encounter.EntryDodge:
		call.Printf(msgDodge, e.Actor, e.Target)
	case encounter.EntryCrit:
		call.Printf(msgCrit, e.Actor)
	case encounter.EntryHit:
		if e.Detail != "" {
			call.Printf(msgAbilityHit, e.Actor, abilityName(cat, e.Detail), e.Target, e.Amount)
			return
		}
		call.Printf(msgHit, e.Actor, e.Target, e.Amount)
	case encounter.EntryHeal:
		call.Printf(msgHeal, e.Target, e.Amount, sourceName(cat, e.Detail))
	case encounter.EntryRestore:
		call.Printf(msgRestore, e.Actor, e.Amount, e.Detail)
	case encounter.EntryEffect:
		call.Printf(msgEffect, e.Target, humanize(e.Detail), e.Amount)
	case encounter.EntryEffectTick:
		if e.Amount < 0 {
			call.Printf(msgEffectDamage, e.Actor, -e.Amount, humanize(e.Detail))
			return
		}
		call.Printf(msgEffectHeal, e.Actor, e.Amount, humanize(e.Detail))
	case encounter.EntryEffectExpired:
		call.Printf(msgEffectExpired, humanize(e.Detail), e.Actor)
	case encounter.EntryItem:
		call.Printf(msgItem, e.Actor, itemName(cat, e.Detail))
	case encounter.EntryDefeated:
		call.Printf(msgDefeated, e.Actor)
	case encounter.EntryFleeFailed:
		call.Printf(msgFleeFailed, e.Actor)
	case encounter.EntryFled:
		call.Printf(msgFled, e.Actor)
	case encounter.EntryFault:
		call.Printf(msgFaultEntry)
	}
}

func renderOutcome(call *Call, cat *data.Catalog, out encounter.Outcome) {
	switch out.State {
	case encounter.StateVictory:
		call.Printf(msgVictory, out.Experience, out.Currency)
		if len(out.Loot) > 0 {
			call.Printf(msgLoot, dropList(cat, out.Loot))
		}
	case encounter.StateDefeat:
		call.Printf(msgDefeat)
	case encounter.StateFled:
		call.Printf(msgEscaped)
	}
}

func renderStatus(call *Call, cat *data.Catalog, st encounter.Status) {
	call.Printf(msgStatusTurn, st.Turn)
	p := st.Player
	call.Printf(msgStatusPlayer, p.Name, p.Health, p.MaxHealth, p.Mana, p.MaxMana, p.Ammo, p.MaxAmmo)
	if len(p.Effects) > 0 {
		call.Printf(msgStatusEffects, strings.Join(p.Effects, ", "))
	}
	for i, e := range st.Enemies {
		if !e.Alive {
			call.Printf(msgStatusDown, i+1, e.Name)
			continue
		}
		call.Printf(msgStatusEnemy, i+1, e.Name, e.Health, e.MaxHealth)
		if len(e.Effects) > 0 {
			call.Printf(msgStatusEffects, strings.Join(e.Effects, ", "))
		}
	}
	if len(st.Consumables) > 0 {
		drops := make([]loot.Drop, 0, len(st.Consumables))
		for id, n := range st.Consumables {
			drops = append(drops, loot.Drop{Item: id, Quantity: n})
		}
		call.Printf(msgStatusItems, dropList(cat, drops))
	}
}

// dropList renders "2x Goblin Ear, 1x Potion" sorted by item name.
func dropList(cat *data.Catalog, drops []loot.Drop) string {
	parts := make([]string, len(drops))
	for i, d := range drops {
		parts[i] = fmt.Sprintf("%dx %s", d.Quantity, itemName(cat, d.Item))
	}
	slices.SortFunc(parts, func(a, b string) int {
		return strings.Compare(a[strings.Index(a, " ")+1:], b[strings.Index(b, " ")+1:])
	})
	return strings.Join(parts, ", ")
}

// sourceName names what healed: an item or an ability.
func sourceName(cat *data.Catalog, id string) string {
	if cat != nil {
		if _, ok := cat.Item(id); ok {
			return itemName(cat, id)
		}
	}
	return abilityName(cat, id)
}
