package encounter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/game/combat"
	"github.com/udisondev/chatrpg/internal/game/loot"
	"github.com/udisondev/chatrpg/internal/game/stats"
)

// validate checks the action against the session and resolves AutoTarget.
func (e *Engine) validate(s *Session, a Action) (Action, error) {
	switch a.Kind {
	case ActionAttack:
		idx, err := s.resolveTarget(a.Target)
		if err != nil {
			return a, err
		}
		a.Target = idx
		if w := s.character.Equipped(data.SlotWeapon); w != nil && w.AmmoPerAttack > 0 &&
			s.player.Resource(combat.Ammo) < w.AmmoPerAttack {
			return a, unavailable(ReasonNoAmmo, w.ID)
		}

	case ActionAbility:
		if !s.character.KnowsAbility(a.Ability) {
			return a, unavailable(ReasonUnknownAbility, a.Ability)
		}
		def, ok := e.catalog.Ability(a.Ability)
		if !ok {
			return a, unavailable(ReasonUnknownAbility, a.Ability)
		}
		if s.player.Resource(def.Resource) < def.Cost {
			return a, unavailable(ReasonNoResource, string(def.Resource))
		}
		if !def.TargetSelf {
			idx, err := s.resolveTarget(a.Target)
			if err != nil {
				return a, err
			}
			a.Target = idx
		}

	case ActionItem:
		if s.consumables[a.Item] <= 0 {
			return a, unavailable(ReasonNoItem, a.Item)
		}
		def, ok := e.catalog.Item(a.Item)
		if !ok || !def.Usable() {
			return a, unavailable(ReasonNotUsable, a.Item)
		}

	case ActionFlee:

	default:
		return a, unavailable(ReasonUnknownAction, string(a.Kind))
	}
	return a, nil
}

func (s *Session) resolveTarget(target int) (int, error) {
	if target == AutoTarget {
		for i, c := range s.enemies {
			if c.state.Alive() {
				return i, nil
			}
		}
		return 0, unavailable(ReasonNoTarget, "")
	}
	if target < 0 || target >= len(s.enemies) {
		return 0, unavailable(ReasonUnknownTarget, strconv.Itoa(target+1))
	}
	if !s.enemies[target].state.Alive() {
		return 0, unavailable(ReasonTargetDefeated, s.enemies[target].state.Name())
	}
	return target, nil
}

// playerTurn applies a validated action.
func (e *Engine) playerTurn(s *Session, a Action) {
	switch a.Kind {
	case ActionAttack:
		if w := s.character.Equipped(data.SlotWeapon); w != nil && w.AmmoPerAttack > 0 {
			// validated above
			_ = s.player.ConsumeResource(combat.Ammo, w.AmmoPerAttack)
		}
		target := s.enemies[a.Target].state
		e.strike(s, s.player, target, combat.WeaponStrike(s.player), "")

	case ActionAbility:
		def, _ := e.catalog.Ability(a.Ability)
		var target *combat.ActorState
		if !def.TargetSelf {
			target = s.enemies[a.Target].state
		}
		_ = s.player.ConsumeResource(def.Resource, def.Cost)
		e.ability(s, s.player, target, def)

	case ActionItem:
		def, _ := e.catalog.Item(a.Item)
		e.useItem(s, def)

	case ActionFlee:
		chance := min(e.rules.FleeChance+s.player.Stat(stats.Dodge)/2, e.rules.MaxFleeChance)
		if s.rnd.Chance(chance) {
			s.log(LogEntry{Kind: EntryFled, Actor: s.player.Name()})
			s.state = StateFled
			return
		}
		s.log(LogEntry{Kind: EntryFleeFailed, Actor: s.player.Name()})
	}
}

// enemyTurn lets every standing enemy act in declaration order. Stops as
// soon as the character falls.
func (e *Engine) enemyTurn(ctx context.Context, s *Session) error {
	for _, c := range s.enemies {
		if !c.state.Alive() {
			continue
		}
		a, err := c.behavior.Choose(ctx, View{Turn: s.turn, Self: c.state, Player: s.player, Rand: s.rnd})
		if err != nil {
			return fmt.Errorf("enemy %s: %w", c.enemy.ID(), err)
		}
		if err := e.enemyAct(s, c, a); err != nil {
			return fmt.Errorf("enemy %s: %w", c.enemy.ID(), err)
		}
		if !s.player.Alive() {
			return nil
		}
	}
	return nil
}

func (e *Engine) enemyAct(s *Session, c *combatant, a Action) error {
	switch a.Kind {
	case ActionAttack:
		e.strike(s, c.state, s.player, combat.WeaponStrike(c.state), "")
		return nil
	case ActionAbility:
		def, ok := e.catalog.Ability(a.Ability)
		if !ok {
			return fmt.Errorf("unknown ability %q", a.Ability)
		}
		if err := c.state.ConsumeResource(def.Resource, def.Cost); err != nil {
			// Out of mana: fall back to a plain attack.
			e.strike(s, c.state, s.player, combat.WeaponStrike(c.state), "")
			return nil
		}
		e.ability(s, c.state, s.player, def)
		return nil
	default:
		return fmt.Errorf("action %s not available to enemies", a.Kind)
	}
}

// strike resolves one offensive hit and logs dodge, crit and damage in
// that order.
func (e *Engine) strike(s *Session, attacker, defender *combat.ActorState, st combat.Strike, detail string) combat.Hit {
	h := combat.ResolveHit(s.rnd, attacker, defender, st, e.tuning)
	if h.Dodged {
		s.log(LogEntry{Kind: EntryDodge, Actor: defender.Name(), Target: attacker.Name(), Detail: detail})
		return h
	}
	if h.Crit {
		s.log(LogEntry{Kind: EntryCrit, Actor: attacker.Name(), Target: defender.Name(), Detail: detail})
	}
	s.log(LogEntry{
		Kind:   EntryHit,
		Actor:  attacker.Name(),
		Target: defender.Name(),
		Amount: min(h.Damage, defender.Health()),
		Detail: detail,
	})
	defender.ApplyDamage(h.Damage)
	return h
}

// ability applies an ability whose cost was already paid. target is nil
// for self-targeted abilities.
func (e *Engine) ability(s *Session, caster, target *combat.ActorState, def *data.AbilityDef) {
	if def.TargetSelf || target == nil {
		target = caster
	}
	switch def.Kind {
	case data.AbilityDamage:
		h := e.strike(s, caster, target, abilityStrike(caster, def), def.ID)
		if !h.Dodged && def.Effect != nil && target.Alive() {
			e.applyEffect(s, caster, target, def.Effect)
		}
	case data.AbilityHeal:
		amount := def.Power + int(caster.Stat(stats.SpellPower))
		healed := target.ApplyHealing(amount)
		s.log(LogEntry{Kind: EntryHeal, Actor: caster.Name(), Target: target.Name(), Amount: healed, Detail: def.ID})
	case data.AbilityEffect:
		if def.Effect != nil {
			e.applyEffect(s, caster, target, def.Effect)
		}
	}
}

// abilityStrike: magical abilities scale with spell power and ignore
// defence; physical ones add power to the weapon range.
func abilityStrike(caster *combat.ActorState, def *data.AbilityDef) combat.Strike {
	if def.Magical {
		base := max(def.Power+int(caster.Stat(stats.SpellPower)), 0)
		return combat.Strike{Min: base, Max: base + base/4, Magical: true}
	}
	w := combat.WeaponStrike(caster)
	return combat.Strike{Min: w.Min + def.Power, Max: w.Max + def.Power}
}

func (e *Engine) applyEffect(s *Session, source, target *combat.ActorState, def *data.EffectDef) {
	target.AddEffect(def.Instance())
	s.log(LogEntry{Kind: EntryEffect, Actor: source.Name(), Target: target.Name(), Amount: def.Turns, Detail: def.ID})
}

func (e *Engine) useItem(s *Session, def *data.ItemDef) {
	s.consumables[def.ID]--
	if s.consumables[def.ID] <= 0 {
		delete(s.consumables, def.ID)
	}
	s.used[def.ID]++
	s.log(LogEntry{Kind: EntryItem, Actor: s.player.Name(), Detail: def.ID})

	use := def.Use
	if use.Heal > 0 {
		healed := s.player.ApplyHealing(use.Heal)
		s.log(LogEntry{Kind: EntryHeal, Actor: s.player.Name(), Target: s.player.Name(), Amount: healed, Detail: def.ID})
	}
	if use.RestoreMana > 0 {
		n := s.player.RestoreResource(combat.Mana, use.RestoreMana)
		s.log(LogEntry{Kind: EntryRestore, Actor: s.player.Name(), Amount: n, Detail: string(combat.Mana)})
	}
	if use.RestoreAmmo > 0 {
		n := s.player.RestoreResource(combat.Ammo, use.RestoreAmmo)
		s.log(LogEntry{Kind: EntryRestore, Actor: s.player.Name(), Amount: n, Detail: string(combat.Ammo)})
	}
	if use.Effect != nil {
		e.applyEffect(s, s.player, s.player, use.Effect)
	}
}

// tickEffects advances effects on every participant, alive or not.
func (e *Engine) tickEffects(s *Session) {
	for _, a := range s.participants() {
		for _, t := range a.TickEffects() {
			if t.HealthDelta != 0 {
				s.log(LogEntry{Kind: EntryEffectTick, Actor: a.Name(), Amount: t.HealthDelta, Detail: t.ID})
			}
			if t.Expired {
				s.log(LogEntry{Kind: EntryEffectExpired, Actor: a.Name(), Detail: t.ID})
			}
		}
	}
}

// checkTerminal moves an in-progress session to Defeat or Victory. Defeat
// is checked first.
func (e *Engine) checkTerminal(s *Session) {
	if s.state != StateInProgress {
		return
	}
	switch {
	case !s.player.Alive():
		s.state = StateDefeat
	case s.allEnemiesDefeated():
		s.state = StateVictory
	}
}

// buildOutcome collects rewards. Only a victory yields experience,
// currency and loot, drawn from the enemies defeated in this session.
func (e *Engine) buildOutcome(s *Session) *Outcome {
	out := &Outcome{
		SessionID:   s.id,
		CharacterID: s.CharacterID(),
		State:       s.state,
		Turns:       s.turn,
		Health:      s.player.Health(),
		Defeated:    append([]string(nil), s.defeated...),
		Consumed:    make(map[string]int, len(s.used)),
		Fault:       s.fault,
	}
	for id, n := range s.used {
		out.Consumed[id] = n
	}
	if s.state != StateVictory {
		return out
	}

	var drops []loot.Drop
	var exp, currency int64
	for _, c := range s.enemies {
		if !c.state.Defeated() {
			continue
		}
		def := c.enemy.Def()
		exp += def.Experience
		currency += int64(s.rnd.Range(int(def.CurrencyMin), int(def.CurrencyMax)))
		if def.Loot == "" {
			continue
		}
		if table, ok := e.catalog.LootTable(def.Loot); ok {
			drops = append(drops, loot.Resolve(table, s.rnd)...)
		}
	}

	out.Experience = scale(exp, e.rules.ExpMultiplier)
	out.Currency = scale(currency, e.rules.CurrencyMultiplier)
	out.Loot = loot.Merge(loot.Scale(drops, e.rules.LootAmountMultiplier))
	return out
}

func scale(v int64, multiplier float64) int64 {
	if multiplier <= 0 {
		return v
	}
	return int64(float64(v) * multiplier)
}
