package data

import (
	"fmt"
	"strings"

	"github.com/udisondev/chatrpg/internal/game/combat"
	"github.com/udisondev/chatrpg/internal/game/stats"
)

// EquipSlot is a character equipment slot.
type EquipSlot string

const (
	SlotWeapon    EquipSlot = "weapon"
	SlotArmour    EquipSlot = "armour"
	SlotAccessory EquipSlot = "accessory"
	SlotRelic     EquipSlot = "relic"
	SlotPet       EquipSlot = "pet"
)

// EquipSlots lists every slot in display order.
var EquipSlots = []EquipSlot{SlotWeapon, SlotArmour, SlotAccessory, SlotRelic, SlotPet}

// ParseEquipSlot accepts a slot name. "armor" is accepted as an alias.
func ParseEquipSlot(s string) (EquipSlot, error) {
	switch strings.ToLower(s) {
	case "weapon":
		return SlotWeapon, nil
	case "armour", "armor":
		return SlotArmour, nil
	case "accessory":
		return SlotAccessory, nil
	case "relic":
		return SlotRelic, nil
	case "pet":
		return SlotPet, nil
	default:
		return "", fmt.Errorf("unknown equipment slot %q", s)
	}
}

// ItemCategory classifies catalog items.
type ItemCategory string

const (
	CategoryEquipment  ItemCategory = "equipment"
	CategoryConsumable ItemCategory = "consumable"
	CategoryMaterial   ItemCategory = "material"
)

// ItemDef is an item template.
type ItemDef struct {
	ID            string
	Name          string
	Description   string
	Category      ItemCategory
	Slot          EquipSlot // equipment only
	Level         int
	Price         int64
	Modifiers     []stats.Modifier
	AmmoPerAttack int     // ranged weapons spend ammo on each attack
	Use           *UseDef // consumables only
}

// Equippable reports whether the item occupies an equipment slot.
func (d *ItemDef) Equippable() bool { return d.Category == CategoryEquipment && d.Slot != "" }

// Usable reports whether the item can be used in combat.
func (d *ItemDef) Usable() bool { return d.Category == CategoryConsumable && d.Use != nil }

// UseDef describes what a consumable does.
type UseDef struct {
	Heal        int
	RestoreMana int
	RestoreAmmo int
	Effect      *EffectDef
}

// EffectDef is a status effect template.
type EffectDef struct {
	ID            string
	Name          string
	Turns         int
	Modifiers     []stats.Modifier
	HealthPerTurn int
}

// Instance returns a fresh status effect built from the template.
func (d *EffectDef) Instance() combat.StatusEffect {
	mods := make([]stats.Modifier, len(d.Modifiers))
	copy(mods, d.Modifiers)
	return combat.StatusEffect{
		ID:            d.ID,
		Name:          d.Name,
		Remaining:     d.Turns,
		Modifiers:     mods,
		HealthPerTurn: d.HealthPerTurn,
	}
}

// AbilityKind is what an ability does.
type AbilityKind string

const (
	AbilityDamage AbilityKind = "damage"
	AbilityHeal   AbilityKind = "heal"
	AbilityEffect AbilityKind = "effect"
)

// AbilityDef is an ability template usable by characters and enemies.
type AbilityDef struct {
	ID         string
	Name       string
	Kind       AbilityKind
	Resource   combat.Resource
	Cost       int
	Power      int
	Magical    bool
	TargetSelf bool
	Effect     *EffectDef // applied on use (to self or target)
}

// BehaviorEntry is one weighted choice in an enemy's action table.
type BehaviorEntry struct {
	Action string // "attack" or "ability:<id>"
	Weight int
}

// EnemyDef is an enemy template.
type EnemyDef struct {
	ID          string
	Name        string
	Level       int
	Stats       stats.Table // merged over stats.EnemyGrowth
	Experience  int64
	CurrencyMin int64
	CurrencyMax int64
	Loot        string // loot table id, optional
	Behavior    []BehaviorEntry
	Script      string // Lua source, optional
}

// ArchetypeDef is a character class: stat growth and starting abilities.
type ArchetypeDef struct {
	ID        string
	Name      string
	Stats     stats.Table // merged over stats.CharacterGrowth
	Abilities []string
}
