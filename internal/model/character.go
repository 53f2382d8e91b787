package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/game/stats"
)

var (
	// ErrNotEquippable is returned when equipping an item without a slot.
	ErrNotEquippable = errors.New("item is not equippable")
	// ErrLevelTooLow is returned when an item requires a higher level.
	ErrLevelTooLow = errors.New("level too low")
)

// Character хранит персистентного персонажа игрока: уровень, опыт, валюта,
// экипировка и расходники. Реализует stats.Source.
type Character struct {
	mu sync.RWMutex

	id         int64
	name       string
	level      int
	experience int64
	currency   int64
	health     int // 0 means full health

	archetype   *data.ArchetypeDef
	equipment   map[data.EquipSlot]*data.ItemDef
	abilities   []string // learned on top of the archetype set
	consumables map[string]int
}

// NewCharacter creates a character. A nil archetype uses stats.CharacterGrowth
// and grants no abilities.
func NewCharacter(id int64, name string, level int, archetype *data.ArchetypeDef) *Character {
	if level < 1 {
		level = 1
	}
	return &Character{
		id:          id,
		name:        name,
		level:       level,
		archetype:   archetype,
		equipment:   make(map[data.EquipSlot]*data.ItemDef, len(data.EquipSlots)),
		consumables: make(map[string]int),
	}
}

// ID returns the character id.
func (c *Character) ID() int64 { return c.id }

// Name returns the character name.
func (c *Character) Name() string { return c.name }

// Level implements stats.Source.
func (c *Character) Level() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level
}

// Archetype returns the archetype id, or "" if none.
func (c *Character) Archetype() string {
	if c.archetype == nil {
		return ""
	}
	return c.archetype.ID
}

// StatDef implements stats.Source.
func (c *Character) StatDef(s stats.Stat) stats.Def {
	if c.archetype != nil {
		return c.archetype.Stats[s]
	}
	return stats.CharacterGrowth[s]
}

// Modifiers implements stats.Source: modifiers of every equipped item in
// slot order.
func (c *Character) Modifiers() []stats.Modifier {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []stats.Modifier
	for _, slot := range data.EquipSlots {
		if item := c.equipment[slot]; item != nil {
			out = append(out, item.Modifiers...)
		}
	}
	return out
}

// Experience returns cumulative experience.
func (c *Character) Experience() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.experience
}

// SetExperience sets cumulative experience without changing level.
// Used when loading from storage.
func (c *Character) SetExperience(exp int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.experience = max(exp, 0)
}

// AddExperience adds experience and raises the level to match the
// experience table. Returns the number of levels gained.
func (c *Character) AddExperience(exp int64) int {
	if exp <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.experience += exp
	newLevel := data.LevelForExp(c.experience, c.level)
	gained := newLevel - c.level
	c.level = newLevel
	return gained
}

// Currency returns the currency balance.
func (c *Character) Currency() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currency
}

// AddCurrency changes the balance by delta. The balance never goes negative.
func (c *Character) AddCurrency(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currency = max(c.currency+delta, 0)
}

// Health returns stored current health; 0 means full.
func (c *Character) Health() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.health
}

// SetHealth stores current health between encounters.
func (c *Character) SetHealth(hp int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.health = max(hp, 0)
}

// Equip puts the item into its slot and returns the item it replaced.
func (c *Character) Equip(item *data.ItemDef) (*data.ItemDef, error) {
	if item == nil || !item.Equippable() {
		return nil, ErrNotEquippable
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if item.Level > c.level {
		return nil, fmt.Errorf("%w: %s requires level %d", ErrLevelTooLow, item.ID, item.Level)
	}
	prev := c.equipment[item.Slot]
	c.equipment[item.Slot] = item
	return prev, nil
}

// Unequip empties a slot and returns what was in it.
func (c *Character) Unequip(slot data.EquipSlot) *data.ItemDef {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.equipment[slot]
	delete(c.equipment, slot)
	return prev
}

// Equipped returns the item in a slot, or nil.
func (c *Character) Equipped(slot data.EquipSlot) *data.ItemDef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.equipment[slot]
}

// Abilities returns archetype abilities followed by learned ones.
func (c *Character) Abilities() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []string
	if c.archetype != nil {
		out = append(out, c.archetype.Abilities...)
	}
	for _, id := range c.abilities {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// LearnAbility adds an ability outside the archetype set.
func (c *Character) LearnAbility(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !slices.Contains(c.abilities, id) {
		c.abilities = append(c.abilities, id)
	}
}

// KnowsAbility reports whether the character can use the ability.
func (c *Character) KnowsAbility(id string) bool {
	return slices.Contains(c.Abilities(), id)
}

// Consumables returns a copy of consumable counts by item id.
func (c *Character) Consumables() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.consumables)
}

// SetConsumable sets the count of a consumable; zero removes it.
func (c *Character) SetConsumable(itemID string, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if count <= 0 {
		delete(c.consumables, itemID)
		return
	}
	c.consumables[itemID] = count
}

// Clone returns an independent copy. Encounters fight with a clone so the
// stored character cannot change stats mid-fight.
func (c *Character) Clone() *Character {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Character{
		id:          c.id,
		name:        c.name,
		level:       c.level,
		experience:  c.experience,
		currency:    c.currency,
		health:      c.health,
		archetype:   c.archetype,
		equipment:   maps.Clone(c.equipment),
		abilities:   slices.Clone(c.abilities),
		consumables: maps.Clone(c.consumables),
	}
}
