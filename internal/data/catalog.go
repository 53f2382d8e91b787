package data

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/udisondev/chatrpg/internal/game/loot"
	"github.com/udisondev/chatrpg/internal/game/stats"
)

var (
	// ErrDuplicateID is returned when a definition id is registered twice.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrUnknownReference is returned when a definition refers to a missing id.
	ErrUnknownReference = errors.New("unknown reference")
)

// Catalog is the registry of item, ability, enemy, archetype and loot
// definitions. It is built once at startup and read-only afterwards, so
// concurrent readers need no locking.
type Catalog struct {
	items      map[string]*ItemDef
	abilities  map[string]*AbilityDef
	enemies    map[string]*EnemyDef
	archetypes map[string]*ArchetypeDef
	lootTables map[string]loot.Table
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		items:      make(map[string]*ItemDef),
		abilities:  make(map[string]*AbilityDef),
		enemies:    make(map[string]*EnemyDef),
		archetypes: make(map[string]*ArchetypeDef),
		lootTables: make(map[string]loot.Table),
	}
}

// Item returns an item definition by id.
func (c *Catalog) Item(id string) (*ItemDef, bool) {
	d, ok := c.items[id]
	return d, ok
}

// Ability returns an ability definition by id.
func (c *Catalog) Ability(id string) (*AbilityDef, bool) {
	d, ok := c.abilities[id]
	return d, ok
}

// Enemy returns an enemy definition by id.
func (c *Catalog) Enemy(id string) (*EnemyDef, bool) {
	d, ok := c.enemies[id]
	return d, ok
}

// Archetype returns an archetype definition by id.
func (c *Catalog) Archetype(id string) (*ArchetypeDef, bool) {
	d, ok := c.archetypes[id]
	return d, ok
}

// LootTable returns a validated loot table by id.
func (c *Catalog) LootTable(id string) (loot.Table, bool) {
	t, ok := c.lootTables[id]
	return t, ok
}

// EnemyIDs returns every enemy id, sorted.
func (c *Catalog) EnemyIDs() []string { return slices.Sorted(maps.Keys(c.enemies)) }

// ArchetypeIDs returns every archetype id, sorted.
func (c *Catalog) ArchetypeIDs() []string { return slices.Sorted(maps.Keys(c.archetypes)) }

// LootTableIDs returns every loot table id, sorted.
func (c *Catalog) LootTableIDs() []string { return slices.Sorted(maps.Keys(c.lootTables)) }

// AddItem registers an item.
func (c *Catalog) AddItem(d ItemDef) error {
	if d.ID == "" {
		return errors.New("item without id")
	}
	if _, ok := c.items[d.ID]; ok {
		return fmt.Errorf("%w: item %q", ErrDuplicateID, d.ID)
	}
	if d.Category == CategoryEquipment && d.Slot == "" {
		return fmt.Errorf("item %q: equipment without slot", d.ID)
	}
	c.items[d.ID] = &d
	return nil
}

// AddAbility registers an ability.
func (c *Catalog) AddAbility(d AbilityDef) error {
	if d.ID == "" {
		return errors.New("ability without id")
	}
	if _, ok := c.abilities[d.ID]; ok {
		return fmt.Errorf("%w: ability %q", ErrDuplicateID, d.ID)
	}
	if d.Kind == AbilityEffect && d.Effect == nil {
		return fmt.Errorf("ability %q: effect ability without effect", d.ID)
	}
	c.abilities[d.ID] = &d
	return nil
}

// AddLootTable validates the table against registered items and registers
// it. Invalid entries fail with loot.ErrInvalidLootEntry.
func (c *Catalog) AddLootTable(t loot.Table) error {
	if t.ID == "" {
		return errors.New("loot table without id")
	}
	if _, ok := c.lootTables[t.ID]; ok {
		return fmt.Errorf("%w: loot table %q", ErrDuplicateID, t.ID)
	}
	if err := loot.Validate(t, func(id string) bool {
		_, ok := c.items[id]
		return ok
	}); err != nil {
		return err
	}
	c.lootTables[t.ID] = t
	return nil
}

// AddEnemy registers an enemy after checking its loot table and behavior
// references.
func (c *Catalog) AddEnemy(d EnemyDef) error {
	if d.ID == "" {
		return errors.New("enemy without id")
	}
	if _, ok := c.enemies[d.ID]; ok {
		return fmt.Errorf("%w: enemy %q", ErrDuplicateID, d.ID)
	}
	if d.Loot != "" {
		if _, ok := c.lootTables[d.Loot]; !ok {
			return fmt.Errorf("%w: enemy %q loot table %q", ErrUnknownReference, d.ID, d.Loot)
		}
	}
	for _, b := range d.Behavior {
		if b.Weight < 0 {
			return fmt.Errorf("enemy %q: negative behavior weight for %q", d.ID, b.Action)
		}
		if id, ok := strings.CutPrefix(b.Action, "ability:"); ok {
			if _, found := c.abilities[id]; !found {
				return fmt.Errorf("%w: enemy %q ability %q", ErrUnknownReference, d.ID, id)
			}
			continue
		}
		if b.Action != "attack" {
			return fmt.Errorf("enemy %q: unknown behavior action %q", d.ID, b.Action)
		}
	}
	if d.CurrencyMax < d.CurrencyMin {
		return fmt.Errorf("enemy %q: currency max %d below min %d", d.ID, d.CurrencyMax, d.CurrencyMin)
	}
	if d.Level < 1 {
		d.Level = 1
	}
	d.Stats = stats.EnemyGrowth.With(d.Stats)
	c.enemies[d.ID] = &d
	return nil
}

// AddArchetype registers a character archetype.
func (c *Catalog) AddArchetype(d ArchetypeDef) error {
	if d.ID == "" {
		return errors.New("archetype without id")
	}
	if _, ok := c.archetypes[d.ID]; ok {
		return fmt.Errorf("%w: archetype %q", ErrDuplicateID, d.ID)
	}
	for _, id := range d.Abilities {
		if _, ok := c.abilities[id]; !ok {
			return fmt.Errorf("%w: archetype %q ability %q", ErrUnknownReference, d.ID, id)
		}
	}
	d.Stats = stats.CharacterGrowth.With(d.Stats)
	c.archetypes[d.ID] = &d
	return nil
}

func (c *Catalog) logSummary() {
	slog.Info("catalog loaded",
		"items", len(c.items),
		"abilities", len(c.abilities),
		"loot_tables", len(c.lootTables),
		"enemies", len(c.enemies),
		"archetypes", len(c.archetypes))
}
