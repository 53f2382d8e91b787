package data

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/chatrpg/internal/game/combat"
	"github.com/udisondev/chatrpg/internal/game/loot"
	"github.com/udisondev/chatrpg/internal/game/stats"
)

//go:embed catalog/*.yaml
var defaultCatalog embed.FS

// LoadDefault builds the catalog shipped with the binary.
func LoadDefault() (*Catalog, error) {
	return LoadFS(defaultCatalog, "catalog")
}

// LoadDir builds a catalog from every *.yaml file in a directory.
func LoadDir(dir string) (*Catalog, error) {
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS builds a catalog from every *.yaml file in dir of fsys. Files are
// read in name order and merged before registration, so definitions may
// reference ids from other files.
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading catalog dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !(strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)

	var merged catalogFile
	for _, name := range names {
		p := path.Join(dir, name)
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading catalog %s: %w", p, err)
		}
		f, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing catalog %s: %w", p, err)
		}
		merged.Archetypes = append(merged.Archetypes, f.Archetypes...)
		merged.Items = append(merged.Items, f.Items...)
		merged.Abilities = append(merged.Abilities, f.Abilities...)
		merged.LootTables = append(merged.LootTables, f.LootTables...)
		merged.Enemies = append(merged.Enemies, f.Enemies...)
	}

	c, err := build(merged)
	if err != nil {
		return nil, err
	}
	c.logSummary()
	return c, nil
}

// Parse builds a catalog from a single YAML document.
func Parse(raw []byte) (*Catalog, error) {
	f, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return build(f)
}

func decode(raw []byte) (catalogFile, error) {
	var f catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return f, err
	}
	return f, nil
}

// build registers records in dependency order.
func build(f catalogFile) (*Catalog, error) {
	c := NewCatalog()

	for _, r := range f.Items {
		d, err := r.toDef()
		if err != nil {
			return nil, err
		}
		if err := c.AddItem(d); err != nil {
			return nil, err
		}
	}
	for _, r := range f.Abilities {
		d, err := r.toDef()
		if err != nil {
			return nil, err
		}
		if err := c.AddAbility(d); err != nil {
			return nil, err
		}
	}
	for _, r := range f.Archetypes {
		table, err := toStatTable(r.Stats)
		if err != nil {
			return nil, fmt.Errorf("archetype %q: %w", r.ID, err)
		}
		if err := c.AddArchetype(ArchetypeDef{ID: r.ID, Name: r.Name, Stats: table, Abilities: r.Abilities}); err != nil {
			return nil, err
		}
	}
	for _, r := range f.LootTables {
		if err := c.AddLootTable(r.toTable()); err != nil {
			return nil, err
		}
	}
	for _, r := range f.Enemies {
		d, err := r.toDef()
		if err != nil {
			return nil, err
		}
		if err := c.AddEnemy(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func toModifiers(recs []modifierRecord, source string) ([]stats.Modifier, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	out := make([]stats.Modifier, 0, len(recs))
	for _, r := range recs {
		s, err := stats.Parse(r.Stat)
		if err != nil {
			return nil, err
		}
		k, err := stats.ParseModKind(r.Kind)
		if err != nil {
			return nil, err
		}
		out = append(out, stats.Modifier{Stat: s, Kind: k, Value: r.Value, Source: source})
	}
	return out, nil
}

func toStatTable(recs map[string]statRecord) (stats.Table, error) {
	table := make(stats.Table, len(recs))
	for name, r := range recs {
		s, err := stats.Parse(name)
		if err != nil {
			return nil, err
		}
		table[s] = stats.Def{Base: r.Base, PerLevel: r.PerLevel}
	}
	return table, nil
}

func (r *effectRecord) toDef() (*EffectDef, error) {
	if r == nil {
		return nil, nil
	}
	if r.ID == "" {
		return nil, errors.New("effect without id")
	}
	mods, err := toModifiers(r.Modifiers, r.ID)
	if err != nil {
		return nil, fmt.Errorf("effect %q: %w", r.ID, err)
	}
	name := r.Name
	if name == "" {
		name = r.ID
	}
	return &EffectDef{ID: r.ID, Name: name, Turns: r.Turns, Modifiers: mods, HealthPerTurn: r.HealthPerTurn}, nil
}

func (r itemRecord) toDef() (ItemDef, error) {
	d := ItemDef{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Category:      ItemCategory(strings.ToLower(r.Category)),
		Level:         r.Level,
		Price:         r.Price,
		AmmoPerAttack: r.AmmoPerAttack,
	}
	switch d.Category {
	case CategoryEquipment, CategoryConsumable, CategoryMaterial:
	case "":
		d.Category = CategoryMaterial
	default:
		return d, fmt.Errorf("item %q: unknown category %q", r.ID, r.Category)
	}
	if r.Slot != "" {
		slot, err := ParseEquipSlot(r.Slot)
		if err != nil {
			return d, fmt.Errorf("item %q: %w", r.ID, err)
		}
		d.Slot = slot
	}
	mods, err := toModifiers(r.Modifiers, r.ID)
	if err != nil {
		return d, fmt.Errorf("item %q: %w", r.ID, err)
	}
	d.Modifiers = mods
	if r.Use != nil {
		effect, err := r.Use.Effect.toDef()
		if err != nil {
			return d, fmt.Errorf("item %q: %w", r.ID, err)
		}
		d.Use = &UseDef{
			Heal:        r.Use.Heal,
			RestoreMana: r.Use.RestoreMana,
			RestoreAmmo: r.Use.RestoreAmmo,
			Effect:      effect,
		}
	}
	return d, nil
}

func (r abilityRecord) toDef() (AbilityDef, error) {
	d := AbilityDef{
		ID:      r.ID,
		Name:    r.Name,
		Kind:    AbilityKind(strings.ToLower(r.Kind)),
		Cost:    r.Cost,
		Power:   r.Power,
		Magical: r.Magical,
	}
	switch d.Kind {
	case AbilityDamage, AbilityHeal, AbilityEffect:
	default:
		return d, fmt.Errorf("ability %q: unknown kind %q", r.ID, r.Kind)
	}
	res := r.Resource
	if res == "" {
		res = string(combat.Mana)
	}
	resource, err := combat.ParseResource(res)
	if err != nil {
		return d, fmt.Errorf("ability %q: %w", r.ID, err)
	}
	d.Resource = resource
	switch strings.ToLower(r.Target) {
	case "self":
		d.TargetSelf = true
	case "", "enemy":
		d.TargetSelf = d.Kind == AbilityHeal
	default:
		return d, fmt.Errorf("ability %q: unknown target %q", r.ID, r.Target)
	}
	effect, err := r.Effect.toDef()
	if err != nil {
		return d, fmt.Errorf("ability %q: %w", r.ID, err)
	}
	d.Effect = effect
	return d, nil
}

func (r lootTableRecord) toTable() loot.Table {
	t := loot.Table{ID: r.ID, Slots: make([]loot.Slot, len(r.Slots))}
	for i, s := range r.Slots {
		entries := make([]loot.Entry, len(s.Entries))
		for j, e := range s.Entries {
			entries[j] = loot.Entry{Weight: e.Weight, Item: e.Item, Min: e.Min, Max: e.Max, NoDrop: e.NoDrop}
		}
		t.Slots[i] = loot.Slot{Entries: entries}
	}
	return t
}

func (r enemyRecord) toDef() (EnemyDef, error) {
	table, err := toStatTable(r.Stats)
	if err != nil {
		return EnemyDef{}, fmt.Errorf("enemy %q: %w", r.ID, err)
	}
	behavior := make([]BehaviorEntry, len(r.Behavior))
	for i, b := range r.Behavior {
		behavior[i] = BehaviorEntry{Action: strings.TrimSpace(b.Action), Weight: b.Weight}
	}
	name := r.Name
	if name == "" {
		name = r.ID
	}
	return EnemyDef{
		ID:          r.ID,
		Name:        name,
		Level:       r.Level,
		Stats:       table,
		Experience:  r.Experience,
		CurrencyMin: r.Currency.Min,
		CurrencyMax: r.Currency.Max,
		Loot:        r.Loot,
		Behavior:    behavior,
		Script:      r.Script,
	}, nil
}
