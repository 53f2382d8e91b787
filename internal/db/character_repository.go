package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/model"
)

// CharacterRepository управляет персонажами в БД.
type CharacterRepository struct {
	db  *pgxpool.Pool
	inv *InventoryRepository
}

// NewCharacterRepository создаёт новый CharacterRepository.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db, inv: NewInventoryRepository(db)}
}

// Create inserts a level 1 character and returns its id.
func (r *CharacterRepository) Create(ctx context.Context, name, archetype string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO characters (name, archetype) VALUES ($1, $2) RETURNING character_id`,
		name, archetype,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating character %q: %w", name, err)
	}
	return id, nil
}

// FindByName returns the id of the character with the given name.
func (r *CharacterRepository) FindByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT character_id FROM characters WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q", ErrCharacterNotFound, name)
	}
	if err != nil {
		return 0, fmt.Errorf("querying character %q: %w", name, err)
	}
	return id, nil
}

// LoadCharacter loads a character with equipment, learned abilities and
// consumables, resolving ids against the catalog. Rows referring to ids
// the catalog no longer has are skipped with a warning.
func (r *CharacterRepository) LoadCharacter(ctx context.Context, id int64, catalog *data.Catalog) (*model.Character, error) {
	var (
		name, archetype string
		level, health   int
		exp, currency   int64
	)
	err := r.db.QueryRow(ctx,
		`SELECT name, archetype, level, experience, currency, health
		 FROM characters WHERE character_id = $1`, id,
	).Scan(&name, &archetype, &level, &exp, &currency, &health)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrCharacterNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying character %d: %w", id, err)
	}

	arch, ok := catalog.Archetype(archetype)
	if !ok {
		return nil, fmt.Errorf("character %d: %w: archetype %q", id, data.ErrUnknownReference, archetype)
	}
	c := model.NewCharacter(id, name, level, arch)
	c.SetExperience(exp)
	c.AddCurrency(currency)
	c.SetHealth(health)

	if err := r.loadEquipment(ctx, c, catalog); err != nil {
		return nil, err
	}
	if err := r.loadAbilities(ctx, c, catalog); err != nil {
		return nil, err
	}

	items, err := r.inv.List(ctx, id)
	if err != nil {
		return nil, err
	}
	for itemID, qty := range items {
		if def, ok := catalog.Item(itemID); ok && def.Usable() {
			c.SetConsumable(itemID, qty)
		}
	}
	return c, nil
}

func (r *CharacterRepository) loadEquipment(ctx context.Context, c *model.Character, catalog *data.Catalog) error {
	rows, err := r.db.Query(ctx,
		`SELECT slot, item_id FROM character_equipment WHERE character_id = $1 ORDER BY slot`, c.ID())
	if err != nil {
		return fmt.Errorf("querying equipment for character %d: %w", c.ID(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var slot, itemID string
		if err := rows.Scan(&slot, &itemID); err != nil {
			return fmt.Errorf("scanning equipment row: %w", err)
		}
		def, ok := catalog.Item(itemID)
		if !ok {
			slog.Warn("equipped item not in catalog", "character", c.ID(), "slot", slot, "item", itemID)
			continue
		}
		if _, err := c.Equip(def); err != nil {
			slog.Warn("cannot equip stored item", "character", c.ID(), "item", itemID, "error", err)
		}
	}
	return rows.Err()
}

func (r *CharacterRepository) loadAbilities(ctx context.Context, c *model.Character, catalog *data.Catalog) error {
	rows, err := r.db.Query(ctx,
		`SELECT ability_id FROM character_abilities WHERE character_id = $1 ORDER BY ability_id`, c.ID())
	if err != nil {
		return fmt.Errorf("querying abilities for character %d: %w", c.ID(), err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("scanning abilities for character %d: %w", c.ID(), err)
	}
	for _, id := range ids {
		if _, ok := catalog.Ability(id); !ok {
			slog.Warn("learned ability not in catalog", "character", c.ID(), "ability", id)
			continue
		}
		c.LearnAbility(id)
	}
	return nil
}

// Equip stores the item in its slot, replacing whatever was there.
func (r *CharacterRepository) Equip(ctx context.Context, characterID int64, item *data.ItemDef) error {
	if !item.Equippable() {
		return fmt.Errorf("%w: %s", model.ErrNotEquippable, item.ID)
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO character_equipment (character_id, slot, item_id) VALUES ($1, $2, $3)
		 ON CONFLICT (character_id, slot) DO UPDATE SET item_id = EXCLUDED.item_id`,
		characterID, string(item.Slot), item.ID,
	)
	if err != nil {
		return fmt.Errorf("equipping %s for character %d: %w", item.ID, characterID, err)
	}
	return nil
}

// LearnAbility records an ability learned outside the archetype set.
func (r *CharacterRepository) LearnAbility(ctx context.Context, characterID int64, abilityID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO character_abilities (character_id, ability_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		characterID, abilityID,
	)
	if err != nil {
		return fmt.Errorf("learning %s for character %d: %w", abilityID, characterID, err)
	}
	return nil
}
