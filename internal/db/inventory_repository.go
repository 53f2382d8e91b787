package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/chatrpg/internal/game/loot"
)

// InventoryRepository stores item stacks per character.
type InventoryRepository struct {
	db *pgxpool.Pool
}

// NewInventoryRepository creates an InventoryRepository.
func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// List returns item quantities by item id.
func (r *InventoryRepository) List(ctx context.Context, characterID int64) (map[string]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT item_id, quantity FROM inventory WHERE character_id = $1`, characterID)
	if err != nil {
		return nil, fmt.Errorf("querying inventory for character %d: %w", characterID, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var id string
		var qty int
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		out[id] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inventory for character %d: %w", characterID, err)
	}
	return out, nil
}

// Add adds quantity of an item outside any transaction.
func (r *InventoryRepository) Add(ctx context.Context, characterID int64, itemID string, qty int) error {
	return r.AddTx(ctx, r.db, characterID, []loot.Drop{{Item: itemID, Quantity: qty}})
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// AddTx adds drops to the inventory, stacking onto existing rows.
func (r *InventoryRepository) AddTx(ctx context.Context, q querier, characterID int64, drops []loot.Drop) error {
	if len(drops) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, d := range drops {
		if d.Quantity <= 0 {
			continue
		}
		batch.Queue(
			`INSERT INTO inventory (character_id, item_id, quantity) VALUES ($1, $2, $3)
			 ON CONFLICT (character_id, item_id) DO UPDATE SET quantity = inventory.quantity + EXCLUDED.quantity`,
			characterID, d.Item, d.Quantity,
		)
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("adding items for character %d: %w", characterID, err)
	}
	return nil
}

// ConsumeTx removes used quantities. Stacks that reach zero are deleted;
// a stack never goes below zero.
func (r *InventoryRepository) ConsumeTx(ctx context.Context, q querier, characterID int64, used map[string]int) error {
	if len(used) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for id, n := range used {
		if n <= 0 {
			continue
		}
		batch.Queue(
			`DELETE FROM inventory WHERE character_id = $1 AND item_id = $2 AND quantity <= $3`,
			characterID, id, n,
		)
		batch.Queue(
			`UPDATE inventory SET quantity = quantity - $3
			 WHERE character_id = $1 AND item_id = $2 AND quantity > $3`,
			characterID, id, n,
		)
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("consuming items for character %d: %w", characterID, err)
	}
	return nil
}
