package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/game/encounter"
)

// OutcomeService применяет итог боя к персонажу в одной транзакции:
// опыт и уровень, валюта, здоровье, добыча, израсходованные предметы
// и запись в истории. Реализует encounter.Persister.
type OutcomeService struct {
	pool    *pgxpool.Pool
	inv     *InventoryRepository
	history *HistoryRepository
}

// NewOutcomeService создаёт новый сервис.
func NewOutcomeService(pool *pgxpool.Pool, inv *InventoryRepository, history *HistoryRepository) *OutcomeService {
	return &OutcomeService{pool: pool, inv: inv, history: history}
}

var _ encounter.Persister = (*OutcomeService)(nil)

// ApplyOutcome persists a finished encounter. Applying the same session
// twice is a no-op.
//
// A defeated character keeps 1 health. A level-up restores full health.
func (s *OutcomeService) ApplyOutcome(ctx context.Context, out encounter.Outcome) error {
	charID := out.CharacterID

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for character %d: %w", charID, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "characterID", charID, "error", err)
		}
	}()

	var (
		level         int
		exp, currency int64
	)
	err = tx.QueryRow(ctx,
		`SELECT level, experience, currency FROM characters WHERE character_id = $1 FOR UPDATE`,
		charID,
	).Scan(&level, &exp, &currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %d", ErrCharacterNotFound, charID)
	}
	if err != nil {
		return fmt.Errorf("locking character %d: %w", charID, err)
	}

	recorded, err := s.history.RecordTx(ctx, tx, out)
	if err != nil {
		return err
	}
	if !recorded {
		slog.Warn("encounter outcome already applied", "session", out.SessionID, "characterID", charID)
		return nil
	}

	exp += max(out.Experience, 0)
	newLevel := data.LevelForExp(exp, level)
	currency = max(currency+out.Currency, 0)

	health := out.Health
	if out.State == encounter.StateDefeat {
		health = 1
	}
	if newLevel > level {
		health = 0
	}

	_, err = tx.Exec(ctx,
		`UPDATE characters
		 SET level = $2, experience = $3, currency = $4, health = $5, updated_at = now()
		 WHERE character_id = $1`,
		charID, newLevel, exp, currency, max(health, 0),
	)
	if err != nil {
		return fmt.Errorf("updating character %d: %w", charID, err)
	}

	if err := s.inv.AddTx(ctx, tx, charID, out.Loot); err != nil {
		return err
	}
	if err := s.inv.ConsumeTx(ctx, tx, charID, out.Consumed); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction for character %d: %w", charID, err)
	}

	slog.Info("encounter outcome applied",
		"session", out.SessionID,
		"characterID", charID,
		"state", out.State.String(),
		"experience", out.Experience,
		"levels", newLevel-level,
		"currency", out.Currency,
		"loot", len(out.Loot))
	return nil
}
