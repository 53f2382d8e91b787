package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/chatrpg/internal/game/encounter"
	"github.com/udisondev/chatrpg/internal/game/loot"
)

// HistoryEntry is one finished encounter.
type HistoryEntry struct {
	SessionID  string
	State      string
	Turns      int
	Experience int64
	Currency   int64
	Loot       []loot.Drop
	Defeated   []string
	Fault      string
	FinishedAt time.Time
}

// HistoryRepository stores finished encounters.
type HistoryRepository struct {
	db *pgxpool.Pool
}

// NewHistoryRepository creates a HistoryRepository.
func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// RecordTx inserts the outcome. It reports false when the session was
// already recorded.
func (r *HistoryRepository) RecordTx(ctx context.Context, q querier, out encounter.Outcome) (bool, error) {
	drops := out.Loot
	if drops == nil {
		drops = []loot.Drop{}
	}
	defeated := out.Defeated
	if defeated == nil {
		defeated = []string{}
	}
	tag, err := q.Exec(ctx,
		`INSERT INTO encounter_history
		   (session_id, character_id, state, turns, experience, currency, loot, defeated, fault)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (session_id) DO NOTHING`,
		out.SessionID, out.CharacterID, out.State.String(), out.Turns,
		out.Experience, out.Currency, drops, defeated, out.Fault,
	)
	if err != nil {
		return false, fmt.Errorf("recording encounter %s: %w", out.SessionID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Recent returns the character's latest encounters, newest first.
func (r *HistoryRepository) Recent(ctx context.Context, characterID int64, limit int) ([]HistoryEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT session_id, state, turns, experience, currency, loot, defeated, fault, finished_at
		 FROM encounter_history
		 WHERE character_id = $1
		 ORDER BY finished_at DESC, session_id
		 LIMIT $2`,
		characterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history for character %d: %w", characterID, err)
	}
	entries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[HistoryEntry])
	if err != nil {
		return nil, fmt.Errorf("scanning history for character %d: %w", characterID, err)
	}
	return entries, nil
}
