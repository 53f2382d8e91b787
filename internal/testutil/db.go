// Package testutil holds PostgreSQL fixtures for repository tests.
package testutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/udisondev/chatrpg/internal/db"
)

// PostgresImage is the server image the fixtures run.
const PostgresImage = "postgres:16-alpine"

// SetupTestDB starts a throwaway PostgreSQL container, applies the chatrpg
// migrations and returns a pool. The container and pool are released when
// the test ends. Skipped with -short.
func SetupTestDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	if testing.Short() {
		tb.Skip("postgres fixture skipped in -short mode")
	}
	ctx := context.Background()

	// BasicWaitStrategies: дважды "ready to accept connections" + открытый порт
	ctr, err := postgres.Run(ctx, PostgresImage,
		postgres.WithDatabase("chatrpg"),
		postgres.WithUsername("chatrpg"),
		postgres.WithPassword("chatrpg"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		tb.Fatalf("starting %s: %v", PostgresImage, err)
	}
	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			tb.Logf("terminating %s: %v", PostgresImage, err)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tb.Fatalf("postgres dsn: %v", err)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		tb.Fatalf("opening pool: %v", err)
	}
	tb.Cleanup(pool.Close)

	if err := db.MigratePool(ctx, pool); err != nil {
		tb.Fatalf("migrating test db: %v", err)
	}
	return pool
}

// SeedCharacter inserts a level 1 character holding the given items and
// returns its id.
func SeedCharacter(tb testing.TB, pool *pgxpool.Pool, name, archetype string, items map[string]int) int64 {
	tb.Helper()
	ctx := context.Background()

	id, err := db.NewCharacterRepository(pool).Create(ctx, name, archetype)
	if err != nil {
		tb.Fatalf("seeding character %s: %v", name, err)
	}
	inv := db.NewInventoryRepository(pool)
	for item, qty := range items {
		if err := inv.Add(ctx, id, item, qty); err != nil {
			tb.Fatalf("seeding %dx %s for %s: %v", qty, item, name, err)
		}
	}
	return id
}
