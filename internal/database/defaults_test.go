package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdrissi/giftforge/internal/database/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrations, err := filepath.Abs("migrations")
	require.NoError(t, err)
	require.NoError(t, RunMigrationsWithDB(db, migrations))
	return db
}

func TestSeedDefaultsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, SeedDefaults(ctx, db))
	repo := repository.NewProductRepo(db)
	first, err := repo.List(ctx, repository.ProductFilters{})
	require.NoError(t, err)
	require.Len(t, first, 9)

	// second run is a no-op, not a duplicate batch
	require.NoError(t, SeedDefaults(ctx, db))
	second, err := repo.List(ctx, repository.ProductFilters{})
	require.NoError(t, err)
	require.Len(t, second, 9)
}

func TestSeedDefaultsDeterministicIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a := newTestDB(t)
	b := newTestDB(t)
	require.NoError(t, SeedDefaults(ctx, a))
	require.NoError(t, SeedDefaults(ctx, b))

	listA, err := repository.NewProductRepo(a).List(ctx, repository.ProductFilters{})
	require.NoError(t, err)
	listB, err := repository.NewProductRepo(b).List(ctx, repository.ProductFilters{})
	require.NoError(t, err)

	require.Len(t, listB, len(listA))
	for i := range listA {
		require.Equal(t, listA[i].ID, listB[i].ID, "seed IDs derive from names, not randomness")
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	boom := errors.New("boom")
	err := WithTx(db, func(tx *sql.Tx) error {
		_, execErr := tx.ExecContext(ctx, `
		INSERT INTO products(id, name, price_millimes, image, category, created_at, updated_at)
		VALUES('x1', 'Orphelin', 1000, NULL, 'accessoire', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
		`)
		require.NoError(t, execErr)
		return boom
	})
	require.ErrorIs(t, err, boom)

	rows, err := repository.NewProductRepo(db).List(ctx, repository.ProductFilters{})
	require.NoError(t, err)
	require.Empty(t, rows, "failed transaction leaves nothing behind")
}
