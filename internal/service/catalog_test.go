package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sdrissi/giftforge/internal/database"
	"github.com/sdrissi/giftforge/internal/database/repository"
)

func newCatalogTestRepo(t *testing.T) *repository.ProductRepo {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrationsWithDB(db, migrations))

	return repository.NewProductRepo(db)
}

func seedCatalog(t *testing.T, repo *repository.ProductRepo) {
	t.Helper()
	ctx := context.Background()
	products := []repository.Product{
		{ID: "p1", Name: "Costume Classique Noir", PriceMillimes: 649000, Category: "costume"},
		{ID: "p2", Name: "Veste en Laine Grise", PriceMillimes: 389000, Category: "veste"},
		{ID: "p3", Name: "Chemise Blanche Coton", PriceMillimes: 119000, Category: "chemise"},
		{ID: "p4", Name: "Cravate en Soie Grenat", PriceMillimes: 59000, Category: "accessoire"},
	}
	for _, p := range products {
		require.NoError(t, repo.Upsert(ctx, p))
	}
}

func TestCatalogFilter(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	repo := newCatalogTestRepo(t)
	seedCatalog(t, repo)
	svc := &CatalogService{Products: repo}

	all, err := svc.Filter(ctx, CatalogFilters{})
	require.NoError(t, err)
	require.Len(t, all, 4)

	byCategory, err := svc.Filter(ctx, CatalogFilters{Category: "veste"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	require.Equal(t, "p2", byCategory[0].ID)

	tous, err := svc.Filter(ctx, CatalogFilters{Category: CategoryAll})
	require.NoError(t, err)
	require.Len(t, tous, 4)

	byPrice, err := svc.Filter(ctx, CatalogFilters{MinPriceMillimes: 100000, MaxPriceMillimes: 400000})
	require.NoError(t, err)
	require.Len(t, byPrice, 2)

	substr, err := svc.Filter(ctx, CatalogFilters{Search: "chemise"})
	require.NoError(t, err)
	require.Len(t, substr, 1)
	require.Equal(t, "p3", substr[0].ID)
}

func TestCatalogFuzzySearch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newCatalogTestRepo(t)
	seedCatalog(t, repo)
	svc := &CatalogService{Products: repo}

	// one-typo query still hits "costume"
	got, err := svc.Filter(ctx, CatalogFilters{Search: "costme"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "p1", got[0].ID)

	// nonsense stays empty
	none, err := svc.Filter(ctx, CatalogFilters{Search: "zzzzzzzz"})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestCatalogSnapshotIsFetchOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newCatalogTestRepo(t)
	seedCatalog(t, repo)
	svc := &CatalogService{Products: repo}

	first, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, first, 4)

	// a write behind the cache is invisible until Refresh
	require.NoError(t, repo.Upsert(ctx, repository.Product{ID: "p5", Name: "Pochette", PriceMillimes: 39000, Category: "accessoire"}))

	stale, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, stale, 4)

	require.NoError(t, svc.Refresh(ctx))
	fresh, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 5)
}

func TestCatalogAllReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newCatalogTestRepo(t)
	seedCatalog(t, repo)
	svc := &CatalogService{Products: repo}

	first, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, first, 4)

	// scribbling on the returned slice must not reach the cache
	first[0].Name = "vandalized"

	again, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, again, 4)
	require.Equal(t, "Costume Classique Noir", again[0].Name)
}
