package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/sdrissi/giftforge/internal/database/repository"
)

type seedProduct struct {
	name     string
	price    int64 // millimes
	category string
}

// SeedDefaults ensures a baseline catalog exists for new databases.
// It is idempotent and safe to run on every startup: product IDs are
// derived from the name and the whole batch lands in one transaction,
// so re-seeding never duplicates rows or leaves a partial catalog.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	repo := repository.NewProductRepo(db)
	existing, err := repo.List(ctx, repository.ProductFilters{})
	if err == nil && len(existing) > 0 {
		return nil
	}
	defaults := []seedProduct{
		{"Costume Classique Noir", 649000, "costume"},
		{"Costume Trois Pièces Bleu", 749000, "costume"},
		{"Veste Croisée Bordeaux", 429000, "veste"},
		{"Veste en Laine Grise", 389000, "veste"},
		{"Chemise Blanche Coton", 119000, "chemise"},
		{"Chemise Rayée Ciel", 129000, "chemise"},
		{"Cravate en Soie Grenat", 59000, "accessoire"},
		{"Pochette de Costume", 39000, "accessoire"},
		{"Ceinture en Cuir", 89000, "accessoire"},
	}
	return WithTx(db, func(tx *sql.Tx) error {
		for _, d := range defaults {
			id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("product:"+d.name)).String()
			_, err := tx.ExecContext(ctx, `
			INSERT INTO products(id, name, price_millimes, image, category, created_at, updated_at)
			VALUES(?, ?, ?, NULL, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			ON CONFLICT(id) DO NOTHING;
			`, id, d.name, d.price, d.category)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
