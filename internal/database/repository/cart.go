package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// CartEntry is what the commit pipeline transfers: a product plus the
// per-transfer quantity and the pack-level personalization note.
type CartEntry struct {
	ProductID       string
	Name            string
	PriceMillimes   int64
	Quantity        int
	Personalization string
}

// CartRepo handles committed cart items.
type CartRepo struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{db: db} }

// AddToCart inserts one cart row. Each call is an independent entry;
// the pipeline decides how quantities collapse.
func (r *CartRepo) AddToCart(ctx context.Context, e CartEntry) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO cart_items(id, product_id, name, price_millimes, quantity, personalization, created_at)
	VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
	`, uuid.NewString(), e.ProductID, e.Name, e.PriceMillimes, e.Quantity, e.Personalization)
	return err
}

func (r *CartRepo) List(ctx context.Context) ([]CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, product_id, name, price_millimes, quantity, personalization, created_at FROM cart_items ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CartItem
	for rows.Next() {
		var it CartItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Name, &it.PriceMillimes, &it.Quantity, &it.Personalization, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *CartRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items`)
	return err
}
