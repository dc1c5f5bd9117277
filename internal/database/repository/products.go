package repository

import (
	"context"
	"database/sql"
	"strings"
)

// ProductFilters defines list filters. Zero values mean "no filter";
// MaxPriceMillimes of 0 means unbounded.
type ProductFilters struct {
	Category         string
	Search           string
	MinPriceMillimes int64
	MaxPriceMillimes int64
}

// ProductRepo handles catalog products.
type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Upsert(ctx context.Context, p Product) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO products(id, name, price_millimes, image, category, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 name = excluded.name,
	 price_millimes = excluded.price_millimes,
	 image = excluded.image,
	 category = excluded.category,
	 updated_at = CURRENT_TIMESTAMP;
	`, p.ID, p.Name, p.PriceMillimes, p.Image, p.Category)
	return err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, price_millimes, image, category, created_at, updated_at FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, f ProductFilters) ([]Product, error) {
	var where []string
	var args []interface{}

	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Search != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}
	if f.MinPriceMillimes > 0 {
		where = append(where, "price_millimes >= ?")
		args = append(args, f.MinPriceMillimes)
	}
	if f.MaxPriceMillimes > 0 {
		where = append(where, "price_millimes <= ?")
		args = append(args, f.MaxPriceMillimes)
	}

	query := "SELECT id, name, price_millimes, image, category, created_at, updated_at FROM products"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY category, name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceMillimes, &p.Image, &p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.PriceMillimes, &p.Image, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
