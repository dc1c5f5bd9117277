package repository

import "time"

// Product represents a catalog row.
type Product struct {
	ID            string
	Name          string
	PriceMillimes int64
	Image         *string
	Category      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CartItem represents a committed cart row.
type CartItem struct {
	ID              string
	ProductID       string
	Name            string
	PriceMillimes   int64
	Quantity        int
	Personalization string
	CreatedAt       time.Time
}
