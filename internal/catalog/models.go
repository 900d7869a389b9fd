package catalog

import "time"

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	PriceCents  int64     `json:"price_cents"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProductInput struct {
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`
}
