package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"orange-brew/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, name, price_cents, category, description, image, created_at`

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Category, &p.Description, &p.Image, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.PriceCents, &p.Category, &p.Description, &p.Image, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Product %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products (name, price_cents, category, description, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+productCols,
		in.Name, in.PriceCents, in.Category, in.Description, in.Image,
	).Scan(&p.ID, &p.Name, &p.PriceCents, &p.Category, &p.Description, &p.Image, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		UPDATE products SET name = $2, price_cents = $3, category = $4, description = $5, image = $6
		WHERE id = $1
		RETURNING `+productCols,
		id, in.Name, in.PriceCents, in.Category, in.Description, in.Image,
	).Scan(&p.ID, &p.Name, &p.PriceCents, &p.Category, &p.Description, &p.Image, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Product %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) DeleteProduct(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("Product %d not found", id)
	}
	return nil
}
