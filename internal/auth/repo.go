package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"orange-brew/internal/apperr"
)

const uniqueViolation = "23505"

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) CreateUser(ctx context.Context, u *User) (*User, error) {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		u.Name, u.Email, u.PasswordHash, string(u.Role),
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperr.Conflict("Email already exists")
		}
		return nil, err
	}
	return u, nil
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanOne(r.DB.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM users WHERE email = $1`, email))
}

func (r *Repo) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return r.scanOne(r.DB.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM users WHERE id = $1`, id))
}

func (r *Repo) scanOne(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, (*string)(&u.Role), &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, (*string)(&u.Role), &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateUserRole(ctx context.Context, id int64, role Role) (*User, error) {
	u, err := r.scanOne(r.DB.QueryRow(ctx, `
		UPDATE users SET role = $2 WHERE id = $1
		RETURNING id, name, email, password_hash, role, created_at`, id, string(role)))
	if err != nil && apperr.KindOf(err) == apperr.KindNotFound {
		return nil, apperr.NotFound("User not found")
	}
	return u, err
}

func (r *Repo) DeleteUser(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}
