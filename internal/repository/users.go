package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

func (r *PostgresStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT name, email, password_hash, created_at
		FROM users WHERE id = $1
	`

	ctx, cancel := queryContext(ctx, r.cfg)
	defer cancel()

	user := &domain.User{
		ID: id,
	}

	dst := []any{&user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user, nil
}

func (r *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, name, password_hash, created_at
		FROM users WHERE email = $1
	`

	ctx, cancel := queryContext(ctx, r.cfg)
	defer cancel()

	user := &domain.User{
		Email: email,
	}

	dst := []any{&user.ID, &user.Name, &user.PasswordHash, &user.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user, nil
}

func (r *PostgresStore) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := queryContext(ctx, r.cfg)
	defer cancel()

	query := `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	id := uuid.NewString()
	now := time.Now().UTC()
	args := []any{id, user.Name, user.Email, user.PasswordHash, now}
	if _, err := r.dbpool.ExecContext(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "users_email_key" {
			return ErrDuplicateEmail
		}
		return err
	}

	user.ID = id
	user.CreatedAt = now
	return nil
}
