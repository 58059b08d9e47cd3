package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jobtrack/jobtrack/internal/domain"
	"github.com/lib/pq"
)

const userSchemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL,
	location TEXT NOT NULL,
	role TEXT NOT NULL,
	avatar_key TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx ON users (lower(email));
`

const userColumns = "id, name, last_name, email, location, role, avatar_key, password_hash, created_at, updated_at"

// uniqueViolation is the Postgres error code raised when the email index
// rejects a duplicate.
const uniqueViolation = "23505"

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(ctx context.Context, db *sql.DB) (*PostgresUserStore, error) {
	store := &PostgresUserStore{db: db}
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *PostgresUserStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, userSchemaSQL); err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) Create(ctx context.Context, user domain.User) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		user.ID,
		user.Name,
		user.LastName,
		user.Email,
		user.Location,
		user.Role,
		user.AvatarKey,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) Get(ctx context.Context, id string) (domain.User, bool, error) {
	return s.getWhere(ctx, "id = $1", id)
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	return s.getWhere(ctx, "lower(email) = lower($1)", email)
}

func (s *PostgresUserStore) getWhere(ctx context.Context, where string, arg any) (domain.User, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where,
		arg,
	)
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.LastName,
		&user.Email,
		&user.Location,
		&user.Role,
		&user.AvatarKey,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, fmt.Errorf("query user: %w", err)
	}
	return user, true, nil
}

func (s *PostgresUserStore) Update(ctx context.Context, user domain.User) (domain.User, error) {
	user.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE users
		 SET name = $1, last_name = $2, email = $3, location = $4, avatar_key = $5, updated_at = $6
		 WHERE id = $7`,
		user.Name,
		user.LastName,
		user.Email,
		user.Location,
		user.AvatarKey,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *PostgresUserStore) Count(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
