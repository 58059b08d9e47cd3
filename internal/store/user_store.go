package store

import (
	"context"
	"errors"

	"github.com/jobtrack/jobtrack/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already exists")
)

// UserStore holds the account records the auth and profile handlers use.
// Emails are unique; Create and Update return ErrEmailTaken on conflict.
type UserStore interface {
	Create(ctx context.Context, user domain.User) error
	Get(ctx context.Context, id string) (domain.User, bool, error)
	GetByEmail(ctx context.Context, email string) (domain.User, bool, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	Count(ctx context.Context) (int, error)
}
