package repository

import (
	"context"
	"errors"
	"time"

	"github.com/showbase/showbase/internal/domain/entity"
)

// ErrNotFound is returned by lookups that match no active row.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned by Create when the email is already taken
// by an active user.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository persists principals. Every lookup excludes deactivated
// users; the active filter is an explicit predicate in each query, not a
// hidden hook.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)

	// UpdateProfile persists non-credential fields (name, email, avatar).
	UpdateProfile(ctx context.Context, u *entity.User) error

	// UpdatePassword sets a new password hash and password_changed_at in a
	// single write.
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error

	// SetResetToken stores the hash/expiry pair on the user, overwriting any
	// previous pending token.
	SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error

	// ClearResetToken removes the pair only while it still holds tokenHash,
	// so a rollback cannot wipe a token written by a concurrent request.
	ClearResetToken(ctx context.Context, id, tokenHash string) error

	// ConsumeResetToken atomically finds the user whose pending token matches
	// tokenHash and is unexpired at now, sets the new password hash, bumps
	// password_changed_at to changedAt, and clears the pair. Returns
	// ErrNotFound when no row matches, including when a concurrent call
	// consumed the token first.
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now, changedAt time.Time) (*entity.User, error)

	// Deactivate soft-deletes the user; subsequent lookups exclude it.
	Deactivate(ctx context.Context, id string) error
}
