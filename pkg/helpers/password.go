package helpers

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"github.com/showbase/showbase/pkg/apperrors"
)

// MaxPasswordLength caps accepted plaintext length. Longer inputs are
// rejected up front instead of being silently truncated by bcrypt.
const MaxPasswordLength = 30

// PasswordHasher wraps bcrypt with a configurable cost. Hashing is gated by
// a weighted semaphore sized to GOMAXPROCS so a burst of signups cannot
// monopolize every P with bcrypt work.
type PasswordHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewPasswordHasher builds a hasher with the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to the library default.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{
		cost: cost,
		sem:  semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
}

// Hash derives a salted bcrypt digest from plain. The digest encodes salt
// and cost, so Verify needs no external state.
func (h *PasswordHasher) Hash(ctx context.Context, plain string) (string, error) {
	if len(plain) > MaxPasswordLength {
		return "", apperrors.Newf(apperrors.Validation, "password must be shorter than %d characters", MaxPasswordLength+1)
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches the stored digest. A mismatch is
// false, not an error; only a malformed digest produces an error.
func (h *PasswordHasher) Verify(ctx context.Context, plain, digest string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
