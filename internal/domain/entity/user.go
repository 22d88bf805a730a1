package entity

import (
	"strings"
	"time"
)

// Role is a fixed authorization role. No dynamic role strings.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the authenticated principal. PasswordHash is a bcrypt digest and
// is never serialized to callers. ResetTokenHash/ResetTokenExpiry are
// present as a pair or both nil, never one without the other.
type User struct {
	ID                string
	Name              string
	Email             string
	Role              Role
	AvatarURL         string
	PasswordHash      string
	PasswordChangedAt *time.Time // nil until the first password mutation
	ResetTokenHash    *string
	ResetTokenExpiry  *time.Time
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NormalizeEmail case-folds and trims an email for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ChangedPasswordAfter reports whether the password was mutated after a
// token issued at issuedAt. Comparison is at second granularity, matching
// the token's iat resolution.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}

// HasPendingReset reports whether a reset token is pending and unexpired at
// the given instant. An expired pair is treated as absent even before it is
// physically cleared.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiry != nil && now.Before(*u.ResetTokenExpiry)
}
