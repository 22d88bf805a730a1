package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superadmin").Valid())
	assert.False(t, Role("").Valid())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
	assert.Equal(t, "a@b.com", NormalizeEmail("a@b.com"))
}

func TestChangedPasswordAfter(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	u := &User{}
	assert.False(t, u.ChangedPasswordAfter(base), "never-changed password invalidates nothing")

	changed := base
	u.PasswordChangedAt = &changed
	assert.True(t, u.ChangedPasswordAfter(base.Add(-time.Minute)))
	assert.False(t, u.ChangedPasswordAfter(base.Add(time.Minute)))

	// Comparison is at second granularity: a token issued within the same
	// second as the change stays valid.
	assert.False(t, u.ChangedPasswordAfter(base.Add(500*time.Millisecond)))
	assert.False(t, u.ChangedPasswordAfter(base))
	assert.True(t, u.ChangedPasswordAfter(base.Add(-time.Second)))
}

func TestHasPendingReset(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	u := &User{}
	assert.False(t, u.HasPendingReset(now))

	hash := "digest"
	expiry := now.Add(10 * time.Minute)
	u.ResetTokenHash = &hash
	u.ResetTokenExpiry = &expiry
	assert.True(t, u.HasPendingReset(now))
	assert.True(t, u.HasPendingReset(now.Add(9*time.Minute)))
	assert.False(t, u.HasPendingReset(now.Add(10*time.Minute)), "expired pair counts as absent")
	assert.False(t, u.HasPendingReset(now.Add(11*time.Minute)))
}
