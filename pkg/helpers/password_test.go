package helpers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showbase/showbase/pkg/apperrors"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := NewPasswordHasher(4) // min cost, tests only
	ctx := context.Background()

	digest, err := h.Hash(ctx, "Secret123")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	assert.NotContains(t, digest, "Secret123")

	ok, err := h.Verify(ctx, "Secret123", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, "Secret124", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_SaltedDigests(t *testing.T) {
	h := NewPasswordHasher(4)
	ctx := context.Background()

	d1, err := h.Hash(ctx, "Secret123")
	require.NoError(t, err)
	d2, err := h.Hash(ctx, "Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2, "digests must carry per-hash salt")
}

func TestPasswordHasher_RejectsOverlongPlaintext(t *testing.T) {
	h := NewPasswordHasher(4)

	_, err := h.Hash(context.Background(), strings.Repeat("a", MaxPasswordLength+1))
	require.Error(t, err)
	assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
}

func TestPasswordHasher_MalformedDigest(t *testing.T) {
	h := NewPasswordHasher(4)

	_, err := h.Verify(context.Background(), "whatever", "not-a-bcrypt-digest")
	assert.Error(t, err)
}

func TestNewPasswordHasher_CostFallback(t *testing.T) {
	h := NewPasswordHasher(99)
	digest, err := h.Hash(context.Background(), "Secret123")
	require.NoError(t, err)

	ok, err := h.Verify(context.Background(), "Secret123", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}
