package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showbase/showbase/pkg/apperrors"
)

func TestJWTManager_IssueAndVerify(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	issuedAt := time.Now()

	token, exp, err := m.Issue("user-1", issuedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, issuedAt.Add(time.Hour), exp, time.Second)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, issuedAt.Unix(), claims.IssuedAt.Unix())
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	// Issued two hours ago with a one hour TTL.
	token, _, err := m.Issue("user-1", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = m.Verify(token)
	require.Error(t, err)
	assert.Equal(t, apperrors.ExpiredToken, apperrors.KindOf(err))
}

func TestJWTManager_ValidThroughWindow(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	// Issued 59 minutes ago: still inside [t, t+ttl).
	token, _, err := m.Issue("user-1", time.Now().Add(-59*time.Minute))
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestJWTManager_WrongKey(t *testing.T) {
	issuer := NewJWTManager("key-one", time.Hour)
	verifier := NewJWTManager("key-two", time.Hour)

	token, _, err := issuer.Issue("user-1", time.Now())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidToken, apperrors.KindOf(err))
}

func TestJWTManager_Malformed(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := m.Verify(tok)
		require.Error(t, err)
		assert.Equal(t, apperrors.InvalidToken, apperrors.KindOf(err))
	}
}

func TestJWTManager_Tampered(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, _, err := m.Issue("user-1", time.Now())
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = m.Verify(tampered)
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidToken, apperrors.KindOf(err))
}
