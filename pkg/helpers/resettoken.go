package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ResetTokenTTL is how long a password-reset token stays redeemable.
const ResetTokenTTL = 10 * time.Minute

// ResetToken is a freshly generated one-time password-reset secret. Only
// Plaintext is ever sent to the user; only Hash and Expiry are persisted.
type ResetToken struct {
	Plaintext string
	Hash      string
	Expiry    time.Time
}

// NewResetToken draws 32 random bytes (256 bits), renders them as hex, and
// derives the storable sha256 digest. A fast hash is fine here: the token is
// high-entropy, unlike a password.
func NewResetToken(now time.Time, ttl time.Duration) (ResetToken, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return ResetToken{}, err
	}
	plain := hex.EncodeToString(b)
	return ResetToken{
		Plaintext: plain,
		Hash:      HashResetToken(plain),
		Expiry:    now.Add(ttl),
	}, nil
}

// HashResetToken computes the storable digest of a reset-token plaintext.
func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// ResetTokenMatches reports whether candidate hashes to storedHash.
func ResetTokenMatches(candidate, storedHash string) bool {
	return HashResetToken(candidate) == storedHash
}
