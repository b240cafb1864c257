// Package cryptox implements password hashing for stored credentials.
//
// The storage contract is fixed: PBKDF2 with HMAC-SHA512, the configured
// iteration count and derived-key length, password and salt taken as their
// UTF-8 bytes, output encoded as lowercase hex. Changing any of these makes
// every stored hash unverifiable, so a change needs a migration that rehashes
// on next login.
package cryptox

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"runtime"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultIterations = 100_000
	DefaultKeyLength  = 64

	// SaltSize is the number of random bytes in a salt before hex encoding.
	SaltSize = 32

	// MaxKeyLength keeps the hex hash within password_hash VARCHAR(256).
	MaxKeyLength = 128

	minIterations = 1_000
	minKeyLength  = 16
)

// Hasher derives storable password hashes. It is safe for concurrent use;
// HashContext bounds the number of derivations running at once.
type Hasher struct {
	iterations int
	keyLength  int
	sem        *semaphore.Weighted
}

// NewHasher validates the KDF parameters. workers <= 0 means runtime.NumCPU().
func NewHasher(iterations, keyLength, workers int) (*Hasher, error) {
	if iterations < minIterations {
		return nil, fmt.Errorf("%w: kdf iterations %d below %d", common.ErrKeyMisconfiguration, iterations, minIterations)
	}
	if keyLength < minKeyLength {
		return nil, fmt.Errorf("%w: kdf key length %d below %d", common.ErrKeyMisconfiguration, keyLength, minKeyLength)
	}
	if keyLength > MaxKeyLength {
		return nil, fmt.Errorf("%w: kdf key length %d above %d", common.ErrKeyMisconfiguration, keyLength, MaxKeyLength)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Hasher{
		iterations: iterations,
		keyLength:  keyLength,
		sem:        semaphore.NewWeighted(int64(workers)),
	}, nil
}

// Hash returns hex(PBKDF2-HMAC-SHA512(password, salt)). It is deterministic
// and deliberately slow.
func (h *Hasher) Hash(password, salt string) string {
	dk := pbkdf2.Key([]byte(password), []byte(salt), h.iterations, h.keyLength, sha512.New)
	defer common.WipeByteArray(dk)
	return hex.EncodeToString(dk)
}

// HashContext is Hash behind the worker bound. It fails only when ctx is done
// before a slot frees up.
func (h *Hasher) HashContext(ctx context.Context, password, salt string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)
	return h.Hash(password, salt), nil
}

// Verify re-derives the hash and compares it in constant time.
func (h *Hasher) Verify(ctx context.Context, password, salt, expected string) (bool, error) {
	got, err := h.HashContext(ctx, password, salt)
	if err != nil {
		return false, err
	}
	return Equal(got, expected), nil
}

// GenerateSalt returns a fresh hex-encoded salt. Use it only at account
// creation or on an explicit password change.
func GenerateSalt() string {
	return hex.EncodeToString(common.GenerateRandByteArray(SaltSize))
}

// Equal compares two hash strings in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
