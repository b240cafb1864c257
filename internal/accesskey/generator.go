// Package accesskey mints opaque public identifiers of the form
// prefix + hex(10 random bytes) and checks them against a uniqueness oracle.
//
// The oracle is advisory: the unique constraint on the storage column is the
// authoritative guarantee, so callers must still handle a unique violation on
// insert.
package accesskey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/sethvargo/go-retry"
)

const (
	// RandomBytes is the entropy of a key, 80 bits.
	RandomBytes = 10

	DefaultMaxAttempts = 50
)

// ExistsFunc reports whether candidate is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

var errCollision = errors.New("access key collision")

// Generator is stateless apart from its attempt ceiling.
type Generator struct {
	maxAttempts uint64
}

// NewGenerator returns a Generator that gives up after maxAttempts
// candidates. maxAttempts <= 0 selects DefaultMaxAttempts.
func NewGenerator(maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{maxAttempts: uint64(maxAttempts)}
}

// MaxAttempts returns the attempt ceiling, shared by callers that retry inserts.
func (g *Generator) MaxAttempts() int { return int(g.maxAttempts) }

// New returns a fresh candidate without checking uniqueness.
func New(prefix string) string {
	s, err := common.MakeRandHexString(RandomBytes)
	if err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return prefix + s
}

// GenerateUnique draws candidates until exists reports false. An exists error
// is returned as is; it is never retried, since uniqueness cannot be known.
// Running out of attempts yields common.ErrAccessKeyExhausted.
func (g *Generator) GenerateUnique(ctx context.Context, prefix string, exists ExistsFunc) (string, error) {
	var key string

	b := retry.WithMaxRetries(g.maxAttempts-1, immediate())
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		candidate := New(prefix)

		taken, err := exists(ctx, candidate)
		if err != nil {
			return fmt.Errorf("access key existence check: %w", err)
		}
		if taken {
			return retry.RetryableError(errCollision)
		}

		key = candidate
		return nil
	})

	if errors.Is(err, errCollision) {
		return "", fmt.Errorf("%w: %d attempts with prefix %q", common.ErrAccessKeyExhausted, g.maxAttempts, prefix)
	}
	if err != nil {
		return "", err
	}

	return key, nil
}

// immediate retries without delay: a collision says nothing about load.
func immediate() retry.Backoff {
	return retry.BackoffFunc(func() (time.Duration, bool) {
		return 0, false
	})
}
