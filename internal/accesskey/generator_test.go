package accesskey

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Format(t *testing.T) {
	k := New("usr")

	require.True(t, strings.HasPrefix(k, "usr"))
	rest := strings.TrimPrefix(k, "usr")
	assert.Len(t, rest, RandomBytes*2)

	_, err := hex.DecodeString(rest)
	assert.NoError(t, err)
}

type setOracle struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func (s *setOracle) exists(_ context.Context, candidate string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[candidate]
	return ok, nil
}

func (s *setOracle) add(k string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[k] = struct{}{}
}

func TestGenerateUnique_NoDuplicates(t *testing.T) {
	g := NewGenerator(0)
	oracle := &setOracle{keys: map[string]struct{}{}}

	const n = 2000
	for i := 0; i < n; i++ {
		k, err := g.GenerateUnique(context.Background(), "pst", oracle.exists)
		require.NoError(t, err)
		_, dup := oracle.keys[k]
		require.False(t, dup, "duplicate key %s", k)
		oracle.add(k)
	}
	assert.Len(t, oracle.keys, n)
}

func TestGenerateUnique_RetriesExactlyUntilFree(t *testing.T) {
	for _, k := range []int{0, 1, 5, 49} {
		calls := 0
		var seen []string
		exists := func(_ context.Context, candidate string) (bool, error) {
			calls++
			seen = append(seen, candidate)
			return calls <= k, nil
		}

		key, err := NewGenerator(50).GenerateUnique(context.Background(), "cmt", exists)
		require.NoError(t, err, "k=%d", k)
		assert.Equal(t, k+1, calls, "k=%d", k)
		assert.Equal(t, seen[len(seen)-1], key, "returns the first free candidate")
	}
}

func TestGenerateUnique_Exhausted(t *testing.T) {
	calls := 0
	always := func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	}

	_, err := NewGenerator(7).GenerateUnique(context.Background(), "usr", always)
	assert.True(t, errors.Is(err, common.ErrAccessKeyExhausted), "got %v", err)
	assert.Equal(t, 7, calls)
}

func TestGenerateUnique_ExistsErrorIsNotRetried(t *testing.T) {
	boom := errors.New("db down")
	calls := 0
	failing := func(context.Context, string) (bool, error) {
		calls++
		return false, boom
	}

	_, err := NewGenerator(0).GenerateUnique(context.Background(), "usr", failing)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestGenerateUnique_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator(0).GenerateUnique(ctx, "usr", func(context.Context, string) (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
