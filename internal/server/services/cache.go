package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/dmitrijs2005/gophgram/internal/common"
)

const (
	idLen    = 8
	entryLen = idLen + sha256.Size
)

// IdentityCache remembers which (email, password, stored hash) triples were
// verified recently, so that repeated requests with the same token skip the
// key derivation. Entries hold only an HMAC under a per-process key, never the
// password. A nil *IdentityCache is valid and never hits.
type IdentityCache struct {
	cache *bigcache.BigCache
	key   []byte
}

// NewIdentityCache returns nil when ttl is zero.
func NewIdentityCache(ctx context.Context, ttl time.Duration) (*IdentityCache, error) {
	if ttl <= 0 {
		return nil, nil
	}

	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 64
	cfg.MaxEntriesInWindow = 10_000
	cfg.MaxEntrySize = entryLen
	cfg.CleanWindow = max(ttl/2, time.Second)
	cfg.Verbose = false

	c, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &IdentityCache{cache: c, key: common.GenerateRandByteArray(32)}, nil
}

// Lookup returns the cached user id if the triple was stored and has not
// expired.
func (c *IdentityCache) Lookup(email, password, storedHash string) (int64, bool) {
	if c == nil {
		return 0, false
	}

	entry, resp, err := c.cache.GetWithInfo(email)
	if err != nil || resp.EntryStatus == bigcache.Expired || len(entry) != entryLen {
		return 0, false
	}

	if !hmac.Equal(entry[idLen:], c.mac(email, password, storedHash)) {
		return 0, false
	}

	return int64(binary.BigEndian.Uint64(entry[:idLen])), true
}

func (c *IdentityCache) Store(email, password, storedHash string, id int64) {
	if c == nil {
		return
	}

	entry := make([]byte, 0, entryLen)
	entry = binary.BigEndian.AppendUint64(entry, uint64(id))
	entry = append(entry, c.mac(email, password, storedHash)...)

	_ = c.cache.Set(email, entry)
}

// Invalidate drops the entry for email, if any.
func (c *IdentityCache) Invalidate(email string) {
	if c == nil {
		return
	}
	// ErrEntryNotFound is the only expected failure
	_ = c.cache.Delete(email)
}

func (c *IdentityCache) Close() error {
	if c == nil {
		return nil
	}
	return c.cache.Close()
}

func (c *IdentityCache) mac(parts ...string) []byte {
	m := hmac.New(sha256.New, c.key)
	for _, p := range parts {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(p)))
		m.Write(n[:])
		m.Write([]byte(p))
	}
	return m.Sum(nil)
}
