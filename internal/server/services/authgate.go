package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/cryptox"
	"github.com/dmitrijs2005/gophgram/internal/dbx"
	"github.com/dmitrijs2005/gophgram/internal/logging"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophgram/internal/tokens"
)

// MaxClockSkew is how far in the future a token's issue time may lie.
const MaxClockSkew = time.Minute

// Identity is the outcome of resolving a request's token. The zero value is
// the anonymous identity.
type Identity struct {
	Authenticated bool
	UserID        int64
}

// Anonymous is the identity of a request without a valid token.
var Anonymous = Identity{}

type identityKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored in ctx, or Anonymous.
func IdentityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}

// AuthGate turns a bearer token into an Identity by re-validating it against
// the stored credential on every request. It never fails: every problem is
// logged and yields Anonymous.
type AuthGate struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	hasher      *cryptox.Hasher
	format      TokenFormat
	cache       *IdentityCache
	maxAge      time.Duration
	now         func() time.Time
	log         logging.Logger
}

func NewAuthGate(db dbx.DBTX, m repomanager.RepositoryManager, hasher *cryptox.Hasher, format TokenFormat,
	cache *IdentityCache, maxAge time.Duration, log logging.Logger) *AuthGate {
	return &AuthGate{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		format:      format,
		cache:       cache,
		maxAge:      maxAge,
		now:         time.Now,
		log:         log.With("module", "authgate"),
	}
}

// Resolve decodes token and checks it against storage.
func (g *AuthGate) Resolve(ctx context.Context, token string) (id Identity) {
	if token == "" {
		return Anonymous
	}

	defer func() {
		if p := recover(); p != nil {
			g.log.Error(ctx, "token resolution panicked", "panic", fmt.Sprint(p))
			id = Anonymous
		}
	}()

	claim, err := g.format.Open(token)
	if err != nil {
		g.log.Warn(ctx, "token rejected", "error", err)
		return Anonymous
	}

	if err := g.checkAge(claim.IssuedAt); err != nil {
		g.log.Info(ctx, "token rejected", "email", claim.Email, "error", err)
		return Anonymous
	}

	cred, err := g.repomanager.Users(g.db).FindCredentialByEmail(ctx, claim.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			g.log.Info(ctx, "token for unknown account", "email", claim.Email)
		} else {
			g.log.Error(ctx, "credential lookup failed", "email", claim.Email, "error", err)
		}
		return Anonymous
	}

	ok, err := g.matches(ctx, claim, cred)
	if err != nil {
		g.log.Error(ctx, "credential check failed", "email", claim.Email, "error", err)
		return Anonymous
	}
	if !ok {
		g.log.Info(ctx, "token credential mismatch", "email", claim.Email)
		return Anonymous
	}

	return Identity{Authenticated: true, UserID: cred.ID}
}

func (g *AuthGate) checkAge(issuedAt time.Time) error {
	now := g.now()
	if issuedAt.After(now.Add(MaxClockSkew)) {
		return fmt.Errorf("%w: issued in the future", common.ErrTokenExpired)
	}
	if now.Sub(issuedAt) > g.maxAge {
		return common.ErrTokenExpired
	}
	return nil
}

func (g *AuthGate) matches(ctx context.Context, claim *Claim, cred *models.Credential) (bool, error) {
	if claim.Fingerprint != "" {
		return cryptox.Equal(claim.Fingerprint, tokens.Fingerprint(cred.PasswordHash)), nil
	}

	if id, ok := g.cache.Lookup(claim.Email, claim.Password, cred.PasswordHash); ok && id == cred.ID {
		return true, nil
	}

	ok, err := g.hasher.Verify(ctx, claim.Password, cred.Salt, cred.PasswordHash)
	if err != nil {
		return false, err
	}
	if ok {
		g.cache.Store(claim.Email, claim.Password, cred.PasswordHash, cred.ID)
	}
	return ok, nil
}
