package tokens

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "gophgram"

// Claims is the signed token body: who, which credential generation, when.
type Claims struct {
	jwt.RegisteredClaims
	Fingerprint string `json:"cv"`
}

// SignedCredential is a verified signed token.
type SignedCredential struct {
	Email       string
	Fingerprint string
	IssuedAt    time.Time
}

// Signer issues HS256 tokens that name the account by email and bind it to
// the current password hash through Fingerprint. No secret material is
// carried, and a password change invalidates outstanding tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner requires a non-empty secret and a positive ttl.
func NewSigner(secret []byte, ttl time.Duration) (*Signer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty signing secret", common.ErrKeyMisconfiguration)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: non-positive token lifetime", common.ErrKeyMisconfiguration)
	}
	return &Signer{secret: secret, ttl: ttl, now: time.Now}, nil
}

// Fingerprint derives the credential generation marker from a stored hash.
func Fingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:16])
}

// Sign issues a token for email bound to passwordHash.
func (s *Signer) Sign(email, passwordHash string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Fingerprint: Fingerprint(passwordHash),
	})
	return token.SignedString(s.secret)
}

// Verify checks signature, algorithm and expiry. Expired tokens yield
// common.ErrTokenExpired; everything else common.ErrMalformedToken.
func (s *Signer) Verify(tokenString string) (*SignedCredential, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, malformed(err.Error())
	}
	if !token.Valid || claims.Subject == "" || claims.Fingerprint == "" || claims.IssuedAt == nil {
		return nil, malformed("incomplete claims")
	}

	return &SignedCredential{
		Email:       claims.Subject,
		Fingerprint: claims.Fingerprint,
		IssuedAt:    claims.IssuedAt.Time,
	}, nil
}
