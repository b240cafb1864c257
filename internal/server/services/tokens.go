package services

import (
	"time"

	"github.com/dmitrijs2005/gophgram/internal/server/config"
	"github.com/dmitrijs2005/gophgram/internal/tokens"
)

// Claim is what a token asserts once opened. Encrypted tokens carry the
// password; signed tokens carry a fingerprint of the stored hash instead.
type Claim struct {
	Email       string
	Password    string
	Fingerprint string
	IssuedAt    time.Time
}

// TokenFormat issues and opens bearer tokens. Open fails with
// common.ErrMalformedToken or common.ErrTokenExpired.
type TokenFormat interface {
	Issue(email, password, passwordHash string) (string, error)
	Open(token string) (*Claim, error)
}

type encryptedFormat struct {
	codec *tokens.Codec
}

// NewEncryptedFormat issues AES-encrypted {email, pw, time} tokens.
func NewEncryptedFormat(codec *tokens.Codec) TokenFormat {
	return &encryptedFormat{codec: codec}
}

func (f *encryptedFormat) Issue(email, password, _ string) (string, error) {
	return f.codec.Encode(email, password)
}

func (f *encryptedFormat) Open(token string) (*Claim, error) {
	c, err := f.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	return &Claim{Email: c.Email, Password: c.Password, IssuedAt: c.IssuedAt}, nil
}

type signedFormat struct {
	signer *tokens.Signer
}

// NewSignedFormat issues HS256 tokens bound to the stored hash.
func NewSignedFormat(signer *tokens.Signer) TokenFormat {
	return &signedFormat{signer: signer}
}

func (f *signedFormat) Issue(email, _, passwordHash string) (string, error) {
	return f.signer.Sign(email, passwordHash)
}

func (f *signedFormat) Open(token string) (*Claim, error) {
	c, err := f.signer.Verify(token)
	if err != nil {
		return nil, err
	}
	return &Claim{Email: c.Email, Fingerprint: c.Fingerprint, IssuedAt: c.IssuedAt}, nil
}

// NewTokenFormat selects the token format named by cfg.TokenFormat.
func NewTokenFormat(cfg *config.Config) (TokenFormat, error) {
	if cfg.TokenFormat == config.TokenFormatSigned {
		signer, err := tokens.NewSigner([]byte(cfg.SecretKey), cfg.TokenMaxAge)
		if err != nil {
			return nil, err
		}
		return NewSignedFormat(signer), nil
	}

	codec, err := tokens.NewCodecFromHex(cfg.TokenKey)
	if err != nil {
		return nil, err
	}
	return NewEncryptedFormat(codec), nil
}
