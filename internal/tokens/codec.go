// Package tokens turns credentials into opaque bearer tokens and back.
//
// The default format is the encrypted credential token: the JSON payload
// {"email","pw","time"} encrypted with AES-256-CBC under a process-wide key,
// a fresh 16-byte IV per token, PKCS#7 padding, and the token string
// hex(iv) || hex(ciphertext). Possession of a token is authentication, and the
// payload holds the plaintext password, so token leakage equals password
// leakage. Signer offers a signed alternative without the password.
package tokens

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophgram/internal/common"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// ivHexLen is the number of leading hex characters holding the IV.
const ivHexLen = aes.BlockSize * 2

// Credential is a decoded token payload.
type Credential struct {
	Email    string
	Password string
	IssuedAt time.Time
}

type payload struct {
	Email    *string `json:"email"`
	Password *string `json:"pw"`
	Time     *int64  `json:"time"`
}

// Codec encrypts and decrypts credential tokens. It holds no mutable state
// and is safe for concurrent use.
type Codec struct {
	block cipher.Block
	now   func() time.Time
}

// NewCodec builds a Codec from a raw 32-byte key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: token key must be %d bytes, got %d", common.ErrKeyMisconfiguration, KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyMisconfiguration, err)
	}
	return &Codec{block: block, now: time.Now}, nil
}

// NewCodecFromHex builds a Codec from a hex-encoded key, the configuration form.
func NewCodecFromHex(hexKey string) (*Codec, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: token key is not hex", common.ErrKeyMisconfiguration)
	}
	defer common.WipeByteArray(key)
	return NewCodec(key)
}

// Encode serializes the credential with the current time and encrypts it.
// Invalid UTF-8 would not survive the JSON payload and is refused with
// common.ErrInvalidArgument.
func (c *Codec) Encode(email, password string) (string, error) {
	if !utf8.ValidString(email) || !utf8.ValidString(password) {
		return "", fmt.Errorf("%w: credential is not valid utf-8", common.ErrInvalidArgument)
	}
	ms := c.now().UnixMilli()
	plaintext, err := json.Marshal(payload{Email: &email, Password: &password, Time: &ms})
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(plaintext)

	iv := common.GenerateRandByteArray(aes.BlockSize)

	padded := pad(plaintext, aes.BlockSize)
	defer common.WipeByteArray(padded)

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + hex.EncodeToString(ciphertext), nil
}

// Decode reverses Encode. Every failure is reported as common.ErrMalformedToken.
// Decode does not judge the token's age; see Credential.IssuedAt.
func (c *Codec) Decode(token string) (*Credential, error) {
	if len(token) <= ivHexLen {
		return nil, malformed("too short")
	}

	iv, err := hex.DecodeString(token[:ivHexLen])
	if err != nil {
		return nil, malformed("iv is not hex")
	}
	ciphertext, err := hex.DecodeString(token[ivHexLen:])
	if err != nil {
		return nil, malformed("ciphertext is not hex")
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, malformed("ciphertext is not a whole number of blocks")
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plaintext, ciphertext)
	defer common.WipeByteArray(plaintext)

	unpadded, err := unpad(plaintext, aes.BlockSize)
	if err != nil {
		return nil, err
	}

	var p payload
	if err := json.Unmarshal(unpadded, &p); err != nil {
		return nil, malformed("payload is not a single json object")
	}
	if p.Email == nil || p.Password == nil || p.Time == nil {
		return nil, malformed("payload misses required fields")
	}

	return &Credential{
		Email:    *p.Email,
		Password: *p.Password,
		IssuedAt: time.UnixMilli(*p.Time),
	}, nil
}

func malformed(reason string) error {
	return fmt.Errorf("%w: %s", common.ErrMalformedToken, reason)
}

func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, malformed("bad padding")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size {
		return nil, malformed("bad padding")
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, malformed("bad padding")
		}
	}
	return b[:len(b)-n], nil
}
