// Package crypto seals provider access tokens before they are stored.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gtank/cryptopasta"
)

var (
	ErrKeyTooShort      = errors.New("key too short, want at least 32 chars")
	ErrMalformed        = errors.New("sealed token is malformed")
	ErrSignatureInvalid = errors.New("sealed token signature mismatch")
)

// Sealer encrypts with AES-GCM and signs the ciphertext with HMAC-SHA512/256.
type Sealer struct {
	encryptionKey *[32]byte
	signingKey    *[32]byte
}

func NewSealer(encryptionKey, signingKey string) (*Sealer, error) {
	enc, err := toKey(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	sig, err := toKey(signingKey)
	if err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}
	return &Sealer{encryptionKey: enc, signingKey: sig}, nil
}

// NewRandomKey returns a URL-safe key long enough for NewSealer.
func NewRandomKey() (string, error) {
	key := make([]byte, 33)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(key), nil
}

// Seal returns "<ciphertext>.<signature>", both base64url encoded.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	ciphertext, err := cryptopasta.Encrypt(plaintext, s.encryptionKey)
	if err != nil {
		return nil, err
	}
	signature := cryptopasta.GenerateHMAC(ciphertext, s.signingKey)

	sealed := base64.RawURLEncoding.EncodeToString(ciphertext) + "." +
		base64.RawURLEncoding.EncodeToString(signature)
	return []byte(sealed), nil
}

// Open verifies the signature before decrypting.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	parts := strings.SplitN(string(sealed), ".", 2)
	if len(parts) != 2 {
		return nil, ErrMalformed
	}
	ciphertext, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	signature, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !cryptopasta.CheckHMAC(ciphertext, signature, s.signingKey) {
		return nil, ErrSignatureInvalid
	}
	return cryptopasta.Decrypt(ciphertext, s.encryptionKey)
}

func toKey(s string) (*[32]byte, error) {
	if len(s) < 32 {
		return nil, ErrKeyTooShort
	}
	data := &[32]byte{}
	copy(data[:], s)
	return data, nil
}
