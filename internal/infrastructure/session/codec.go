package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrInvalidSession is returned when a cookie cannot be opened: it was tampered with,
// truncated, or sealed with another key.
var ErrInvalidSession = errors.New("session: invalid or tampered cookie")

// Codec seals values with NaCl secretbox under a static key.
type Codec struct {
	key [32]byte
}

// NewCodec derives the 32-byte secretbox key from the configured secret.
func NewCodec(secret string) (*Codec, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("session: key must be at least 16 bytes, got %d", len(secret))
	}
	c := &Codec{}
	if len(secret) == 32 {
		copy(c.key[:], secret)
	} else {
		c.key = sha256.Sum256([]byte(secret))
	}
	return c, nil
}

// Seal encrypts and authenticates plaintext, returning a cookie-safe string.
func (c *Codec) Seal(plaintext []byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("session: read nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], plaintext, &nonce, &c.key)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open reverses Seal.
func (c *Codec) Open(value string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return nil, ErrInvalidSession
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &c.key)
	if !ok {
		return nil, ErrInvalidSession
	}
	return plain, nil
}
