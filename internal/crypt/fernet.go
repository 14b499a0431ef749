// Package crypt encrypts files with Fernet tokens, readable by any other
// Fernet implementation given the same key.
package crypt

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/fernet/fernet-go"
)

// Smallest decoded token: version, timestamp, IV, one cipher block and the
// HMAC.
const minTokenLen = 1 + 8 + 16 + 16 + 32

// noExpiry disables the token age check.
const noExpiry = -1

// ErrInvalidToken covers every token that fails to authenticate or decode.
var ErrInvalidToken = errors.New("invalid token")

// ErrInvalidKey is returned for keys that are not 32 url-safe base64 bytes.
var ErrInvalidKey = errors.New("key must be 32 url-safe base64-encoded bytes")

// Key is a Fernet key: a signing half followed by an encryption half.
type Key = fernet.Key

// GenerateKey returns a new random key.
func GenerateKey() (*Key, error) {
	var k Key
	if err := k.Generate(); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &k, nil
}

// DecodeKey parses the url-safe base64 form of a key, ignoring surrounding
// whitespace.
func DecodeKey(s string) (*Key, error) {
	k, err := fernet.DecodeKey(strings.TrimSpace(s))
	if err != nil {
		return nil, ErrInvalidKey
	}
	return k, nil
}

// Encrypt returns a Fernet token for plaintext.
func Encrypt(k *Key, plaintext []byte) ([]byte, error) {
	token, err := fernet.EncryptAndSign(plaintext, k)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	return token, nil
}

// Decrypt verifies token and returns its plaintext. Tokens do not expire.
func Decrypt(k *Key, token []byte) ([]byte, error) {
	token = bytes.TrimSpace(token)
	raw, err := base64.URLEncoding.DecodeString(string(token))
	if err != nil || len(raw) < minTokenLen {
		return nil, ErrInvalidToken
	}
	plain := fernet.VerifyAndDecrypt(token, noExpiry, []*fernet.Key{k})
	if plain == nil {
		return nil, ErrInvalidToken
	}
	return plain, nil
}
