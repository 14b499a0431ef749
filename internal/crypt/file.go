package crypt

import (
	"errors"
	"fmt"
	"os"

	"github.com/aidanlsb/vaultkit/internal/atomicfile"
)

// ErrKeyFileExists is returned by NewKeyFile when it would overwrite a key.
var ErrKeyFileExists = errors.New("key file already exists")

// NewKeyFile writes a fresh key to path. An existing file is only replaced
// when force is set.
func NewKeyFile(path string, force bool) (*Key, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return nil, fmt.Errorf("%w at %s", ErrKeyFileExists, path)
	}

	k, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := atomicfile.WriteFile(path, []byte(k.Encode()), 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return k, nil
}

// ReadKeyFile reads a key written by NewKeyFile or any Fernet tool.
func ReadKeyFile(path string) (*Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	k, err := DecodeKey(string(data))
	if err != nil {
		return nil, fmt.Errorf("key file %s: %w", path, err)
	}
	return k, nil
}

// EncryptFile encrypts src into dst.
func EncryptFile(src, dst string, k *Key) error {
	plain, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read plaintext: %w", err)
	}
	token, err := Encrypt(k, plain)
	if err != nil {
		return err
	}
	if err := atomicfile.WriteFile(dst, token, atomicfile.KeepPerm); err != nil {
		return fmt.Errorf("write encrypted file: %w", err)
	}
	return nil
}

// DecryptFile decrypts src into dst. dst is untouched when src does not
// authenticate.
func DecryptFile(src, dst string, k *Key) error {
	token, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read encrypted file: %w", err)
	}
	plain, err := Decrypt(k, token)
	if err != nil {
		return fmt.Errorf("decrypt %s: %w", src, err)
	}
	if err := atomicfile.WriteFile(dst, plain, atomicfile.KeepPerm); err != nil {
		return fmt.Errorf("write plaintext: %w", err)
	}
	return nil
}
