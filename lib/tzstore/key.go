// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tzstore

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/bureau-foundation/timezoner/lib/secret"
)

// KeySize is the length of a record key in bytes.
const KeySize = chacha20poly1305.KeySize

// ErrInvalidKey is wrapped by every key parsing failure.
var ErrInvalidKey = errors.New("tzstore: invalid key")

// Key is the record encryption key, held in locked memory.
type Key struct {
	buffer *secret.Buffer
}

// NewKey takes ownership of raw, which must be KeySize bytes. raw is
// zeroed.
func NewKey(raw []byte) (*Key, error) {
	if len(raw) != KeySize {
		secret.Zero(raw)
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidKey, len(raw), KeySize)
	}
	buffer, err := secret.NewFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("tzstore: protecting key: %w", err)
	}
	return &Key{buffer: buffer}, nil
}

// ParseKey decodes a hex-encoded key.
func ParseKey(hexKey []byte) (*Key, error) {
	raw := make([]byte, hex.DecodedLen(len(hexKey)))
	n, err := hex.Decode(raw, hexKey)
	if err != nil {
		secret.Zero(raw)
		return nil, fmt.Errorf("%w: not hex: %v", ErrInvalidKey, err)
	}
	return NewKey(raw[:n])
}

// LoadKeyFile reads a hex-encoded key from path.
func LoadKeyFile(path string) (*Key, error) {
	buffer, err := secret.ReadFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("tzstore: loading key: %w", err)
	}
	defer buffer.Close()
	key, err := ParseKey(buffer.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return key, nil
}

// GenerateKey returns a fresh random key and its hex encoding, for
// provisioning.
func GenerateKey() (*Key, string, error) {
	raw := make([]byte, KeySize)
	if _, err := rand.Read(raw); err != nil {
		return nil, "", fmt.Errorf("tzstore: generating key: %w", err)
	}
	encoded := hex.EncodeToString(raw)
	key, err := NewKey(raw)
	if err != nil {
		return nil, "", err
	}
	return key, encoded, nil
}

// Close wipes the key.
func (k *Key) Close() error {
	return k.buffer.Close()
}
