// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tzstore

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	sealVersion  byte = 0x01
	sealOverhead      = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead
)

// Purpose labels keep record ciphertexts and the key canary from being
// interchangeable.
const (
	purposeRecord = "timezoner.record.v1"
	purposeCanary = "timezoner.key-check.v1"
)

// ErrUndecryptable means a sealed value failed authentication: wrong
// key, tampered bytes, or a value that belongs to another user.
var ErrUndecryptable = errors.New("tzstore: sealed value failed authentication")

func (k *Key) seal(purpose, subject string, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(k.buffer.Bytes())
	if err != nil {
		return nil, fmt.Errorf("tzstore: cipher: %w", err)
	}

	output := make([]byte, 1+chacha20poly1305.NonceSizeX, sealOverhead+len(plaintext))
	output[0] = sealVersion
	if _, err := rand.Read(output[1:]); err != nil {
		return nil, fmt.Errorf("tzstore: nonce: %w", err)
	}
	nonce := output[1 : 1+chacha20poly1305.NonceSizeX]
	return aead.Seal(output, nonce, plaintext, additionalData(sealVersion, purpose, subject)), nil
}

func (k *Key) open(purpose, subject string, sealed []byte) ([]byte, error) {
	if len(sealed) < sealOverhead {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the envelope", ErrUndecryptable, len(sealed))
	}
	if sealed[0] != sealVersion {
		return nil, fmt.Errorf("%w: unknown version %#x", ErrUndecryptable, sealed[0])
	}
	aead, err := chacha20poly1305.NewX(k.buffer.Bytes())
	if err != nil {
		return nil, fmt.Errorf("tzstore: cipher: %w", err)
	}
	nonce := sealed[1 : 1+chacha20poly1305.NonceSizeX]
	ciphertext := sealed[1+chacha20poly1305.NonceSizeX:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, additionalData(sealed[0], purpose, subject))
	if err != nil {
		return nil, ErrUndecryptable
	}
	return plaintext, nil
}

// additionalData is version || purpose || 0x00 || subject. The
// separator keeps purpose and subject boundaries unambiguous.
func additionalData(version byte, purpose, subject string) []byte {
	data := make([]byte, 0, 2+len(purpose)+len(subject))
	data = append(data, version)
	data = append(data, purpose...)
	data = append(data, 0)
	data = append(data, subject...)
	return data
}
