// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tzstore

import (
	"bytes"
	"errors"
	"testing"
)

func testKey(t *testing.T, fill byte) *Key {
	t.Helper()
	key, err := NewKey(bytes.Repeat([]byte{fill}, KeySize))
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	t.Cleanup(func() { key.Close() })
	return key
}

func TestSealOpen(t *testing.T) {
	key := testKey(t, 1)
	sealed, err := key.seal(purposeRecord, "@alice:example.org", []byte("Asia/Tokyo"))
	if err != nil {
		t.Fatal(err)
	}
	if len(sealed) != sealOverhead+len("Asia/Tokyo") {
		t.Errorf("sealed length = %d", len(sealed))
	}
	if bytes.Contains(sealed, []byte("Asia/Tokyo")) {
		t.Error("plaintext visible in sealed value")
	}

	opened, err := key.open(purposeRecord, "@alice:example.org", sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(opened) != "Asia/Tokyo" {
		t.Errorf("opened %q", opened)
	}
}

func TestSealUsesFreshNonces(t *testing.T) {
	key := testKey(t, 1)
	first, _ := key.seal(purposeRecord, "@alice:example.org", []byte("UTC"))
	second, _ := key.seal(purposeRecord, "@alice:example.org", []byte("UTC"))
	if bytes.Equal(first, second) {
		t.Error("sealing twice produced identical output")
	}
}

func TestOpenRejects(t *testing.T) {
	key := testKey(t, 1)
	otherKey := testKey(t, 2)
	sealed, err := key.seal(purposeRecord, "@alice:example.org", []byte("Europe/Paris"))
	if err != nil {
		t.Fatal(err)
	}

	flip := func(index int) []byte {
		modified := bytes.Clone(sealed)
		modified[index] ^= 0x01
		return modified
	}

	tests := []struct {
		name    string
		key     *Key
		purpose string
		subject string
		data    []byte
	}{
		{name: "wrong key", key: otherKey, purpose: purposeRecord, subject: "@alice:example.org", data: sealed},
		{name: "other user", key: key, purpose: purposeRecord, subject: "@bob:example.org", data: sealed},
		{name: "other purpose", key: key, purpose: purposeCanary, subject: "@alice:example.org", data: sealed},
		{name: "version byte", key: key, purpose: purposeRecord, subject: "@alice:example.org", data: flip(0)},
		{name: "nonce", key: key, purpose: purposeRecord, subject: "@alice:example.org", data: flip(5)},
		{name: "ciphertext", key: key, purpose: purposeRecord, subject: "@alice:example.org", data: flip(len(sealed) - 20)},
		{name: "tag", key: key, purpose: purposeRecord, subject: "@alice:example.org", data: flip(len(sealed) - 1)},
		{name: "truncated", key: key, purpose: purposeRecord, subject: "@alice:example.org", data: sealed[:sealOverhead-1]},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := test.key.open(test.purpose, test.subject, test.data); !errors.Is(err, ErrUndecryptable) {
				t.Errorf("error = %v, want ErrUndecryptable", err)
			}
		})
	}
}
