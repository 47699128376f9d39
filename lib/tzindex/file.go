// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tzindex

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/timezoner/lib/codec"
)

const (
	fileMagic   = "TZIX"
	fileVersion = 1
	digestSize  = 32
	headerSize  = len(fileMagic) + 1 + digestSize

	// digestContext separates index digests from any other BLAKE3 use.
	digestContext = "timezoner 2026-01-01 search index payload"

	// maxDecodedSize bounds decompression of a corrupt or hostile file.
	maxDecodedSize = 64 << 20
)

// ErrCorrupt is wrapped by every Open failure caused by file contents
// rather than by reading the file.
var ErrCorrupt = errors.New("tzindex: corrupt index file")

type fileBody struct {
	Entries []Entry `cbor:"entries"`
}

// zstd encoders and decoders are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		panic("tzindex: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil,
		zstd.WithDecoderMaxMemory(maxDecodedSize),
	)
	if err != nil {
		panic("tzindex: zstd decoder initialization failed: " + err.Error())
	}
}

// Encode serializes entries into the index file format.
func Encode(entries []Entry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("tzindex: refusing to encode an empty index")
	}
	encoded, err := codec.Marshal(fileBody{Entries: entries})
	if err != nil {
		return nil, fmt.Errorf("tzindex: encoding entries: %w", err)
	}
	payload := zstdEncoder.EncodeAll(encoded, nil)
	digest := payloadDigest(payload)

	data := make([]byte, 0, headerSize+len(payload))
	data = append(data, fileMagic...)
	data = append(data, fileVersion)
	data = append(data, digest[:]...)
	data = append(data, payload...)
	return data, nil
}

// Decode parses the index file format and builds an Index.
func Decode(data []byte) (*Index, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(data))
	}
	if string(data[:len(fileMagic)]) != fileMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, data[:len(fileMagic)])
	}
	if version := data[len(fileMagic)]; version != fileVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrCorrupt, version)
	}

	storedDigest := data[len(fileMagic)+1 : headerSize]
	payload := data[headerSize:]
	computed := payloadDigest(payload)
	if subtle.ConstantTimeCompare(storedDigest, computed[:]) != 1 {
		return nil, fmt.Errorf("%w: payload digest mismatch", ErrCorrupt)
	}

	encoded, err := zstdDecoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompressing: %v", ErrCorrupt, err)
	}

	var body fileBody
	if err := codec.Unmarshal(encoded, &body); err != nil {
		return nil, fmt.Errorf("%w: decoding entries: %v", ErrCorrupt, err)
	}
	if len(body.Entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrCorrupt)
	}
	for i, entry := range body.Entries {
		if entry.Display == "" || entry.Zone == "" {
			return nil, fmt.Errorf("%w: entry %d is incomplete", ErrCorrupt, i)
		}
	}

	return New(body.Entries), nil
}

// Write encodes entries and atomically replaces path with the result.
func Write(path string, entries []Entry) error {
	data, err := Encode(entries)
	if err != nil {
		return err
	}

	temporary, err := os.CreateTemp(filepath.Dir(path), ".tzindex-*")
	if err != nil {
		return fmt.Errorf("tzindex: creating temporary file: %w", err)
	}
	temporaryPath := temporary.Name()
	defer os.Remove(temporaryPath)

	if _, err := bytes.NewReader(data).WriteTo(temporary); err != nil {
		temporary.Close()
		return fmt.Errorf("tzindex: writing %s: %w", temporaryPath, err)
	}
	if err := temporary.Sync(); err != nil {
		temporary.Close()
		return fmt.Errorf("tzindex: syncing %s: %w", temporaryPath, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("tzindex: closing %s: %w", temporaryPath, err)
	}
	if err := os.Chmod(temporaryPath, 0o644); err != nil {
		return fmt.Errorf("tzindex: chmod %s: %w", temporaryPath, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("tzindex: renaming into %s: %w", path, err)
	}
	return nil
}

// Open reads and verifies the index file at path. A missing file
// wraps fs.ErrNotExist; content problems wrap ErrCorrupt.
func Open(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tzindex: reading %s: %w", path, err)
	}
	index, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("tzindex: opening %s: %w", path, err)
	}
	return index, nil
}

func payloadDigest(payload []byte) [digestSize]byte {
	hasher := blake3.NewDeriveKey(digestContext)
	hasher.Write(payload)
	var digest [digestSize]byte
	copy(digest[:], hasher.Sum(nil))
	return digest
}
