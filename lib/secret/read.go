// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"os"
)

// ReadFromPath loads a secret file into a Buffer. Surrounding whitespace
// is trimmed, so a trailing newline from an editor is harmless. The
// file's bytes are zeroed after copying.
func ReadFromPath(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("secret: reading %s: %w", path, err)
	}
	defer Zero(data)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("secret: %s: %w", path, ErrEmpty)
	}
	return NewFromBytes(trimmed)
}
