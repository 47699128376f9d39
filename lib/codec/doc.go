// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the standard CBOR encoding configuration.
//
// JSON is used on the wire to the Matrix homeserver. CBOR is used for
// files this process writes for itself, currently the prebuilt search
// index. The encoder uses Core Deterministic Encoding (RFC 8949 §4.2),
// so the same logical data always produces identical bytes.
//
// For buffers:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For streams (for example through a compressor):
//
//	encoder := codec.NewEncoder(writer)
//	decoder := codec.NewDecoder(reader)
//
// Types that are only ever CBOR carry `cbor` struct tags. Never put
// both `cbor` and `json` tags on the same field.
package codec
