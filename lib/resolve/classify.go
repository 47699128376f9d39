// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"errors"

	"github.com/bureau-foundation/timezoner/lib/tzindex"
	"github.com/bureau-foundation/timezoner/lib/tzstore"
)

// Kind groups errors by who should hear about them.
type Kind int

const (
	// KindInternal is anything unrecognized. The user gets an apology;
	// the details go to the error sink.
	KindInternal Kind = iota

	// KindUserInput is text that names no zone or does not parse. The
	// user gets an actionable message and nothing is reported.
	KindUserInput

	// KindDataInconsistency is index and catalog disagreement.
	KindDataInconsistency

	// KindStorage is a failed read or write of a user record.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindUserInput:
		return "user_input"
	case KindDataInconsistency:
		return "data_inconsistency"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Classify returns the Kind of err. A nil error is KindInternal; callers
// only classify failures.
func Classify(err error) Kind {
	var (
		syntaxErr       *tzindex.SyntaxError
		inconsistentErr *InconsistencyError
		storageErr      *tzstore.StorageError
	)
	switch {
	case errors.Is(err, ErrNotFound), errors.As(err, &syntaxErr):
		return KindUserInput
	case errors.As(err, &inconsistentErr):
		return KindDataInconsistency
	case errors.As(err, &storageErr):
		return KindStorage
	default:
		return KindInternal
	}
}
