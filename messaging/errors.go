// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"errors"
	"fmt"
	"time"
)

// MatrixError is a structured error response from the homeserver.
type MatrixError struct {
	Code         string `json:"errcode"`
	Message      string `json:"error"`
	RetryAfterMS int64  `json:"retry_after_ms,omitempty"`
	StatusCode   int    `json:"-"`
}

func (e *MatrixError) Error() string {
	return fmt.Sprintf("matrix: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// RetryAfter is the server-requested delay for M_LIMIT_EXCEEDED, or 0.
func (e *MatrixError) RetryAfter() time.Duration {
	return time.Duration(e.RetryAfterMS) * time.Millisecond
}

// Matrix error codes timezoner reacts to.
const (
	ErrCodeForbidden     = "M_FORBIDDEN"
	ErrCodeUnknownToken  = "M_UNKNOWN_TOKEN"
	ErrCodeNotFound      = "M_NOT_FOUND"
	ErrCodeLimitExceeded = "M_LIMIT_EXCEEDED"
	ErrCodeUnknown       = "M_UNKNOWN"
)

// IsMatrixError reports whether err is a *MatrixError with code.
func IsMatrixError(err error, code string) bool {
	var matrixErr *MatrixError
	return errors.As(err, &matrixErr) && matrixErr.Code == code
}
