// errors.go: Error codes for conftree operations
//
// All errors returned by the registry carry a structured code so callers
// can react to the failure class without matching message text.
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

import (
	"github.com/agilira/go-errors"
)

// Error codes for conftree operations
const (
	// ErrCodeNotFound: no handler owns the requested identifier
	ErrCodeNotFound = "CONFTREE_NOT_FOUND"
	// ErrCodeOutOfRange: identifier addresses an array item past the element count
	ErrCodeOutOfRange = "CONFTREE_OUT_OF_RANGE"
	// ErrCodeNoBufferSpace: caller buffer too small for the handler's value
	ErrCodeNoBufferSpace = "CONFTREE_NO_BUFFER_SPACE"
	// ErrCodeNotSupported: operation not available on this handler or backend
	ErrCodeNotSupported = "CONFTREE_NOT_SUPPORTED"
	// ErrCodeNoData: handler has no backend to load from or store to
	ErrCodeNoData = "CONFTREE_NO_DATA"
	// ErrCodeCancelled: verification failed and recovery was not possible
	ErrCodeCancelled = "CONFTREE_CANCELLED"
	// ErrCodeInvalidNode: malformed registration (range, size or parent mismatch)
	ErrCodeInvalidNode = "CONFTREE_INVALID_NODE"
	// ErrCodeDepthExceeded: registration would nest deeper than MaxDepth
	ErrCodeDepthExceeded = "CONFTREE_DEPTH_EXCEEDED"
)

// HasCode reports whether err carries the given conftree error code.
//
// go-errors renders codes as a "[CODE]: message" prefix; this inspects the
// rendered form so it works across wrapping.
func HasCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// ErrorCode extracts the error code from a conftree error, or "" if the
// error carries none.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	errStr := err.Error()

	// go-errors format: [CODE]: Message
	if len(errStr) > 3 && errStr[0] == '[' {
		for idx := 1; idx < len(errStr); idx++ {
			if errStr[idx] == ']' {
				return errStr[1:idx]
			}
		}
	}

	return ""
}

func errNotFound(sid SID) error {
	return errors.New(ErrCodeNotFound, "no handler registered for identifier").
		WithContext("sid", uint64(sid))
}

func errOutOfRange(sid SID) error {
	return errors.New(ErrCodeOutOfRange, "array index out of range").
		WithContext("sid", uint64(sid))
}
