// Stillpoint Insights - Behavioral Analytics Derivation Service
// Copyright 2026 Stillpoint Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stillpoint-app/insights

package warehouse

import "fmt"

// ErrorKind classifies warehouse query failures. The API layer maps each
// kind to a distinct response code, so kinds must stay disjoint:
// a missing credential is never reported as an upstream failure and a
// non-2xx status is never reported as a decoding problem.
type ErrorKind int

const (
	// KindConfig means a required credential is absent. Pre-flight; no
	// request was sent.
	KindConfig ErrorKind = iota

	// KindUpstream means the warehouse answered with a non-success status.
	KindUpstream

	// KindMalformed means the warehouse answered 2xx but the body did not
	// decode into the expected row shape.
	KindMalformed
)

// QueryError is the error type returned by Client.Query. StatusCode is
// only set for KindUpstream.
type QueryError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *QueryError) Error() string {
	switch e.Kind {
	case KindUpstream:
		return fmt.Sprintf("warehouse query failed with status %d: %s", e.StatusCode, e.Message)
	case KindMalformed:
		return fmt.Sprintf("warehouse response malformed: %s", e.Message)
	default:
		return e.Message
	}
}

// ErrAPIKeyMissing is returned before any request is attempted when no
// warehouse API key is configured. The message is fixed and safe to
// surface verbatim.
var ErrAPIKeyMissing = &QueryError{Kind: KindConfig, Message: "warehouse API key is not configured"}
