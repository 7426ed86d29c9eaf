// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package orchestration

import (
	"errors"
	"fmt"
)

// ErrAuthentication is matched by every *AuthenticationError.
var ErrAuthentication = errors.New("orchestration authentication failed")

// errNotFound marks a 404 from a single-resource read.
var errNotFound = errors.New("resource not found")

// AuthenticationError is returned when the token endpoint rejects the credential exchange.
type AuthenticationError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("orchestration authentication failed: %v", e.Err)
	}
	return fmt.Sprintf("orchestration authentication failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrAuthentication) match.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// UpstreamError is returned for non-2xx responses from resource endpoints.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("orchestration %s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}
