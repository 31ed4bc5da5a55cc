// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the small, closed failure taxonomy of the content
// pipeline. Read-path absence is modeled as (nil, nil), never as an error.
var (
	// ErrUnauthenticated indicates missing or invalid credentials.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden indicates the caller is authenticated but not allowed
	// to mutate content.
	ErrForbidden = errors.New("permission denied")
	// ErrUnavailable indicates the underlying store rejected the call or
	// could not be reached. Never retried automatically.
	ErrUnavailable = errors.New("store unavailable")
	// ErrNotFound indicates a mutation targeted a row that does not exist.
	// Read paths report absence as (nil, nil) instead.
	ErrNotFound = errors.New("not found")
)

// ValidationError carries itemized per-field messages so authors see
// actionable feedback ("English title is required") instead of a generic
// failure. It is always raised before any storage call where possible.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError creates a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Storage error causes, kept only for message clarity.
const (
	StorageCausePermission      = "permission-denied"
	StorageCauseQuota           = "quota-exceeded"
	StorageCauseUnauthenticated = "unauthenticated"
	StorageCauseUnavailable     = "unavailable"
)

// StorageError wraps a blob or document store rejection with a cause
// label. The cause subdivides messages for the author; callers never
// branch on it for retries (no automatic retry exists anywhere).
type StorageError struct {
	Cause string
	Err   error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage error (%s): %v", e.Cause, e.Err)
	}
	return fmt.Sprintf("storage error (%s)", e.Cause)
}

// Unwrap supports errors.Is/As chains.
func (e *StorageError) Unwrap() error { return e.Err }
