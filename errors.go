// errors.go: comprehensive error handling for qkernel query evaluation
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error
// codes for every entry point that can fail.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package qkernel

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for qkernel operations. Only CompileTerm surfaces
// ErrCodeInvalidRegex to callers; EvaluateNear and Search never return
// an error. WriteDiagnostics returns ErrCodeDiagnosticsWriteFailed, and
// the fuzzy matcher logs ErrCodeInternalMatcherFailed when it recovers
// from a failure; the remaining constructors are not used by the engine
// itself.
const (
	// Term compilation errors (1xxx)
	ErrCodeInvalidRegex errors.ErrorCode = "QKERNEL_INVALID_REGEX"

	// Evaluation errors (2xxx), never returned to callers; recorded
	// only.
	ErrCodeInvalidInput          errors.ErrorCode = "QKERNEL_INVALID_INPUT"
	ErrCodeTimeout               errors.ErrorCode = "QKERNEL_TIMEOUT"
	ErrCodeInternalMatcherFailed errors.ErrorCode = "QKERNEL_INTERNAL_MATCHER_FAILED"

	// Configuration errors (3xxx)
	ErrCodeInvalidConfig errors.ErrorCode = "QKERNEL_INVALID_CONFIG"

	// Diagnostics persistence errors (4xxx)
	ErrCodeDiagnosticsWriteFailed errors.ErrorCode = "QKERNEL_DIAGNOSTICS_WRITE_FAILED"

	// Internal errors (5xxx)
	ErrCodeInternalError errors.ErrorCode = "QKERNEL_INTERNAL_ERROR"
)

const (
	msgInvalidRegex           = "term pattern failed to compile"
	msgInvalidInput           = "invalid input: empty content or negative distance"
	msgTimeout                = "evaluation exceeded the execution time budget"
	msgInternalMatcherFailed  = "fuzzy matcher encountered an internal failure"
	msgInvalidConfig          = "invalid engine configuration"
	msgDiagnosticsWriteFailed = "failed to write diagnostics artifact"
	msgInternalError          = "internal qkernel error"
)

// NewErrInvalidRegex creates the one typed error CompileTerm returns.
// It is never cached and never poisons any memoization layer.
func NewErrInvalidRegex(source, flags string, cause error) error {
	return errors.Wrap(cause, ErrCodeInvalidRegex, msgInvalidRegex).
		WithContext("source", source).
		WithContext("flags", flags)
}

// NewErrInvalidInput records an invalid-input condition (empty content,
// negative distance, content shorter than the proximity floor). Never
// raised: it's recorded against the engine's early-termination counter
// and the caller simply receives false.
func NewErrInvalidInput(reason string) error {
	return errors.NewWithField(ErrCodeInvalidInput, msgInvalidInput, "reason", reason)
}

// NewErrTimeout records an execution-budget overrun, optionally
// attributed to a path for circuit-breaker bookkeeping.
func NewErrTimeout(path string, elapsed interface{}) error {
	return errors.NewWithContext(ErrCodeTimeout, msgTimeout, map[string]interface{}{
		"path":    path,
		"elapsed": elapsed,
	}).AsRetryable()
}

// NewErrInternalMatcherFailed wraps a panic or unexpected failure inside
// the fuzzy matcher. Logged and downgraded to isMatch=false; never
// returned through Search.
func NewErrInternalMatcherFailed(operation string, cause interface{}) error {
	return errors.NewWithContext(ErrCodeInternalMatcherFailed, msgInternalMatcherFailed, map[string]interface{}{
		"operation": operation,
		"cause":     fmt.Sprintf("%v", cause),
	}).WithSeverity("warning")
}

// NewErrInvalidConfig creates an error for a configuration value that
// could not be normalized.
func NewErrInvalidConfig(field string, value interface{}) error {
	return errors.NewWithContext(ErrCodeInvalidConfig, msgInvalidConfig, map[string]interface{}{
		"field": field,
		"value": value,
	})
}

// NewErrDiagnosticsWriteFailed wraps a failure writing the diagnostics
// artifact.
func NewErrDiagnosticsWriteFailed(cause error) error {
	return errors.Wrap(cause, ErrCodeDiagnosticsWriteFailed, msgDiagnosticsWriteFailed).
		AsRetryable()
}

// NewErrInternal creates a generic internal error, used for conditions
// that should not be reachable but are defended against defensively.
func NewErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternalError, msgInternalError).
			WithContext("operation", operation).
			WithSeverity("warning")
	}
	return errors.NewWithField(ErrCodeInternalError, msgInternalError, "operation", operation).
		WithSeverity("warning")
}

// IsInvalidRegex reports whether err is (or wraps) a term-compilation failure.
func IsInvalidRegex(err error) bool {
	return errors.HasCode(err, ErrCodeInvalidRegex)
}

// IsTimeout reports whether err is (or wraps) a timeout.
func IsTimeout(err error) bool {
	return errors.HasCode(err, ErrCodeTimeout)
}

// IsInvalidInput reports whether err is (or wraps) an invalid-input condition.
func IsInvalidInput(err error) bool {
	return errors.HasCode(err, ErrCodeInvalidInput)
}

// IsRetryable reports whether the error can be retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from an error, empty if none.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts structured context from an error, nil if none.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var qerr *errors.Error
	if goerrors.As(err, &qerr) {
		return qerr.Context
	}
	return nil
}
