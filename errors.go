// errors.go: structured error handling for bivium cache operations
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes
// for configuration and archive operations. Cache misses are never errors.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package bivium

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for Bivium cache operations
const (
	// Configuration errors
	ErrCodeInvalidConfig   errors.ErrorCode = "BIVIUM_INVALID_CONFIG"
	ErrCodeInvalidCapacity errors.ErrorCode = "BIVIUM_INVALID_CAPACITY"

	// Archive errors
	ErrCodeArchiveWriteFailed errors.ErrorCode = "BIVIUM_ARCHIVE_WRITE_FAILED"
	ErrCodeArchiveReadFailed  errors.ErrorCode = "BIVIUM_ARCHIVE_READ_FAILED"
	ErrCodeChecksumMismatch   errors.ErrorCode = "BIVIUM_CHECKSUM_MISMATCH"
	ErrCodeCorruptedRecord    errors.ErrorCode = "BIVIUM_CORRUPTED_RECORD"
	ErrCodeCodecFailed        errors.ErrorCode = "BIVIUM_CODEC_FAILED"
	ErrCodeArchiveDisabled    errors.ErrorCode = "BIVIUM_ARCHIVE_DISABLED"

	// Lifecycle and internal errors
	ErrCodeCacheClosed   errors.ErrorCode = "BIVIUM_CACHE_CLOSED"
	ErrCodeInternalError errors.ErrorCode = "BIVIUM_INTERNAL_ERROR"
)

// Common error messages
const (
	msgInvalidConfig      = "invalid configuration value"
	msgInvalidCapacity    = "invalid capacity: must be greater than 0"
	msgArchiveWriteFailed = "failed to append record to archive"
	msgArchiveReadFailed  = "failed to read archive"
	msgChecksumMismatch   = "archived record checksum does not match key"
	msgCorruptedRecord    = "corrupted archive record"
	msgCodecFailed        = "failed to convert archive text"
	msgArchiveDisabled    = "archive path is not configured"
	msgCacheClosed        = "cache is closed"
	msgInternalError      = "internal cache error"
)

// =============================================================================
// CONFIGURATION ERRORS
// =============================================================================

// NewErrInvalidCapacity creates an error for a store configured with no room.
func NewErrInvalidCapacity(store string, capacity int) error {
	return errors.NewWithContext(ErrCodeInvalidCapacity, msgInvalidCapacity, map[string]interface{}{
		"store":            store,
		"provided_size":    capacity,
		"minimum_required": 1,
	})
}

// NewErrInvalidConfig creates an error for a configuration field with an unusable value.
func NewErrInvalidConfig(field string, value interface{}) error {
	return errors.NewWithContext(ErrCodeInvalidConfig, msgInvalidConfig, map[string]interface{}{
		"field": field,
		"value": fmt.Sprintf("%v", value),
	})
}

// =============================================================================
// ARCHIVE ERRORS
// =============================================================================

// NewErrArchiveWriteFailed creates an error when a record cannot be appended
func NewErrArchiveWriteFailed(path string, cause error) error {
	return errors.Wrap(cause, ErrCodeArchiveWriteFailed, msgArchiveWriteFailed).
		WithContext("path", path).
		AsRetryable()
}

// NewErrArchiveReadFailed creates an error when the archive cannot be scanned
func NewErrArchiveReadFailed(path string, cause error) error {
	return errors.Wrap(cause, ErrCodeArchiveReadFailed, msgArchiveReadFailed).
		WithContext("path", path).
		AsRetryable()
}

// NewErrChecksumMismatch creates an error for a record whose checksum disagrees with its key
func NewErrChecksumMismatch(key string, stored, computed uint64) error {
	return errors.NewWithContext(ErrCodeChecksumMismatch, msgChecksumMismatch, map[string]interface{}{
		"key":      key,
		"stored":   stored,
		"computed": computed,
	})
}

// NewErrCorruptedRecord creates an error for an archive line that cannot be parsed
func NewErrCorruptedRecord(line string) error {
	return errors.NewWithField(ErrCodeCorruptedRecord, msgCorruptedRecord, "line", line)
}

// NewErrCodecFailed creates an error when a key or value cannot be converted
func NewErrCodecFailed(direction string, cause error) error {
	return errors.Wrap(cause, ErrCodeCodecFailed, msgCodecFailed).
		WithContext("direction", direction)
}

// NewErrArchiveDisabled creates an error for archive operations without an archive path
func NewErrArchiveDisabled(operation string) error {
	return errors.NewWithField(ErrCodeArchiveDisabled, msgArchiveDisabled, "operation", operation)
}

// =============================================================================
// LIFECYCLE AND INTERNAL ERRORS
// =============================================================================

// NewErrCacheClosed creates an error for operations on a closed cache
func NewErrCacheClosed(operation string) error {
	return errors.NewWithField(ErrCodeCacheClosed, msgCacheClosed, "operation", operation)
}

// NewErrInternal creates a generic internal error
func NewErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternalError, msgInternalError).
			WithContext("operation", operation).
			WithSeverity("warning")
	}
	return errors.NewWithField(ErrCodeInternalError, msgInternalError, "operation", operation).
		WithSeverity("warning")
}

// =============================================================================
// ERROR CHECKING HELPERS
// =============================================================================

// IsConfigError checks if error is a configuration error
func IsConfigError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrCodeInvalidConfig || code == ErrCodeInvalidCapacity
}

// IsArchiveError checks if error comes from the archive subsystem
func IsArchiveError(err error) bool {
	switch GetErrorCode(err) {
	case ErrCodeArchiveWriteFailed, ErrCodeArchiveReadFailed, ErrCodeChecksumMismatch,
		ErrCodeCorruptedRecord, ErrCodeCodecFailed, ErrCodeArchiveDisabled:
		return true
	}
	return false
}

// IsChecksumMismatch checks if error is a checksum mismatch
func IsChecksumMismatch(err error) bool {
	return errors.HasCode(err, ErrCodeChecksumMismatch)
}

// IsCacheClosed checks if error reports a closed cache
func IsCacheClosed(err error) bool {
	return errors.HasCode(err, ErrCodeCacheClosed)
}

// IsRetryable checks if the error can be retried
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

// GetErrorCode extracts the error code from an error
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

// GetErrorContext extracts context from an error
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var biviumErr *errors.Error
	if goerrors.As(err, &biviumErr) {
		return biviumErr.Context
	}
	return nil
}
