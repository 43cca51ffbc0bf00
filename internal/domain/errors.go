package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// Store-level sentinels returned (possibly wrapped) by repository backends.
var (
	ErrNoSuchDocument     = errors.New("no such document")
	ErrPreconditionFailed = errors.New("conditional update precondition failed")
)

// ErrorCode classifies failures surfaced to callers of the core.
type ErrorCode string

const (
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidKind      ErrorCode = "INVALID_KIND"
	CodeInvalid          ErrorCode = "INVALID"
	CodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
)

// Error is the failure taxonomy value. Entity is set for NotFound
// ("employee" or "asset"); Reason carries the human readable cause.
type Error struct {
	Code   ErrorCode
	Entity string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	switch e.Code {
	case CodeNotFound:
		return fmt.Sprintf("%s not found: %s", e.Entity, e.Reason)
	case CodeStoreUnavailable:
		if e.Err != nil {
			return fmt.Sprintf("store unavailable: %s: %v", e.Reason, e.Err)
		}
		return "store unavailable: " + e.Reason
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing employee or asset.
func NotFound(entity, id string) error {
	return &Error{Code: CodeNotFound, Entity: entity, Reason: id}
}

// Conflict reports a violated ownership invariant. The reason is surfaced verbatim.
func Conflict(reason string) error {
	return &Error{Code: CodeConflict, Reason: reason}
}

// InvalidKind reports an unsupported asset kind literal.
func InvalidKind(kind string) error {
	return &Error{Code: CodeInvalidKind, Reason: fmt.Sprintf("unsupported asset kind %q", kind)}
}

// Invalid reports a record that failed validation.
func Invalid(reason string) error {
	return &Error{Code: CodeInvalid, Reason: reason}
}

// StoreUnavailable wraps an infrastructure fault.
func StoreUnavailable(op string, err error) error {
	return &Error{Code: CodeStoreUnavailable, Reason: op, Err: err}
}

// CodeOf extracts the taxonomy code, or "" for foreign errors.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func IsNotFound(err error) bool         { return CodeOf(err) == CodeNotFound }
func IsConflict(err error) bool         { return CodeOf(err) == CodeConflict }
func IsInvalidKind(err error) bool      { return CodeOf(err) == CodeInvalidKind }
func IsStoreUnavailable(err error) bool { return CodeOf(err) == CodeStoreUnavailable }
