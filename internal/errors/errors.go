package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies every failure the core can return. Callers branch on kinds,
// never on message text.
type Kind string

const (
	// KindNotFound is an unknown team/project/sprint/task/backlog item/user.
	KindNotFound Kind = "NOT_FOUND"
	// KindInvalidState is an illegal transition or malformed input.
	KindInvalidState Kind = "INVALID_STATE"
	// KindPermissionDenied carries a Reason from the access control engine.
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	// KindConflict covers re-initialization of a started team and
	// sprint-advance with incomplete tasks.
	KindConflict Kind = "CONFLICT"
	// KindStoreUnavailable is persistence I/O failure after retries.
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"
	// KindUnauthorized is a failed token or session authentication.
	KindUnauthorized Kind = "UNAUTHORIZED"
)

// Reason is the machine-readable sub-reason on permission denials.
type Reason string

const (
	ReasonInsufficientRole  Reason = "insufficient_role"
	ReasonWrongTeam         Reason = "wrong_team"
	ReasonNotAssignee       Reason = "not_assignee"
	ReasonInvalidTransition Reason = "invalid_transition"
)

// Error is the typed result every core operation returns on failure.
type Error struct {
	Kind    Kind   `json:"code"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors by kind, and by reason when the target carries one.
func (e *Error) Is(target error) bool {
	var t *Error
	if !stderrors.As(target, &t) {
		return false
	}
	if t.Reason != "" && t.Reason != e.Reason {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an unknown entity.
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

// InvalidState reports an illegal transition or malformed input.
func InvalidState(format string, args ...any) *Error {
	return newError(KindInvalidState, format, args...)
}

// Conflict reports an operation rejected by an idempotency or completeness
// guard.
func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

// Unauthorized reports failed authentication.
func Unauthorized(format string, args ...any) *Error {
	return newError(KindUnauthorized, format, args...)
}

// PermissionDenied reports an authorization failure with its sub-reason.
func PermissionDenied(reason Reason, format string, args ...any) *Error {
	e := newError(KindPermissionDenied, format, args...)
	e.Reason = reason
	return e
}

// StoreUnavailable wraps a persistence failure that survived the retry
// budget.
func StoreUnavailable(cause error, format string, args ...any) *Error {
	e := newError(KindStoreUnavailable, format, args...)
	e.cause = cause
	return e
}

// KindOf extracts the kind of err, or empty when err is not a core error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ReasonOf extracts the permission sub-reason of err, if any.
func ReasonOf(err error) Reason {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Reason
	}
	return ""
}
