package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups error codes into the failure classes exposed to callers.
type Kind string

// Error kinds. StorageFailure is the only kind callers may retry with the same inputs.
const (
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindPolicyRejection Kind = "POLICY_REJECTION"
	KindValidation      Kind = "VALIDATION"
	KindStorageFailure  Kind = "STORAGE_FAILURE"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Kind    Kind   `json:"kind"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so clones compare equal to their template.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// Retryable reports whether the failure may succeed when repeated with the same inputs.
func (e *Error) Retryable() bool {
	return e != nil && e.Kind == KindStorageFailure
}

// New creates a new Error instance.
func New(code string, status int, kind Kind, message string) *Error {
	return &Error{Code: code, Status: status, Kind: kind, Message: message}
}

// Wrap attaches context to an existing error, inheriting code, status and kind from tmpl.
func Wrap(err error, tmpl *Error, message string) *Error {
	if message == "" {
		message = tmpl.Message
	}
	return &Error{Code: tmpl.Code, Status: tmpl.Status, Kind: tmpl.Kind, Message: message, Err: err}
}

// Predefined errors for the enrollment domain.
var (
	ErrNotFound               = New("NOT_FOUND", http.StatusNotFound, KindNotFound, "resource not found")
	ErrClassFrozen            = New("CLASS_FROZEN", http.StatusForbidden, KindPolicyRejection, "enrollment is frozen for this class")
	ErrWaitlistCapExceeded    = New("WAITLIST_CAP_EXCEEDED", http.StatusForbidden, KindPolicyRejection, "student is already on the maximum number of waitlists")
	ErrAlreadyEnrolled        = New("ALREADY_ENROLLED", http.StatusConflict, KindConflict, "student already enrolled in class")
	ErrAlreadyWaitlisted      = New("ALREADY_WAITLISTED", http.StatusConflict, KindConflict, "student already on the waitlist for class")
	ErrAlreadyDropped         = New("ALREADY_DROPPED", http.StatusConflict, KindConflict, "student already dropped this class")
	ErrNotEnrolled            = New("NOT_ENROLLED", http.StatusConflict, KindConflict, "student is not enrolled in class")
	ErrDuplicateClass         = New("DUPLICATE_CLASS", http.StatusConflict, KindConflict, "class already exists")
	ErrDuplicateWaitlistEntry = New("DUPLICATE_WAITLIST_ENTRY", http.StatusConflict, KindConflict, "waitlist entry already exists")
	ErrValidation             = New("VALIDATION_ERROR", http.StatusBadRequest, KindValidation, "validation failed")
	ErrStorage                = New("STORAGE_FAILURE", http.StatusServiceUnavailable, KindStorageFailure, "storage unavailable")
	ErrCacheMiss              = New("CACHE_MISS", http.StatusNotFound, KindNotFound, "cache miss")
)

// FromError normalises any error into an *Error. Unknown errors become storage failures.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrStorage, "")
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
