package domain

import "errors"

var (
	// ErrSessionNotFound is returned when an operation references an unknown
	// session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionRevoked is reported by Touch when the session has already been
	// revoked. It is not an error condition for revocation itself, which is
	// idempotent.
	ErrSessionRevoked = errors.New("session revoked")
	// ErrDuplicateSessionID signals an id collision on insert. The caller
	// regenerates the id and retries.
	ErrDuplicateSessionID = errors.New("duplicate session id")

	// ErrStoreUnavailable wraps transient backing-store failures. Handlers map
	// it to a retryable 503.
	ErrStoreUnavailable = errors.New("session store unavailable")

	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrCourseNotFound = errors.New("course not found")

	ErrDepartmentNotFound = errors.New("department not found")
	ErrDepartmentExists   = errors.New("department already exists")
	ErrDepartmentInUse    = errors.New("department has enrolled students")

	ErrResetRequestNotFound = errors.New("device reset request not found")
	ErrResetRequestResolved = errors.New("device reset request already resolved")
)
