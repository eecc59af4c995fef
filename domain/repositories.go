package domain

import (
	"context"
	"time"
)

// SessionRepository is the durable Session Store. Implementations must keep
// session ids unique across all users and all time, and must make Revoke a
// compare-and-set on the single record so that concurrent single-session
// logouts need no wider lock.
type SessionRepository interface {
	// Create inserts a new, non-revoked session. Returns
	// ErrDuplicateSessionID on id collision; the caller retries with a fresh
	// id.
	Create(ctx context.Context, session *Session) error
	// Get returns the session or ErrSessionNotFound.
	Get(ctx context.Context, sessionID string) (*Session, error)
	// ListActive returns the user's non-revoked sessions ordered by
	// created_at ascending, session id as tiebreak. Snapshot at call time.
	ListActive(ctx context.Context, userUUID string) ([]*Session, error)
	// Revoke sets revoked=true if not already set. Reports whether a change
	// was made; revoking twice is not an error. ErrSessionNotFound if the id
	// is unknown.
	Revoke(ctx context.Context, sessionID string) (bool, error)
	// RevokeAll revokes every active session for the user except
	// exceptSessionID (ignored when empty). Returns the number revoked.
	RevokeAll(ctx context.Context, userUUID, exceptSessionID string) (int64, error)
	// Touch advances last_used_at. Reports ErrSessionRevoked without updating
	// when the session is revoked, ErrSessionNotFound when unknown.
	Touch(ctx context.Context, sessionID string, at time.Time) error
}

// UserRepository spans the per-role account collections.
type UserRepository interface {
	// FindByEmail resolves an email across admins, students and teachers, in
	// that order, and returns the user with Role set. ErrUserNotFound when no
	// collection matches.
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, role Role, user *User) error
	Get(ctx context.Context, role Role, uuid string) (*User, error)
	List(ctx context.Context, role Role) ([]*User, error)
	Update(ctx context.Context, role Role, user *User) error
	Delete(ctx context.Context, role Role, uuid string) error
	// CountStudentsByDepartment backs the department-deletion guard.
	CountStudentsByDepartment(ctx context.Context, department string) (int64, error)
}

type CourseRepository interface {
	Create(ctx context.Context, course *Course) error
	Get(ctx context.Context, uuid string) (*Course, error)
	List(ctx context.Context) ([]*Course, error)
	Update(ctx context.Context, course *Course) error
	Delete(ctx context.Context, uuid string) error
	// ListAutoAssignByDepartment returns courses tagged with the department
	// that have auto_assign enabled.
	ListAutoAssignByDepartment(ctx context.Context, department string) ([]*Course, error)
}

type DepartmentRepository interface {
	Create(ctx context.Context, dept *Department) error
	Get(ctx context.Context, uuid string) (*Department, error)
	GetByName(ctx context.Context, name string) (*Department, error)
	List(ctx context.Context) ([]*Department, error)
	Update(ctx context.Context, dept *Department) error
	Delete(ctx context.Context, uuid string) error
}

type EnrollmentRepository interface {
	Create(ctx context.Context, e *Enrollment) error
	Exists(ctx context.Context, studentUUID, courseUUID string) (bool, error)
	ListByStudent(ctx context.Context, studentUUID string) ([]*Enrollment, error)
	DeleteByCourse(ctx context.Context, courseUUID string) (int64, error)
}

type DeviceResetRepository interface {
	Create(ctx context.Context, req *DeviceResetRequest) error
	Get(ctx context.Context, requestID string) (*DeviceResetRequest, error)
	// FindPending returns the student's pending request, or
	// ErrResetRequestNotFound.
	FindPending(ctx context.Context, studentUUID string) (*DeviceResetRequest, error)
	// List returns requests oldest first, optionally filtered by status.
	List(ctx context.Context, status string) ([]*DeviceResetRequest, error)
	// Resolve transitions a pending request to approved/rejected. Fails with
	// ErrResetRequestResolved when the request is no longer pending.
	Resolve(ctx context.Context, requestID, status string, by Identity, at time.Time) (*DeviceResetRequest, error)
}
