package domain

import "time"

// Device reset request states. A request is immutable once resolved.
const (
	ResetPending  = "pending"
	ResetApproved = "approved"
	ResetRejected = "rejected"
)

// DeviceResetRequest is a student's ask to have all of their device sessions
// cleared by an admin (e.g. after losing access to every enrolled device).
// Approval revokes every active session for the student.
type DeviceResetRequest struct {
	RequestID      string     `bson:"_id" json:"request_id"`
	StudentUUID    string     `bson:"student_uuid" json:"student_uuid"`
	Status         string     `bson:"status" json:"status"`
	Reason         string     `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	ResolvedAt     *time.Time `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	ResolvedByUUID string     `bson:"resolved_by_uuid,omitempty" json:"resolved_by_uuid,omitempty"`
	ResolvedByRole Role       `bson:"resolved_by_role,omitempty" json:"resolved_by_role,omitempty"`
}
