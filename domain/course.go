package domain

import "time"

// Course is a unit of teachable content, taggable with departments for
// automatic enrollment.
type Course struct {
	UUID        string    `bson:"uuid_id" json:"uuid_id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	TeacherUUID string    `bson:"teacher_uuid,omitempty" json:"teacher_uuid,omitempty"`
	Departments []string  `bson:"departments,omitempty" json:"departments,omitempty"`
	AutoAssign  bool      `bson:"auto_assign" json:"auto_assign"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// EnrollmentStatus values for Enrollment.Status.
const (
	EnrollmentActive   = "active"
	EnrollmentInactive = "inactive"
)

// Enrollment links a student to a course. AssignedByRole is "system" for
// department auto-assignment.
type Enrollment struct {
	UUID           string    `bson:"uuid_id" json:"uuid_id"`
	StudentUUID    string    `bson:"student_uuid" json:"student_uuid"`
	CourseUUID     string    `bson:"course_uuid" json:"course_uuid"`
	AssignedByRole string    `bson:"assigned_by_role" json:"assigned_by_role"`
	AssignedByUUID string    `bson:"assigned_by_uuid" json:"assigned_by_uuid"`
	AssignedAt     time.Time `bson:"assigned_at" json:"assigned_at"`
	Status         string    `bson:"status" json:"status"`
}
