package domain

import "time"

// User is an account in one of the role collections (admins, students,
// teachers). The role-specific fields are sparse; only the ones belonging to
// the user's role are set.
type User struct {
	UUID         string    `bson:"uuid_id" json:"uuid_id"`
	Email        string    `bson:"email_id" json:"email_id"`
	PasswordHash string    `bson:"hashed_password" json:"-"`
	Name         string    `bson:"name,omitempty" json:"name,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`

	// Admin fields.
	CollegeName       string `bson:"college_name,omitempty" json:"college_name,omitempty"`
	StudentAllowCount int    `bson:"total_student_allow_count,omitempty" json:"total_student_allow_count,omitempty"`

	// Student fields.
	Department    string `bson:"department,omitempty" json:"department,omitempty"`
	SubDepartment string `bson:"sub_department,omitempty" json:"sub_department,omitempty"`
	AdminUUID     string `bson:"admin_uuid,omitempty" json:"admin_uuid,omitempty"`

	// Teacher fields.
	Bio string `bson:"bio,omitempty" json:"bio,omitempty"`

	// Role is derived from the collection the user was loaded from; it is not
	// persisted on the document.
	Role Role `bson:"-" json:"role,omitempty"`
}
