package domain

import "time"

// Department groups students and courses for auto-enrollment.
type Department struct {
	UUID           string    `bson:"uuid_id" json:"uuid_id"`
	Name           string    `bson:"name" json:"name"`
	SubDepartments []string  `bson:"sub_departments,omitempty" json:"sub_departments,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}
