package domain

import "time"

// Session represents one authenticated device/login instance. Stored for the
// lifetime of the account; revocation is logical, the record is never deleted.
type Session struct {
	SessionID  string    `bson:"_id" json:"session_id"`
	UserUUID   string    `bson:"user_uuid" json:"-"`
	Role       Role      `bson:"role" json:"-"`
	DeviceName string    `bson:"device_name,omitempty" json:"device_name,omitempty"`
	UserAgent  string    `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	IPAddress  string    `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	LastUsedAt time.Time `bson:"last_used_at" json:"last_used_at"`
	Revoked    bool      `bson:"revoked" json:"-"`
}

// Identity is what a validated session resolves to. It carries everything the
// authorization layer needs, so request handling does not re-join the user
// collections.
type Identity struct {
	UserUUID  string
	Role      Role
	Email     string
	SessionID string
}
