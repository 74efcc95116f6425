package model

import "time"

// Role is the authorization attribute of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole returns the role for s, defaulting to RoleUser.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// User is an authenticated identity.
type User struct {
	ID        string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// IsAdmin reports whether the user may use the admin console.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// Session binds a token to a user until it expires.
type Session struct {
	Token   string
	UserID  string
	Expires time.Time
}
