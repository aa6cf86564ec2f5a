package models

import "strings"

// UserRole is the role the backend assigns on login
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleTechnician UserRole = "technician"
	RoleSales      UserRole = "sales"
)

// Roles lists every role the dashboard knows about
var Roles = []UserRole{RoleAdmin, RoleTechnician, RoleSales}

// ParseRole maps a backend role string onto a known role.
func ParseRole(s string) (UserRole, bool) {
	role := UserRole(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if role == known {
			return role, true
		}
	}
	return role, false
}

// Session is the authentication state held for one browser
type Session struct {
	Token    string   `db:"token" json:"token"`
	Role     UserRole `db:"role" json:"role"`
	UserName string   `db:"user_name" json:"userName"`
}

// Authenticated reports whether the session carries a token
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Normalize drops role and name when there is no token.
func (s Session) Normalize() Session {
	if !s.Authenticated() {
		return Session{}
	}
	return s
}

// Initial returns the first letter of the user name, upper-cased.
func (s Session) Initial() string {
	name := strings.TrimSpace(s.UserName)
	if name == "" {
		return ""
	}
	return strings.ToUpper(string([]rune(name)[:1]))
}

// LoginRequest is the body of POST /api/users/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}
