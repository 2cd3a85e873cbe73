package domain

// Caller is the authenticated identity threaded through every service
// operation. Services never reach into ambient request state; handlers
// resolve the caller once from the token and pass it down explicitly.
type Caller struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
