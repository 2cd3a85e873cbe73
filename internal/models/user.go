package models

import "time"

// User is the persistence shape of a login identity.
type User struct {
	UserID             string     `db:"user_id"`
	Name               string     `db:"name"`
	Email              string     `db:"email"`
	PasswordHash       string     `db:"password_hash"`
	Role               string     `db:"role"`
	IsActive           bool       `db:"is_active"`
	RefreshTokenHash   *string    `db:"refresh_token_hash"`
	RefreshTokenExpiry *time.Time `db:"refresh_token_expiry"`
	AuditFields
}
