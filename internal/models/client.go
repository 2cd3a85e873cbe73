package models

// Client is the persistence shape of an account holder.
type Client struct {
	ClientID    string     `db:"client_id"`
	Name        string     `db:"name"`
	Email       string     `db:"email"`
	Phone       string     `db:"phone"`
	Address     string     `db:"address"`
	IsActive    bool       `db:"is_active"`
	AuditFields
}
