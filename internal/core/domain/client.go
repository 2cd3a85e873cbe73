package domain

// Client represents an account holder. A client may own several accounts;
// the login identity lives in User and is matched to the client by email.
type Client struct {
	ClientID    string     `json:"clientID"`
	Name        string     `json:"name"`
	Email       string     `json:"email"` // unique
	Phone       string     `json:"phone"` // unique, international format
	Address     string     `json:"address"`
	IsActive    bool       `json:"isActive"`
	AuditFields
}
