package domain

import "time"

// User is the backend user record. The numeric ID is the internal identifier
// that product ownership queries are keyed by; ExternalID carries the auth
// provider's identifier for accounts created through delegated registration.
type User struct {
	ID           int64
	Name         string
	Email        string
	Nationality  string
	PasswordHash string
	ExternalID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
