// Package provider implements the client for the external auth service used
// in delegated mode.
package provider

import (
	"context"
	"time"
)

// User is the provider's user shape. The display name, when set at signup,
// lives inside the free-form metadata map.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// Session is the provider's session object: the bearer credential plus the
// user it was issued for.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"-"`
	User        User      `json:"user"`
}

// Provider is the contract the session controller depends on.
type Provider interface {
	// SignInWithPassword exchanges credentials for a session.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	// SignUp registers a new account. Metadata carries profile fields such
	// as the display name.
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Session, error)
	// CurrentSession returns the session of the last successful sign-in, or
	// nil when none exists.
	CurrentSession(ctx context.Context) (*Session, error)
}

// Error is a provider rejection. Its message is surfaced to the user
// verbatim.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
