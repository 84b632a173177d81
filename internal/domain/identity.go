package domain

import "time"

// DefaultDisplayName is used when a source shape carries no display name.
// The policy lives here, at the normalization boundary, and nowhere else.
const DefaultDisplayName = "Utilisateur"

// Identity is the client-held representation of the authenticated user.
// Two historical source shapes exist (the auth provider nests the display
// name under a metadata map, the backend returns flat fields); both are
// normalized into this one shape before anything downstream sees them.
type Identity struct {
	ExternalID  *string `json:"external_id,omitempty"`
	InternalID  *int64  `json:"internal_id,omitempty"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
}

// Credential is the opaque bearer token proving an Identity to the backend.
// It exists only for delegated-mode sessions.
type Credential struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NewIdentityFromUser normalizes the backend's flat user shape.
func NewIdentityFromUser(u *User) Identity {
	name := u.Name
	if name == "" {
		name = DefaultDisplayName
	}
	id := u.ID
	return Identity{
		InternalID:  &id,
		ExternalID:  u.ExternalID,
		DisplayName: name,
		Email:       u.Email,
	}
}

// NewIdentityFromProvider normalizes the auth provider's nested shape, where
// the display name lives in a free-form metadata map that may lack the key
// entirely.
func NewIdentityFromProvider(externalID, email string, metadata map[string]any) Identity {
	name := DefaultDisplayName
	if metadata != nil {
		if v, ok := metadata["name"].(string); ok && v != "" {
			name = v
		}
	}
	var ext *string
	if externalID != "" {
		ext = &externalID
	}
	return Identity{
		ExternalID:  ext,
		DisplayName: name,
		Email:       email,
	}
}
