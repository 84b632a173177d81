package dto

import (
	"time"

	"github.com/jvegav/EcoTrade/internal/domain"
)

// RegisterRequest is the direct-mode registration payload.
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Nationality string `json:"nationality"`
}

// DelegatedRegisterRequest syncs a provider-registered account.
type DelegatedRegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Nationality string `json:"nationality"`
	ExternalID  string `json:"externalId"`
}

// LoginRequest is the delegated-mode login passthrough payload. The bearer
// token, not this body, is what authenticates the call.
type LoginRequest struct {
	Email string `json:"email"`
}

// UserResponse mirrors the backend user shape. PasswordHash is only populated
// by the email lookup, where direct-mode clients verify credentials.
type UserResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Nationality  string    `json:"nationality"`
	ExternalID   *string   `json:"externalId,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AuthResponse is the envelope of the delegated auth passthrough endpoints.
type AuthResponse struct {
	Message string        `json:"message"`
	User    *UserResponse `json:"user,omitempty"`
	Success bool          `json:"success"`
}

// NewUserResponse maps a domain user without credential material.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Nationality: user.Nationality,
		ExternalID:  user.ExternalID,
		CreatedAt:   user.CreatedAt,
	}
}

// NewUserResponseWithHash maps a domain user including the salted password
// hash for direct-mode verification.
func NewUserResponseWithHash(user *domain.User) UserResponse {
	resp := NewUserResponse(user)
	resp.PasswordHash = user.PasswordHash
	return resp
}
