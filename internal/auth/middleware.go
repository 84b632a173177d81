package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const principalKey = "auth_principal"

// Principal carries the identity asserted by a validated bearer token.
type Principal struct {
	ExternalID  string
	Email       string
	DisplayName string
}

// BearerFilter extracts and validates an optional bearer token. Requests
// without a token, or with one that fails validation, continue
// unauthenticated; authorization decisions belong to individual handlers.
type BearerFilter struct {
	tokens *TokenManager
	logger *zap.Logger
}

// NewBearerFilter constructs the filter.
func NewBearerFilter(tokens *TokenManager, logger *zap.Logger) *BearerFilter {
	return &BearerFilter{tokens: tokens, logger: logger}
}

// Handle attaches a Principal to the request when a valid token is present.
func (f *BearerFilter) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Next()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return c.Next()
	}

	claims, err := f.tokens.ParseToken(parts[1])
	if err != nil {
		f.logger.Debug("rejected bearer token", zap.Error(err))
		return c.Next()
	}

	principal := &Principal{
		ExternalID: claims.Subject,
		Email:      claims.Email,
	}
	if claims.UserMetadata != nil {
		if name, ok := claims.UserMetadata["name"].(string); ok {
			principal.DisplayName = name
		}
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated identity, if any.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
