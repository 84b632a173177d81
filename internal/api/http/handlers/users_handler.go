package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jvegav/EcoTrade/internal/api/dto"
	"github.com/jvegav/EcoTrade/internal/service"
	apperrors "github.com/jvegav/EcoTrade/pkg/util"
)

// UsersHandler exposes the user resource family.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(result)
}

// GetByID handles GET /users/:id.
func (h *UsersHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// GetByEmail handles GET /users/email/:email. The response carries the salted
// password hash so direct-mode clients can verify credentials locally.
func (h *UsersHandler) GetByEmail(c *fiber.Ctx) error {
	email := c.Params("email")
	if email == "" {
		return apperrors.NewValidationError("email is required", nil)
	}
	user, err := h.users.GetByEmail(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponseWithHash(user))
}

// Create handles POST /users (direct-mode registration).
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.Register(c.UserContext(), service.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Nationality: req.Nationality,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(user))
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	user, err := h.users.Update(c.UserContext(), id, req.Name, req.Nationality)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "user deleted"})
}

// ExistsByEmail handles GET /users/exists/:email.
func (h *UsersHandler) ExistsByEmail(c *fiber.Ctx) error {
	email := c.Params("email")
	if email == "" {
		return apperrors.NewValidationError("email is required", nil)
	}
	exists, err := h.users.ExistsByEmail(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(exists)
}

// DelegatedRegister handles POST /users/auth/register. The provider has
// already authenticated the caller; this endpoint only syncs the record.
func (h *UsersHandler) DelegatedRegister(c *fiber.Ctx) error {
	var req dto.DelegatedRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, created, err := h.users.SyncDelegated(c.UserContext(), service.DelegatedRegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Nationality: req.Nationality,
		ExternalID:  req.ExternalID,
	})
	if err != nil {
		return err
	}

	resp := dto.NewUserResponse(user)
	if created {
		return c.Status(http.StatusCreated).JSON(dto.AuthResponse{
			Message: "user registered",
			User:    &resp,
			Success: true,
		})
	}
	return c.JSON(dto.AuthResponse{
		Message: "user already exists",
		User:    &resp,
		Success: true,
	})
}

// DelegatedLogin handles POST /users/auth/login. The bearer token was
// validated by the filter; this endpoint resolves the user record.
func (h *UsersHandler) DelegatedLogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return c.Status(http.StatusNotFound).JSON(dto.AuthResponse{
				Message: "user not found",
				Success: false,
			})
		}
		return err
	}

	resp := dto.NewUserResponse(user)
	return c.JSON(dto.AuthResponse{
		Message: "login successful",
		User:    &resp,
		Success: true,
	})
}

func parseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{name: c.Params(name)})
	}
	return id, nil
}
