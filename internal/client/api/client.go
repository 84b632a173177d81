// Package api implements the HTTP client for the EcoTrade REST contract.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/jvegav/EcoTrade/internal/api/dto"
	"github.com/jvegav/EcoTrade/internal/domain"
	apperrors "github.com/jvegav/EcoTrade/pkg/util"
)

// CredentialSource supplies the current bearer credential, if any. A nil
// credential or a source failure never fails the request; the call simply
// proceeds unauthenticated and authorization errors surface from the
// response.
type CredentialSource interface {
	Session(ctx context.Context) (*domain.Credential, error)
}

// Client issues requests against the backend. It performs no retries;
// failures propagate to the caller unchanged.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
	logger  *zap.Logger
}

// New constructs a client for the given base URL (e.g. http://host:8080/api).
func New(baseURL string, timeout time.Duration, creds CredentialSource, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		creds:   creds,
		logger:  logger,
	}
}

// AuthResult is the decoded envelope of the delegated auth endpoints.
type AuthResult struct {
	Message string
	User    *domain.User
	Success bool
}

// ListUsers fetches all users.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var resp []dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users", nil, &resp); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(resp))
	for i := range resp {
		users = append(users, userFromResponse(&resp[i]))
	}
	return users, nil
}

// GetUser fetches one user by internal id.
func (c *Client) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var resp dto.UserResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	user := userFromResponse(&resp)
	return &user, nil
}

// GetUserByEmail resolves an email to its user record, including the salted
// password hash used for direct-mode verification.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var resp dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users/email/"+url.PathEscape(email), nil, &resp); err != nil {
		return nil, err
	}
	user := userFromResponse(&resp)
	return &user, nil
}

// CreateUser performs a direct-mode registration.
func (c *Client) CreateUser(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	var resp dto.UserResponse
	if err := c.do(ctx, http.MethodPost, "/users", req, &resp); err != nil {
		return nil, err
	}
	user := userFromResponse(&resp)
	return &user, nil
}

// UpdateUser updates name and nationality.
func (c *Client) UpdateUser(ctx context.Context, id int64, req dto.RegisterRequest) (*domain.User, error) {
	var resp dto.UserResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), req, &resp); err != nil {
		return nil, err
	}
	user := userFromResponse(&resp)
	return &user, nil
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}

// CheckEmailExists answers the availability check.
func (c *Client) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := c.do(ctx, http.MethodGet, "/users/exists/"+url.PathEscape(email), nil, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// DelegatedRegister syncs a provider-registered account into the backend.
func (c *Client) DelegatedRegister(ctx context.Context, req dto.DelegatedRegisterRequest) (*AuthResult, error) {
	var resp dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/users/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return authResultFromResponse(&resp), nil
}

// DelegatedLogin resolves the provider-authenticated caller's user record.
func (c *Client) DelegatedLogin(ctx context.Context, email string) (*AuthResult, error) {
	var resp dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/users/auth/login", dto.LoginRequest{Email: email}, &resp); err != nil {
		return nil, err
	}
	return authResultFromResponse(&resp), nil
}

// ListProducts fetches the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var resp []dto.ProductResponse
	if err := c.do(ctx, http.MethodGet, "/products", nil, &resp); err != nil {
		return nil, err
	}
	return productsFromResponses(resp), nil
}

// GetProduct fetches one product.
func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var resp dto.ProductResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	product := productFromResponse(&resp)
	return &product, nil
}

// ListProductsByOwner fetches the catalog scoped to one owner.
func (c *Client) ListProductsByOwner(ctx context.Context, ownerID int64) ([]domain.Product, error) {
	var resp []dto.ProductResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/user/%d", ownerID), nil, &resp); err != nil {
		return nil, err
	}
	return productsFromResponses(resp), nil
}

// CreateProduct publishes a product owned by the given user.
func (c *Client) CreateProduct(ctx context.Context, ownerID int64, req dto.ProductRequest) (*domain.Product, error) {
	var resp dto.ProductResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/products/user/%d", ownerID), req, &resp); err != nil {
		return nil, err
	}
	product := productFromResponse(&resp)
	return &product, nil
}

// UpdateProduct updates a product.
func (c *Client) UpdateProduct(ctx context.Context, id int64, req dto.ProductRequest) (*domain.Product, error) {
	var resp dto.ProductResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), req, &resp); err != nil {
		return nil, err
	}
	product := productFromResponse(&resp)
	return &product, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.attachCredential(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewNetworkFailure(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewNetworkFailure(err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// attachCredential asks the source for a session before every request. A
// missing or failing source downgrades the call to unauthenticated.
func (c *Client) attachCredential(ctx context.Context, req *http.Request) {
	if c.creds == nil {
		return
	}
	cred, err := c.creds.Session(ctx)
	if err != nil {
		c.logger.Debug("credential retrieval failed; proceeding unauthenticated", zap.Error(err))
		return
	}
	if cred == nil || cred.AccessToken == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
}

// decodeError maps an error response onto the DomainError taxonomy,
// preserving the backend-provided message when one is present.
func decodeError(status int, raw []byte) error {
	var envelope struct {
		Error *struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &envelope)

	code := "INTERNAL_ERROR"
	message := http.StatusText(status)
	var details map[string]any
	switch {
	case envelope.Error != nil:
		code = envelope.Error.Code
		message = envelope.Error.Message
		details = envelope.Error.Details
	case envelope.Message != "":
		message = envelope.Message
	}
	if code == "INTERNAL_ERROR" && status == http.StatusNotFound {
		code = "NOT_FOUND"
	}
	return apperrors.NewDomainError(code, message, status, details)
}

func userFromResponse(resp *dto.UserResponse) domain.User {
	return domain.User{
		ID:           resp.ID,
		Name:         resp.Name,
		Email:        resp.Email,
		Nationality:  resp.Nationality,
		PasswordHash: resp.PasswordHash,
		ExternalID:   resp.ExternalID,
		CreatedAt:    resp.CreatedAt,
	}
}

func authResultFromResponse(resp *dto.AuthResponse) *AuthResult {
	result := &AuthResult{Message: resp.Message, Success: resp.Success}
	if resp.User != nil {
		user := userFromResponse(resp.User)
		result.User = &user
	}
	return result
}

func productFromResponse(resp *dto.ProductResponse) domain.Product {
	return domain.Product{
		ID:          resp.ID,
		Name:        resp.Name,
		Price:       resp.Price,
		Description: resp.Description,
		UseTime:     resp.UseTime,
		OwnerID:     resp.OwnerID,
		CreatedAt:   resp.CreatedAt,
	}
}

func productsFromResponses(resp []dto.ProductResponse) []domain.Product {
	products := make([]domain.Product, 0, len(resp))
	for i := range resp {
		products = append(products, productFromResponse(&resp[i]))
	}
	return products
}
