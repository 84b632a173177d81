package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HTTPProvider talks to a GoTrue-style auth service over REST. It remembers
// the session of the last successful sign-in for the lifetime of the process.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger

	mu      sync.Mutex
	current *Session
}

// NewHTTPProvider constructs a provider client.
func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type sessionResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        User   `json:"user"`
}

type errorResponse struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error"`
}

// SignInWithPassword implements the password grant.
func (p *HTTPProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	return p.exchange(ctx, "/token?grant_type=password", body)
}

// SignUp registers a new account with optional profile metadata.
func (p *HTTPProvider) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Session, error) {
	body := map[string]any{"email": email, "password": password}
	if len(metadata) > 0 {
		body["data"] = metadata
	}
	return p.exchange(ctx, "/signup", body)
}

// CurrentSession returns the live session, if any.
func (p *HTTPProvider) CurrentSession(_ context.Context) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil, nil
	}
	session := *p.current
	return &session, nil
}

func (p *HTTPProvider) exchange(ctx context.Context, path string, body any) (*Session, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, decodeProviderError(resp.StatusCode, raw)
	}

	var decoded sessionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}

	session := &Session{
		AccessToken: decoded.AccessToken,
		TokenType:   decoded.TokenType,
		User:        decoded.User,
	}
	if decoded.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(decoded.ExpiresIn) * time.Second)
	}

	p.mu.Lock()
	p.current = session
	p.mu.Unlock()

	p.logger.Debug("provider session established", zap.String("user_id", session.User.ID))
	return session, nil
}

// decodeProviderError keeps the provider's own wording; the UI shows it
// verbatim.
func decodeProviderError(status int, raw []byte) error {
	var decoded errorResponse
	_ = json.Unmarshal(raw, &decoded)

	message := decoded.Message
	if message == "" {
		message = decoded.ErrorDescription
	}
	if message == "" {
		message = decoded.ErrorCode
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{Status: status, Message: message}
}
