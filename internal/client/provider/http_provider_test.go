package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *HTTPProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPProvider(server.URL, "anon-key", 5*time.Second, zap.NewNop())
}

func TestSignInParsesSessionAndMetadata(t *testing.T) {
	var gotPath, gotAPIKey string
	var gotBody map[string]string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotAPIKey = r.Header.Get("apikey")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"access_token": "token-abc",
			"token_type": "bearer",
			"expires_in": 3600,
			"user": {
				"id": "ext-1",
				"email": "marie@example.com",
				"user_metadata": {"name": "Marie"}
			}
		}`))
	})

	sess, err := p.SignInWithPassword(context.Background(), "marie@example.com", "password123")

	require.NoError(t, err)
	assert.Equal(t, "/token?grant_type=password", gotPath)
	assert.Equal(t, "anon-key", gotAPIKey)
	assert.Equal(t, "marie@example.com", gotBody["email"])
	assert.Equal(t, "token-abc", sess.AccessToken)
	assert.Equal(t, "ext-1", sess.User.ID)
	assert.Equal(t, "Marie", sess.User.UserMetadata["name"])
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)
}

func TestSignUpSendsMetadataUnderData(t *testing.T) {
	var gotBody map[string]any
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/signup", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"access_token":"t","token_type":"bearer","user":{"id":"ext-2","email":"paul@example.com"}}`))
	})

	_, err := p.SignUp(context.Background(), "paul@example.com", "password123", map[string]any{"name": "Paul"})

	require.NoError(t, err)
	data, ok := gotBody["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Paul", data["name"])
}

func TestRejectionMessageKeptVerbatim(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"msg":"Invalid login credentials"}`))
	})

	_, err := p.SignInWithPassword(context.Background(), "marie@example.com", "nope")

	var provErr *Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusBadRequest, provErr.Status)
	assert.Equal(t, "Invalid login credentials", provErr.Error())
}

func TestErrorDescriptionFallback(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"Email not confirmed"}`))
	})

	_, err := p.SignInWithPassword(context.Background(), "marie@example.com", "password123")

	assert.EqualError(t, err, "Email not confirmed")
}

func TestCurrentSessionRemembersLastSignIn(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"token-abc","token_type":"bearer","user":{"id":"ext-1","email":"marie@example.com"}}`))
	})

	before, err := p.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, before)

	_, err = p.SignInWithPassword(context.Background(), "marie@example.com", "password123")
	require.NoError(t, err)

	after, err := p.CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, "token-abc", after.AccessToken)
}
