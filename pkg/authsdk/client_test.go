package authsdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/actionprice/auth/pkg/authsdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authsdk.ErrOldRefresh.WriteError(w)
	}))
	defer srv.Close()

	_, err := authsdk.NewClient(srv.URL).Refresh(context.Background(), "a", "r")
	require.ErrorIs(t, err, authsdk.ErrOldRefresh)

	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.NotErrorIs(t, err, authsdk.ErrNoRefresh)
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := authsdk.NewClient(srv.URL).GetLiveness(context.Background())
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, authsdk.CodeServerError, apiErr.Code)
}

func TestClientSendsBearerAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case authsdk.PathMe:
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(authsdk.MeResponse{Username: "alice", Roles: []string{"USER"}})
		case authsdk.PathLogin:
			var req authsdk.LoginRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, authsdk.LoginRequest{Username: "alice", Password: "pw"}, req)
			_ = json.NewEncoder(w).Encode(authsdk.TokenResponse{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"})
		case authsdk.PathCheckUsername:
			authsdk.ErrUsernameTaken.WriteError(w)
		}
	}))
	defer srv.Close()

	c := authsdk.NewClient(srv.URL + "/")
	ctx := context.Background()

	me, err := c.Me(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, "alice", me.Username)

	tokens, err := c.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	require.Equal(t, "r", tokens.RefreshToken)

	ok, err := c.UsernameAvailable(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRegisterRequestValidate(t *testing.T) {
	require.Nil(t, authsdk.RegisterRequest{Username: "alice_01", Password: "password1"}.Validate())

	errs := authsdk.RegisterRequest{Username: "a!", Password: "short"}.Validate()
	require.Equal(t, "must be 3-32 characters", errs["username"])
	require.Equal(t, "too short (min 8)", errs["password"])

	errs = authsdk.RegisterRequest{Username: "bad name", Password: string(make([]byte, 129))}.Validate()
	require.Equal(t, "must only contain a-z, A-Z, 0-9, _ or -", errs["username"])
	require.Equal(t, "too long (max 128)", errs["password"])

	errs = authsdk.RegisterRequest{}.Validate()
	require.Equal(t, "required", errs["username"])
	require.Equal(t, "required", errs["password"])
}
