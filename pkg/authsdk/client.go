package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Service paths.
const (
	PathLogin            = "/api/user/login"
	PathRefresh          = "/api/user/generate/refreshToken"
	PathLogout           = "/api/user/logout"
	PathRegister         = "/api/user/register"
	PathCheckUsername    = "/api/user/checkForDuplicateUsername"
	PathReissue          = "/api/user/reissue"
	PathMe               = "/api/user/me"
	PathLivez            = "/livez"
	PathReadyz           = "/readyz"
	PathMetrics          = "/metrics"
	PathSwagger          = "/swagger/"
	bearerHeaderTemplate = "Bearer "
)

// Client talks to the authentication service. It keeps no token state; the
// caller decides where tokens live.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Login exchanges a username and password for a token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.call(ctx, http.MethodPost, PathLogin, "", LoginRequest{Username: username, Password: password}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a possibly expired access token and the refresh token for
// a new pair.
func (c *Client) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	req := RefreshRequest{AccessToken: accessToken, RefreshToken: refreshToken}
	if err := c.call(ctx, http.MethodPost, PathRefresh, "", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reissue mints a new access token while the server-side session is alive.
func (c *Client) Reissue(ctx context.Context, accessToken string) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.call(ctx, http.MethodPost, PathReissue, accessToken, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the caller's refresh token.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	var out LogoutResponse
	return c.call(ctx, http.MethodPost, PathLogout, accessToken, nil, &out, http.StatusOK)
}

func (c *Client) Register(ctx context.Context, username, password string) (*RegisterResponse, error) {
	var out RegisterResponse
	req := RegisterRequest{Username: username, Password: password}
	if err := c.call(ctx, http.MethodPost, PathRegister, "", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// UsernameAvailable reports whether username can still be registered.
func (c *Client) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	var out UsernameCheckResponse
	err := c.call(ctx, http.MethodPost, PathCheckUsername, "", UsernameCheckRequest{Username: username}, &out, http.StatusOK)
	switch {
	case err == nil:
		return true, nil
	case isCode(err, CodeUsernameTaken):
		return false, nil
	default:
		return false, err
	}
}

func (c *Client) Me(ctx context.Context, accessToken string) (*MeResponse, error) {
	var out MeResponse
	if err := c.call(ctx, http.MethodGet, PathMe, accessToken, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, http.MethodGet, PathLivez, "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness checks if the service and its storage are ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, http.MethodGet, PathReadyz, "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
