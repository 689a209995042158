package authsdk

// TokenTypeBearer is the only token type the service issues.
const TokenTypeBearer = "Bearer"

// LoginRequest is the body of POST /api/user/login. Form encoding with the
// same field names is accepted too.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /api/user/generate/refreshToken. When
// AccessToken is empty the Authorization header is used instead.
type RefreshRequest struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned by login, refresh and reissue. Reissue leaves
// RefreshToken empty.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int    `json:"expires_in"`
	Username  string `json:"username"`
}

// RegisterRequest is the body of POST /api/user/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Username string `json:"username"`
}

// UsernameCheckRequest is the body of POST /api/user/checkForDuplicateUsername.
type UsernameCheckRequest struct {
	Username string `json:"username"`
}

type UsernameCheckResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

type LogoutResponse struct {
	Status string `json:"status"`
}

// MeResponse describes the caller as the service sees them.
type MeResponse struct {
	Username         string   `json:"username"`
	Roles            []string `json:"roles"`
	AuthenticatedVia string   `json:"authenticated_via"`
}

// ErrorResponse is the wire form of APIError, documented for swagger.
type ErrorResponse struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description"`
	Details          map[string]string `json:"details,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks is only present on /readyz.
type HealthChecks struct {
	Database        string `json:"database"`
	CredentialStore string `json:"credential_store,omitempty"`
}
