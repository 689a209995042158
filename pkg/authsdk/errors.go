package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/actionprice/auth/pkg/httpx"
)

// Error codes carried in the "error" field of every error body.
const (
	CodeTokenExpired         = "token_expired"
	CodeTokenMalformed       = "token_malformed"
	CodeTokenBadSignature    = "token_bad_signature"
	CodeTokenUnsupported     = "token_unsupported"
	CodeTokenMissing         = "token_missing"
	CodeUnknownPrincipal     = "unknown_principal"
	CodeNoAccess             = "no_access"
	CodeNoRefresh            = "no_refresh"
	CodeOldRefresh           = "old_refresh"
	CodeBadCredentials       = "bad_credentials"
	CodeAlreadyAuthenticated = "already_authenticated"
	CodeAccessDenied         = "access_denied"
	CodeInvalidRequest       = "invalid_request"
	CodeUsernameTaken        = "username_taken"
	CodeRateLimitExceeded    = "rate_limit_exceeded"
	CodeServerError          = "server_error"
)

// APIError is an error response. The server writes it and the client
// returns it.
type APIError struct {
	StatusCode  int               `json:"-"`
	Code        string            `json:"error"`
	Description string            `json:"error_description"`
	Details     map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on Code, so a decoded response compares equal to the
// predefined error with the same code.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WithDescription returns a copy of e with a different description.
func (e *APIError) WithDescription(desc string) *APIError {
	c := *e
	c.Description = desc
	return &c
}

// WriteError writes e as a JSON body with caching disabled.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

func newAPIError(status int, code, desc string) *APIError {
	return &APIError{StatusCode: status, Code: code, Description: desc}
}

var (
	ErrTokenExpired      = newAPIError(http.StatusUnauthorized, CodeTokenExpired, "the access token has expired")
	ErrTokenMalformed    = newAPIError(http.StatusUnauthorized, CodeTokenMalformed, "the access token is malformed")
	ErrTokenBadSignature = newAPIError(http.StatusUnauthorized, CodeTokenBadSignature, "the access token signature is invalid")
	ErrTokenUnsupported  = newAPIError(http.StatusUnauthorized, CodeTokenUnsupported, "the access token is not supported")
	ErrTokenMissing      = newAPIError(http.StatusUnauthorized, CodeTokenMissing, "a bearer token is required")
	ErrUnknownPrincipal  = newAPIError(http.StatusUnauthorized, CodeUnknownPrincipal, "the token subject does not exist")
	ErrNoAccess          = newAPIError(http.StatusUnauthorized, CodeNoAccess, "the access token cannot be used for refresh")
	ErrNoRefresh         = newAPIError(http.StatusUnauthorized, CodeNoRefresh, "no valid refresh token, log in again")
	ErrOldRefresh        = newAPIError(http.StatusUnauthorized, CodeOldRefresh, "the refresh token has expired, log in again")
	ErrBadCredentials    = newAPIError(http.StatusUnauthorized, CodeBadCredentials, "invalid username or password")

	ErrAlreadyAuthenticated = newAPIError(http.StatusForbidden, CodeAlreadyAuthenticated, "already logged in")
	ErrAccessDenied         = newAPIError(http.StatusForbidden, CodeAccessDenied, "access denied")

	ErrInvalidRequest    = newAPIError(http.StatusBadRequest, CodeInvalidRequest, "the request is malformed or missing required parameters")
	ErrUsernameTaken     = newAPIError(http.StatusConflict, CodeUsernameTaken, "the username is already taken")
	ErrRateLimitExceeded = newAPIError(http.StatusTooManyRequests, CodeRateLimitExceeded, "too many requests")
	ErrServerError       = newAPIError(http.StatusInternalServerError, CodeServerError, "internal server error")
)

func parseErrorResponse(resp *http.Response, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        CodeServerError,
		Description: fmt.Sprintf("unexpected status %d", resp.StatusCode),
	}
}
