package pipeline

import (
	"fmt"
	"net/http"

	"github.com/actionprice/auth/internal/auth/service"
	"github.com/actionprice/auth/pkg/authsdk"
	"github.com/actionprice/auth/pkg/httpx"
)

// RefreshStage answers refresh exchanges. Every other request passes
// through.
type RefreshStage struct {
	Sessions *service.SessionService
	Errors   *ErrorTranslator
}

// Handle godoc
//
//	@Summary		Refresh an access token
//	@Description	Exchanges an access token, usually expired, and the current refresh token for a new access token.
//	@Description	The refresh token is replaced when it is close to expiry, otherwise the same value is returned.
//	@Description	access_token may be omitted from the body and sent as "Authorization: Bearer" instead.
//	@Tags			Session
//	@Accept			json
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	true	"Tokens"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"no_access, no_refresh or old_refresh"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Router			/api/user/generate/refreshToken [post].
func (s *RefreshStage) Handle(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	if r.Method != http.MethodPost || r.URL.Path != authsdk.PathRefresh {
		return r, true
	}

	var req authsdk.RefreshRequest
	err := httpx.DecodeBody(r, &req, func(get func(string) string) {
		req.AccessToken = get("access_token")
		req.RefreshToken = get("refresh_token")
	})
	if err != nil {
		s.Errors.Write(w, r, fmt.Errorf("%w: %v", service.ErrInvalidRequest, err))
		return nil, false
	}
	if req.AccessToken == "" {
		req.AccessToken = r.Header.Get("Authorization")
	}
	if req.RefreshToken == "" {
		s.Errors.Write(w, r, service.ErrNoRefresh)
		return nil, false
	}

	pair, err := s.Sessions.Exchange(r.Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		s.Errors.Write(w, r, err)
		return nil, false
	}

	httpx.WriteJSON(w, http.StatusOK, TokenResponse(pair))
	return nil, false
}
