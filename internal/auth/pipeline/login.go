package pipeline

import (
	"fmt"
	"net/http"

	"github.com/actionprice/auth/internal/auth/service"
	"github.com/actionprice/auth/pkg/authsdk"
	"github.com/actionprice/auth/pkg/httpx"
)

// LoginStage answers password logins. Every other request passes through.
type LoginStage struct {
	Sessions *service.SessionService
	Errors   *ErrorTranslator
}

// Handle godoc
//
//	@Summary		Log in
//	@Description	Exchanges a username and password for an access token and a refresh token.
//	@Description	Any refresh token issued earlier for the same user stops working.
//	@Tags			Session
//	@Accept			json
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"bad_credentials"
//	@Failure		403		{object}	authsdk.ErrorResponse	"already_authenticated"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Router			/api/user/login [post].
func (s *LoginStage) Handle(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	if r.Method != http.MethodPost || r.URL.Path != authsdk.PathLogin {
		return r, true
	}

	if header := r.Header.Get("Authorization"); header != "" {
		if _, err := s.Sessions.Access.ValidateStrict(header); err == nil {
			s.Errors.Write(w, r, service.ErrAlreadyAuthenticated)
			return nil, false
		}
	}

	var req authsdk.LoginRequest
	err := httpx.DecodeBody(r, &req, func(get func(string) string) {
		req.Username = get("username")
		req.Password = get("password")
	})
	if err != nil {
		s.Errors.Write(w, r, fmt.Errorf("%w: %v", service.ErrInvalidRequest, err))
		return nil, false
	}
	if fields := missing(map[string]string{"username": req.Username, "password": req.Password}); fields != nil {
		s.Errors.Write(w, r, &service.ValidationError{Fields: fields})
		return nil, false
	}

	pair, _, err := s.Sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.Errors.Write(w, r, err)
		return nil, false
	}

	httpx.WriteJSON(w, http.StatusOK, TokenResponse(pair))
	return nil, false
}

func missing(fields map[string]string) map[string]string {
	var out map[string]string
	for name, v := range fields {
		if v == "" {
			if out == nil {
				out = make(map[string]string)
			}
			out[name] = "required"
		}
	}
	return out
}
