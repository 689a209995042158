package http

import (
	"net/http"

	"github.com/actionprice/auth/internal/auth/pipeline"
	"github.com/actionprice/auth/internal/auth/service"
	"github.com/actionprice/auth/pkg/authsdk"
	"github.com/actionprice/auth/pkg/httpx"
)

type LogoutHandler struct {
	Sessions *service.SessionService
	Errors   *pipeline.ErrorTranslator
}

// ServeHTTP godoc
//
//	@Summary		Log out
//	@Description	Removes the caller's refresh token. Access tokens already issued remain valid until they expire.
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.LogoutResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/api/user/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a, _ := pipeline.AuthFromContext(r.Context())
	if err := h.Sessions.Logout(r.Context(), a.Username); err != nil {
		h.Errors.Write(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.LogoutResponse{Status: "logged_out"})
}

type ReissueHandler struct {
	Sessions *service.SessionService
	Errors   *pipeline.ErrorTranslator
}

// ServeHTTP godoc
//
//	@Summary		Reissue an access token
//	@Description	Returns a new access token while the caller still holds a live refresh token. No refresh token is returned.
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TokenResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid access token or no_refresh"
//	@Router			/api/user/reissue [post].
func (h *ReissueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a, _ := pipeline.AuthFromContext(r.Context())
	pair, err := h.Sessions.Reissue(r.Context(), a.Username)
	if err != nil {
		h.Errors.Write(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pipeline.TokenResponse(pair))
}

// MeHandler godoc
//
//	@Summary		Describe the caller
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MeResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/api/user/me [get].
func MeHandler(w http.ResponseWriter, r *http.Request) {
	a, _ := pipeline.AuthFromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, authsdk.MeResponse{
		Username:         a.Username,
		Roles:            a.Roles,
		AuthenticatedVia: string(a.Via),
	})
}
