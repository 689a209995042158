package http

import (
	"fmt"
	"net/http"

	"github.com/actionprice/auth/internal/auth/pipeline"
	"github.com/actionprice/auth/internal/auth/service"
	"github.com/actionprice/auth/pkg/authsdk"
	"github.com/actionprice/auth/pkg/httpx"
)

type RegisterHandler struct {
	UserService *service.UserService
	Errors      *pipeline.ErrorTranslator
}

// ServeHTTP godoc
//
//	@Summary		Register a user
//	@Description	Creates an account with the USER role. Usernames are 3-32 characters of a-z, A-Z, 0-9, _ or -.
//	@Description	Passwords are 8-128 characters.
//	@Tags			Users
//	@Accept			json
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest		true	"New account"
//	@Success		201		{object}	authsdk.RegisterResponse	"username"
//	@Failure		400		{object}	authsdk.ErrorResponse		"invalid_request with per-field details"
//	@Failure		409		{object}	authsdk.ErrorResponse		"username_taken"
//	@Failure		429		{object}	authsdk.ErrorResponse		"rate_limit_exceeded"
//	@Router			/api/user/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	err := httpx.DecodeBody(r, &req, func(get func(string) string) {
		req.Username = get("username")
		req.Password = get("password")
	})
	if err != nil {
		h.Errors.Write(w, r, fmt.Errorf("%w: %v", service.ErrInvalidRequest, err))
		return
	}

	u, err := h.UserService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.Errors.Write(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{Username: u.Username})
}

type CheckUsernameHandler struct {
	UserService *service.UserService
	Errors      *pipeline.ErrorTranslator
}

// ServeHTTP godoc
//
//	@Summary		Check username availability
//	@Description	Returns 200 when the username is free and 409 when it is taken.
//	@Tags			Users
//	@Accept			json
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		authsdk.UsernameCheckRequest	true	"Username"
//	@Success		200		{object}	authsdk.UsernameCheckResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		409		{object}	authsdk.ErrorResponse	"username_taken"
//	@Router			/api/user/checkForDuplicateUsername [post].
func (h *CheckUsernameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.UsernameCheckRequest
	err := httpx.DecodeBody(r, &req, func(get func(string) string) {
		req.Username = get("username")
	})
	if err != nil {
		h.Errors.Write(w, r, fmt.Errorf("%w: %v", service.ErrInvalidRequest, err))
		return
	}

	ok, err := h.UserService.UsernameAvailable(r.Context(), req.Username)
	if err != nil {
		h.Errors.Write(w, r, err)
		return
	}
	if !ok {
		h.Errors.Write(w, r, service.ErrUsernameTaken)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UsernameCheckResponse{Username: req.Username, Available: true})
}
