package pipeline

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/actionprice/auth/internal/auth/domain"
	"github.com/actionprice/auth/internal/auth/service"
	"github.com/actionprice/auth/internal/auth/store"
	"github.com/actionprice/auth/pkg/authsdk"
)

// AccessCheckStage resolves the bearer token on ordinary requests. It never
// rejects; it only records who the caller is or why their token failed.
type AccessCheckStage struct {
	Access *service.AccessTokenAuthority
	Users  service.UserDirectory
}

func (s *AccessCheckStage) Handle(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	if r.URL.Path == authsdk.PathLogin || r.URL.Path == authsdk.PathRefresh {
		return r, true
	}

	header := r.Header.Get("Authorization")
	// Browser clients without a session send "Bearer undefined".
	if !strings.HasPrefix(header, service.BearerPrefix) ||
		strings.TrimSpace(strings.TrimPrefix(header, service.BearerPrefix)) == "undefined" {
		return r, true
	}

	ctx := r.Context()
	username, err := s.Access.ValidateStrict(header)
	if err != nil {
		return r.WithContext(WithAuthError(ctx, err)), true
	}

	user, err := s.Users.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		err = &service.AuthError{Kind: service.KindUnknownPrincipal, Err: err}
		return r.WithContext(WithAuthError(ctx, err)), true
	case err != nil:
		return r.WithContext(WithAuthError(ctx, fmt.Errorf("lookup user: %w", err))), true
	}

	return r.WithContext(WithAuth(ctx, domain.AuthContext{
		Username: user.Username,
		Roles:    user.Roles,
		Via:      domain.ViaAccessToken,
	})), true
}
