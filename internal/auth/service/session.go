package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/actionprice/auth/internal/auth/domain"
	"github.com/actionprice/auth/internal/auth/metrics"
	"github.com/actionprice/auth/internal/auth/store"
	"github.com/actionprice/auth/pkg/cryptox"
	"github.com/actionprice/auth/pkg/slogx"
)

// UserDirectory resolves usernames to accounts. It returns store.ErrNotFound
// for unknown users.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (domain.User, error)
}

// passwordUpgrader is implemented by directories that can replace a legacy
// password hash after a successful login.
type passwordUpgrader interface {
	UpgradePasswordHash(ctx context.Context, username, password string) error
}

// SessionService implements the login, refresh, reissue and logout flows on
// top of the two token authorities.
type SessionService struct {
	Users   UserDirectory
	Access  *AccessTokenAuthority
	Refresh *RefreshTokenAuthority
	Metrics *metrics.Metrics
}

// Login checks a password and starts a new session. Any previous refresh
// record for the user is replaced.
func (s *SessionService) Login(
	ctx context.Context,
	username, password string,
) (domain.TokenPair, domain.AuthContext, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Users.FindByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		s.Metrics.Login("unknown_user")
		return domain.TokenPair{}, domain.AuthContext{}, authError(KindBadCredentials, err)
	}
	if err != nil {
		s.Metrics.Login("error")
		return domain.TokenPair{}, domain.AuthContext{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Error("stored password hash unusable", "username", username, "err", err)
		}
		s.Metrics.Login("bad_password")
		return domain.TokenPair{}, domain.AuthContext{}, authError(KindBadCredentials, err)
	}

	if cryptox.NeedsRehash(user.PasswordHash) {
		if up, ok := s.Users.(passwordUpgrader); ok {
			if err := up.UpgradePasswordHash(ctx, username, password); err != nil {
				log.Warn("password hash upgrade failed", "username", username, "err", err)
			}
		}
	}

	rec, err := s.Refresh.Issue(ctx, user.Username)
	if err != nil {
		s.Metrics.Login("error")
		return domain.TokenPair{}, domain.AuthContext{}, err
	}

	s.Metrics.Login("success")
	log.Info("user logged in", "username", user.Username)

	pair := domain.TokenPair{
		Username:     user.Username,
		AccessToken:  s.Access.Issue(user.Username),
		RefreshToken: rec.TokenValue,
		ExpiresIn:    s.Access.TTL,
	}
	authCtx := domain.AuthContext{
		Username: user.Username,
		Roles:    user.Roles,
		Via:      domain.ViaPassword,
	}
	return pair, authCtx, nil
}

// Exchange trades an access token, usually expired, plus the current
// refresh token for a new access token. The refresh token is only replaced
// when it is close to expiry.
func (s *SessionService) Exchange(ctx context.Context, accessToken, refreshToken string) (domain.TokenPair, error) {
	pair, outcome, err := s.exchange(ctx, accessToken, refreshToken)
	if err != nil {
		if kind, ok := KindOf(err); ok {
			outcome = string(kind)
		} else {
			outcome = "error"
		}
	}
	s.Metrics.Refresh(outcome)
	return pair, err
}

func (s *SessionService) exchange(ctx context.Context, accessToken, refreshToken string) (domain.TokenPair, string, error) {
	username, err := s.Access.ValidateLoose(accessToken)
	if err != nil {
		return domain.TokenPair{}, "", err
	}

	rec, err := s.Refresh.Validate(ctx, username, refreshToken)
	if err != nil {
		return domain.TokenPair{}, "", err
	}

	next, err := s.Refresh.RotateIfNearExpiry(ctx, rec)
	if err != nil {
		return domain.TokenPair{}, "", err
	}

	outcome := "reused"
	if next.TokenValue != rec.TokenValue {
		outcome = "rotated"
	}

	return domain.TokenPair{
		Username:     username,
		AccessToken:  s.Access.Issue(username),
		RefreshToken: next.TokenValue,
		ExpiresIn:    s.Access.TTL,
	}, outcome, nil
}

// Reissue mints a new access token for an authenticated caller whose
// session is still alive. No refresh token is returned.
func (s *SessionService) Reissue(ctx context.Context, username string) (domain.TokenPair, error) {
	if _, err := s.Refresh.CheckRefreshFirst(ctx, username); err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		Username:    username,
		AccessToken: s.Access.Issue(username),
		ExpiresIn:   s.Access.TTL,
	}, nil
}

// Logout ends the user's session. Access tokens already issued stay valid
// until they expire.
func (s *SessionService) Logout(ctx context.Context, username string) error {
	if err := s.Refresh.Invalidate(ctx, username); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("user logged out", "username", username)
	return nil
}
