package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/actionprice/auth/internal/auth/domain"
	"github.com/actionprice/auth/internal/auth/store"
	"github.com/actionprice/auth/pkg/authsdk"
	"github.com/actionprice/auth/pkg/cryptox"
	"github.com/actionprice/auth/pkg/idx"
	"github.com/actionprice/auth/pkg/slogx"
)

type UserService struct {
	Store store.Store
}

// FindByUsername implements UserDirectory.
func (s *UserService) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.Store.Users().GetUserByUsername(ctx, username)
}

// Register creates a USER account.
func (s *UserService) Register(ctx context.Context, username, password string) (domain.User, error) {
	req := authsdk.RegisterRequest{Username: username, Password: password}
	if fields := req.Validate(); fields != nil {
		return domain.User{}, &ValidationError{Fields: fields}
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		Roles:        []string{domain.RoleUser},
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	slogx.FromContext(ctx).Info("user registered", "username", username, "user_id", u.ID)
	return u, nil
}

// UsernameAvailable reports whether username is well formed and unused.
func (s *UserService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	if reason := authsdk.ValidateUsername(username); reason != "" {
		return false, &ValidationError{Fields: map[string]string{"username": reason}}
	}

	_, err := s.Store.Users().GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return true, nil
	case err != nil:
		return false, err
	default:
		return false, nil
	}
}

// UpgradePasswordHash re-hashes a verified password with the current
// algorithm.
func (s *UserService) UpgradePasswordHash(ctx context.Context, username, password string) error {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, username, hash); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("password hash upgraded", "username", username)
	return nil
}

// EnsureAdmin seeds an ADMIN account when the user table is empty. When
// password is empty a random one is generated and returned. created is false
// if users already existed.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (created bool, generated string, err error) {
	if reason := authsdk.ValidateUsername(username); reason != "" {
		return false, "", fmt.Errorf("admin username %q: %s", username, reason)
	}
	if password == "" {
		if generated, err = cryptox.GeneratePassword(); err != nil {
			return false, "", err
		}
		password = generated
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return false, "", fmt.Errorf("hash password: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil || !empty {
			return err
		}
		created = true
		return tx.Users().CreateUser(ctx, domain.User{
			ID:           idx.New().String(),
			Username:     username,
			PasswordHash: hash,
			Roles:        []string{domain.RoleAdmin, domain.RoleUser},
		})
	})
	if err != nil || !created {
		return false, "", err
	}
	return true, generated, nil
}
