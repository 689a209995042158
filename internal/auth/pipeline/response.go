package pipeline

import (
	"github.com/actionprice/auth/internal/auth/domain"
	"github.com/actionprice/auth/pkg/authsdk"
)

// TokenResponse converts a token pair into the login/refresh/reissue body.
func TokenResponse(pair domain.TokenPair) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    authsdk.TokenTypeBearer,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
		Username:     pair.Username,
	}
}
