package app

import (
	"fmt"
	"log/slog"

	"github.com/actionprice/auth/pkg/cryptox"
	"github.com/actionprice/auth/pkg/jwtx"
)

// secretSize is the random byte count of generated secrets, before encoding.
const secretSize = 48

// LoadSigningSecret resolves the HS256 secret.
//
// Sources, in order:
//   - AUTH_SIGNING_SECRET, used as-is.
//   - AUTH_SIGNING_SECRET_FILE, created with mode 0600 when missing.
//   - A random secret held in memory. Every token becomes invalid when the
//     process restarts.
func LoadSigningSecret(cfg Config, logger *slog.Logger) ([]byte, error) {
	switch {
	case cfg.SigningSecret != "":
		if len(cfg.SigningSecret) < jwtx.MinSecretLength {
			return nil, fmt.Errorf("AUTH_SIGNING_SECRET must be at least %d bytes", jwtx.MinSecretLength)
		}
		logger.Info("signing secret loaded from environment")
		return []byte(cfg.SigningSecret), nil

	case cfg.SigningSecretFile != "":
		secret, err := cryptox.LoadOrCreateSecret(cfg.SigningSecretFile, secretSize)
		if err != nil {
			return nil, fmt.Errorf("load signing secret: %w", err)
		}
		if len(secret) < jwtx.MinSecretLength {
			return nil, fmt.Errorf("signing secret in %s must be at least %d bytes", cfg.SigningSecretFile, jwtx.MinSecretLength)
		}
		logger.Info("signing secret loaded", "path", cfg.SigningSecretFile)
		return secret, nil

	default:
		secret, err := cryptox.GenerateToken(secretSize)
		if err != nil {
			return nil, err
		}
		logger.Warn("no signing secret configured, using an ephemeral one; sessions will not survive a restart")
		return []byte(secret), nil
	}
}
