package http

import (
	"context"
	"net/http"
	"time"

	"github.com/actionprice/auth/pkg/authsdk"
	"github.com/actionprice/auth/pkg/httpx"
)

// Pinger is anything readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the user database and, when refresh tokens live elsewhere, the credential store.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"at least one check failed"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, db Pinger, credentials Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := &authsdk.HealthChecks{Database: "ok"}
		status, code := "ok", http.StatusOK

		if err := db.Ping(ctx); err != nil {
			checks.Database = "error: " + err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}
		if credentials != nil {
			checks.CredentialStore = "ok"
			if err := credentials.Ping(ctx); err != nil {
				checks.CredentialStore = "error: " + err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, code, authsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
