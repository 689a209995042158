package pipeline

import (
	"errors"
	"net/http"

	"github.com/actionprice/auth/internal/auth/metrics"
	"github.com/actionprice/auth/internal/auth/service"
	"github.com/actionprice/auth/pkg/authsdk"
	"github.com/actionprice/auth/pkg/httpx"
	"github.com/actionprice/auth/pkg/slogx"
)

// ErrorTranslator turns service errors into API error responses. It is the
// only place rejections are logged.
type ErrorTranslator struct {
	Metrics *metrics.Metrics
}

var kindErrors = map[service.ErrorKind]*authsdk.APIError{
	service.KindExpired:              authsdk.ErrTokenExpired,
	service.KindMalformed:            authsdk.ErrTokenMalformed,
	service.KindBadSignature:         authsdk.ErrTokenBadSignature,
	service.KindUnsupported:          authsdk.ErrTokenUnsupported,
	service.KindMissingOrWrongScheme: authsdk.ErrTokenMissing,
	service.KindUnknownPrincipal:     authsdk.ErrUnknownPrincipal,
	service.KindNoAccess:             authsdk.ErrNoAccess,
	service.KindNoRefresh:            authsdk.ErrNoRefresh,
	service.KindOldRefresh:           authsdk.ErrOldRefresh,
	service.KindBadCredentials:       authsdk.ErrBadCredentials,
}

// Translate maps err to its wire form. Unknown errors become server_error.
func (t *ErrorTranslator) Translate(err error) *authsdk.APIError {
	if kind, ok := service.KindOf(err); ok {
		if apiErr, ok := kindErrors[kind]; ok {
			return apiErr
		}
	}

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		apiErr := *authsdk.ErrInvalidRequest
		apiErr.Details = verr.Fields
		return &apiErr
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, httpx.ErrUnsupportedMediaType):
		return authsdk.ErrInvalidRequest
	case errors.Is(err, service.ErrAlreadyAuthenticated):
		return authsdk.ErrAlreadyAuthenticated
	case errors.Is(err, service.ErrForbidden):
		return authsdk.ErrAccessDenied
	case errors.Is(err, service.ErrUsernameTaken):
		return authsdk.ErrUsernameTaken
	default:
		return authsdk.ErrServerError
	}
}

// Write logs err, counts it and writes the translated response.
func (t *ErrorTranslator) Write(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := t.Translate(err)
	log := slogx.FromContext(r.Context())
	kind, _ := service.KindOf(err)

	switch {
	case tampering(kind):
		log.Warn("request rejected", "code", apiErr.Code, "possible_tampering", true, "err", err)
	case apiErr.StatusCode >= http.StatusInternalServerError:
		log.Error("request failed", "err", err)
	default:
		log.Info("request rejected", "code", apiErr.Code, "err", err)
	}
	t.Metrics.Rejected(apiErr.Code)

	switch kind {
	case service.KindMissingOrWrongScheme:
		w.Header().Set("WWW-Authenticate", "Bearer")
	case service.KindExpired, service.KindMalformed, service.KindBadSignature,
		service.KindUnsupported, service.KindUnknownPrincipal:
		httpx.BearerChallenge(w, "invalid_token", apiErr.Description)
	}
	apiErr.WriteError(w)
}

func tampering(kind service.ErrorKind) bool {
	switch kind {
	case service.KindMalformed, service.KindBadSignature, service.KindUnsupported:
		return true
	}
	return false
}
