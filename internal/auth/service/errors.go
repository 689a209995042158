package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies authentication failures. Each kind maps to exactly one
// error code on the wire.
type ErrorKind string

const (
	KindExpired              ErrorKind = "expired"
	KindMalformed            ErrorKind = "malformed"
	KindBadSignature         ErrorKind = "bad_signature"
	KindUnsupported          ErrorKind = "unsupported"
	KindMissingOrWrongScheme ErrorKind = "missing_or_wrong_scheme"
	KindNoAccess             ErrorKind = "no_access"
	KindNoRefresh            ErrorKind = "no_refresh"
	KindOldRefresh           ErrorKind = "old_refresh"
	KindUnknownPrincipal     ErrorKind = "unknown_principal"
	KindBadCredentials       ErrorKind = "bad_credentials"
)

// AuthError is a classified authentication failure. Two AuthErrors match
// under errors.Is when their kinds are equal; the cause is reachable through
// errors.Unwrap.
type AuthError struct {
	Kind ErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "auth: " + string(e.Kind)
	}
	return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

var (
	ErrExpired              = &AuthError{Kind: KindExpired}
	ErrMalformed            = &AuthError{Kind: KindMalformed}
	ErrBadSignature         = &AuthError{Kind: KindBadSignature}
	ErrUnsupported          = &AuthError{Kind: KindUnsupported}
	ErrMissingOrWrongScheme = &AuthError{Kind: KindMissingOrWrongScheme}
	ErrNoAccess             = &AuthError{Kind: KindNoAccess}
	ErrNoRefresh            = &AuthError{Kind: KindNoRefresh}
	ErrOldRefresh           = &AuthError{Kind: KindOldRefresh}
	ErrUnknownPrincipal     = &AuthError{Kind: KindUnknownPrincipal}
	ErrBadCredentials       = &AuthError{Kind: KindBadCredentials}
)

// Outcomes outside the token taxonomy.
var (
	ErrAlreadyAuthenticated = errors.New("already_authenticated")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidRequest       = errors.New("invalid_request")
	ErrUsernameTaken        = errors.New("username_taken")
)

func authError(kind ErrorKind, cause error) error {
	return &AuthError{Kind: kind, Err: cause}
}

// KindOf returns the kind of the first AuthError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}

// ValidationError is an ErrInvalidRequest with per-field reasons.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid_request: %d invalid field(s)", len(e.Fields))
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidRequest }
