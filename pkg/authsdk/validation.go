package authsdk

import (
	"regexp"
	"strings"
)

var reUsername = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateUsername returns why username is unacceptable, or "" if it is fine.
func ValidateUsername(username string) string {
	switch {
	case strings.TrimSpace(username) == "":
		return "required"
	case len(username) < 3 || len(username) > 32:
		return "must be 3-32 characters"
	case !reUsername.MatchString(username):
		return "must only contain a-z, A-Z, 0-9, _ or -"
	}
	return ""
}

// ValidatePassword returns why password is unacceptable, or "" if it is fine.
func ValidatePassword(password string) string {
	switch {
	case password == "":
		return "required"
	case len(password) < 8:
		return "too short (min 8)"
	case len(password) > 128:
		return "too long (max 128)"
	}
	return ""
}

// Validate returns field errors keyed by JSON field name, or nil.
func (r RegisterRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if reason := ValidateUsername(r.Username); reason != "" {
		errs["username"] = reason
	}
	if reason := ValidatePassword(r.Password); reason != "" {
		errs["password"] = reason
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
