package domain

import "slices"

// AuthMethod records how a request was authenticated.
type AuthMethod string

const (
	ViaPassword    AuthMethod = "password"
	ViaAccessToken AuthMethod = "access_token"
)

// AuthContext is the per-request identity produced by the authentication
// pipeline. It lives only as long as the request.
type AuthContext struct {
	Username string
	Roles    []string
	Via      AuthMethod
}

// HasRole reports whether the authenticated caller holds role.
func (a AuthContext) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}
