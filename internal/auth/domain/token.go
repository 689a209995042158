package domain

import "time"

// TokenPair is what a successful login or refresh exchange hands back.
type TokenPair struct {
	Username     string
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration // access token lifetime
}

// RefreshRecord is the single active refresh credential for a user. Its
// TokenValue is a signed refresh token; the record is overwritten whenever a
// new one is issued and removed on logout.
type RefreshRecord struct {
	Username   string
	TokenValue string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the record is no longer usable at now. A record
// expiring exactly at now is already expired.
func (r RefreshRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Remaining is the time left before the record expires.
func (r RefreshRecord) Remaining(now time.Time) time.Duration {
	return r.ExpiresAt.Sub(now)
}
