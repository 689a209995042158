/*
Package authsdk is the client SDK and shared wire types for the ActionPrice
authentication service.

# Tokens

A login returns a short-lived access token and a refresh token. Send the
access token as "Authorization: Bearer <token>" on every request. When it
expires, exchange the expired access token together with the refresh token
for a new pair:

	client := authsdk.NewClient("https://auth.example.com")

	tokens, err := client.Login(ctx, "alice", "correct horse")
	...
	tokens, err = client.Refresh(ctx, tokens.AccessToken, tokens.RefreshToken)

Only one refresh token is active per user. Logging in again or logging out
invalidates the previous one. The refresh token in a refresh response may be
the same value that was sent; it changes only when it was close to expiry.

# Errors

Every non-2xx response is returned as an *APIError carrying the HTTP status
and the machine readable code, e.g. "token_expired" or "no_refresh". Compare
codes with errors.Is against the predefined errors:

	if errors.Is(err, authsdk.ErrTokenExpired) {
		// refresh and retry
	}
*/
package authsdk
