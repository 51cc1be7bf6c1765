// Package auth provides bearer token acquisition for the mail service API.
//
// The TokenProvider interface abstracts the token source so the upload
// engine and the thin call layer never depend on how credentials are
// obtained. Two implementations ship here: StaticTokenProvider for a
// pre-acquired token (CI, tests, short-lived CLI runs) and
// OAuthTokenProvider for a refreshing golang.org/x/oauth2 token source.
package auth
