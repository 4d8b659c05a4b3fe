package auth

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubProvider builds the GitHub authorization URL for the login flow.
//
// Only the first leg of the Authorization Code flow happens here:
//  1. We redirect the user to GitHub with our ClientID and the "repo" scope.
//  2. GitHub redirects back to our callback with a short-lived "code".
//  3. The callback forwards the code to the backend, which holds the client
//     secret, exchanges it and answers with its own session token.
//
// The GitHub access token therefore never passes through this process.
type GitHubProvider struct {
	config *oauth2.Config
}

// NewGitHubProvider creates a GitHubProvider for the OAuth App clientID.
//
// callbackURL must match the "Authorization callback URL" configured on the
// OAuth App exactly, e.g. "http://127.0.0.1:7337/auth/github/callback".
//
// The "repo" scope lets the backend write solution files to the user's
// repositories.
func NewGitHubProvider(clientID, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: callbackURL,
			Scopes:      []string{"repo"},
			Endpoint:    github.Endpoint,
		},
	}
}

// Configured reports whether a client id is set.
func (p *GitHubProvider) Configured() bool {
	return p.config.ClientID != ""
}

// AuthURL returns the URL to send the user to.
//
// state is a random value stored in a cookie before redirecting; the
// callback rejects any request whose state does not match it (CSRF).
// prompt=consent makes GitHub show the account chooser even when the user
// already authorized the app, so switching accounts is possible.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}
