package model

import "time"

// Credential is the locally persisted session: the backend bearer token,
// the push target and the last push/login timestamps.
//
// A push is never attempted unless BearerToken and SelectedRepository are
// both non-empty.
type Credential struct {
	BearerToken        string     `json:"-"`
	Username           string     `json:"username"`
	GitHubToken        string     `json:"-"`
	TokenType          string     `json:"tokenType,omitempty"`
	SelectedRepository string     `json:"selectedRepository"`
	LastPushAt         *time.Time `json:"lastPushAt,omitempty"`
	LastLoginAt        *time.Time `json:"lastLoginAt,omitempty"`
}

// Authenticated reports whether a bearer token is present.
func (c *Credential) Authenticated() bool {
	return c != nil && c.BearerToken != ""
}

// CanPush reports whether both the token and the push target are present.
func (c *Credential) CanPush() bool {
	return c.Authenticated() && c.SelectedRepository != ""
}

// Profile is the backend's view of the current session (GET /me).
type Profile struct {
	Username     string     `json:"username"`
	LastLogin    *Timestamp `json:"last_login"`
	LastPush     *Timestamp `json:"last_push"`
	SelectedRepo string     `json:"selected_repo"`
}

// LoginResult is returned by the backend's OAuth callback endpoint.
type LoginResult struct {
	Token     string     `json:"token"`
	Username  string     `json:"username"`
	LastPush  *Timestamp `json:"last_push"`
	LastLogin *Timestamp `json:"last_login"`
}
