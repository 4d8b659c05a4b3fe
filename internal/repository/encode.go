package repository

import (
	"time"

	"github.com/sakif/leetpush/internal/model"
)

// Values flattens a credential into its storage keys. Empty fields map to "".
func Values(c *model.Credential) map[string]string {
	return map[string]string{
		KeyJWT:          c.BearerToken,
		KeyUsername:     c.Username,
		KeyGitHubToken:  c.GitHubToken,
		KeyTokenType:    c.TokenType,
		KeySelectedRepo: c.SelectedRepository,
		KeyLastPush:     formatTime(c.LastPushAt),
		KeyLastLogin:    formatTime(c.LastLoginAt),
	}
}

// FromValues rebuilds a credential from storage keys. Unparseable timestamps
// are dropped rather than failing the whole load.
func FromValues(v map[string]string) *model.Credential {
	return &model.Credential{
		BearerToken:        v[KeyJWT],
		Username:           v[KeyUsername],
		GitHubToken:        v[KeyGitHubToken],
		TokenType:          v[KeyTokenType],
		SelectedRepository: v[KeySelectedRepo],
		LastPushAt:         parseTime(v[KeyLastPush]),
		LastLoginAt:        parseTime(v[KeyLastLogin]),
	}
}

// ProfileValues returns the keys a backend profile overrides.
func ProfileValues(p *model.Profile) map[string]string {
	out := map[string]string{}
	if t := p.LastLogin.Ptr(); t != nil {
		out[KeyLastLogin] = formatTime(t)
	}
	if t := p.LastPush.Ptr(); t != nil {
		out[KeyLastPush] = formatTime(t)
	}
	if p.SelectedRepo != "" {
		out[KeySelectedRepo] = p.SelectedRepo
	}
	return out
}

func FormatTime(t time.Time) string {
	return formatTime(&t)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}
