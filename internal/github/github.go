// Package github lists the repositories a user can pick as a push target.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/model"
)

const DefaultAPIURL = "https://api.github.com"

type Client struct {
	apiURL string
	http   *http.Client
	logger *slog.Logger
}

func New(apiURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{apiURL: strings.TrimRight(apiURL, "/"), http: httpClient, logger: logger}
}

// ListRepos returns the user's repositories, most recently updated first.
// With a GitHub token the authenticated /user/repos listing is used, which
// includes private repositories; without one, the public listing for
// username.
func (c *Client) ListRepos(ctx context.Context, token, username string) ([]model.Repository, error) {
	hc := c.http
	var path string
	switch {
	case token != "":
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		path = "/user/repos"
	case username != "":
		path = "/users/" + url.PathEscape(username) + "/repos"
	default:
		return nil, apperror.AuthExpired("not logged in")
	}

	q := url.Values{"per_page": {"100"}, "sort": {"updated"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("github: building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, apperror.NetworkFailure("github: list repos", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apperror.AuthExpired("github token rejected")
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperror.NotFound("github user", username)
	case resp.StatusCode != http.StatusOK:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, apperror.ServerError(resp.StatusCode, string(b))
	}

	var repos []model.Repository
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("github: decoding repos: %w", err)
	}
	c.logger.Debug("listed repositories", slog.Int("count", len(repos)))
	return repos, nil
}

// RepositoryURL returns the web URL of an "owner/name" repository.
func RepositoryURL(fullName string) string {
	return "https://github.com/" + fullName
}

// ValidFullName reports whether s looks like "owner/name".
func ValidFullName(s string) bool {
	owner, name, ok := strings.Cut(s, "/")
	return ok && owner != "" && name != "" && !strings.ContainsAny(name, "/ ") && !strings.Contains(owner, " ")
}
