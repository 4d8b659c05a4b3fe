// Package backend is the client for the push backend's HTTP API.
//
// Authenticated calls take the bearer token explicitly; the client itself
// holds no credentials and is safe for concurrent use.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

const (
	DefaultBaseURL = "http://localhost:8000"

	// maxErrorBody bounds how much of a failed response is kept for the error.
	maxErrorBody = 64 << 10

	messageAlreadyPushed = "Already pushed!"
	messageNoChange      = "No change"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New returns a client for baseURL. A nil httpClient gets a 30s timeout.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// authed returns an HTTP client that attaches token as a bearer credential.
func (c *Client) authed(ctx context.Context, token string) (*http.Client, error) {
	if token == "" {
		return nil, apperror.AuthExpired("not logged in")
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	})), nil
}

// PushCode sends one push request. The returned response has Outcome set.
func (c *Client) PushCode(ctx context.Context, token string, req model.PushRequest) (*model.PushResponse, error) {
	hc, err := c.authed(ctx, token)
	if err != nil {
		return nil, err
	}
	var resp model.PushResponse
	if err := c.do(ctx, hc, http.MethodPost, "/push-code", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("backend: push-code: %w", err)
	}
	resp.Outcome = ClassifyOutcome(&resp)
	return &resp, nil
}

func (c *Client) Stats(ctx context.Context, token string) (*model.Stats, error) {
	hc, err := c.authed(ctx, token)
	if err != nil {
		return nil, err
	}
	var stats model.Stats
	if err := c.do(ctx, hc, http.MethodGet, "/stats", nil, nil, &stats); err != nil {
		return nil, fmt.Errorf("backend: stats: %w", err)
	}
	return &stats, nil
}

func (c *Client) Me(ctx context.Context, token string) (*model.Profile, error) {
	hc, err := c.authed(ctx, token)
	if err != nil {
		return nil, err
	}
	var p model.Profile
	if err := c.do(ctx, hc, http.MethodGet, "/me", nil, nil, &p); err != nil {
		return nil, fmt.Errorf("backend: me: %w", err)
	}
	return &p, nil
}

func (c *Client) Streak(ctx context.Context, token string) (*model.Streak, error) {
	hc, err := c.authed(ctx, token)
	if err != nil {
		return nil, err
	}
	var s model.Streak
	if err := c.do(ctx, hc, http.MethodGet, "/streak", nil, nil, &s); err != nil {
		return nil, fmt.Errorf("backend: streak: %w", err)
	}
	return &s, nil
}

// SaveRepository records repo ("owner/name") as the user's push target.
func (c *Client) SaveRepository(ctx context.Context, token, repo string) error {
	hc, err := c.authed(ctx, token)
	if err != nil {
		return err
	}
	body := map[string]string{"repository": repo}
	if err := c.do(ctx, hc, http.MethodPost, "/save-repository", nil, body, nil); err != nil {
		return fmt.Errorf("backend: save-repository: %w", err)
	}
	return nil
}

// LoginCallback exchanges a GitHub OAuth code for a backend session. A
// response without a token is an error.
func (c *Client) LoginCallback(ctx context.Context, code string) (*model.LoginResult, error) {
	if code == "" {
		return nil, apperror.ValidationFailed("code", "oauth code is required")
	}
	var res model.LoginResult
	q := url.Values{"code": {code}}
	if err := c.do(ctx, c.http, http.MethodGet, "/login/github/callback", q, nil, &res); err != nil {
		return nil, fmt.Errorf("backend: login callback: %w", err)
	}
	if res.Token == "" {
		return nil, apperror.AuthExpired("login did not return a token")
	}
	return &res, nil
}

func (c *Client) Search(ctx context.Context, username string) ([]model.SearchResult, error) {
	var out struct {
		Results []model.SearchResult `json:"results"`
	}
	q := url.Values{"username": {username}}
	if err := c.do(ctx, c.http, http.MethodGet, "/search", q, nil, &out); err != nil {
		return nil, fmt.Errorf("backend: search: %w", err)
	}
	return out.Results, nil
}

func (c *Client) User(ctx context.Context, username string) (*model.Stats, error) {
	var s model.Stats
	path := "/user/" + url.PathEscape(username)
	if err := c.do(ctx, c.http, http.MethodGet, path, nil, nil, &s); err != nil {
		return nil, fmt.Errorf("backend: user: %w", err)
	}
	return &s, nil
}

func (c *Client) Ranking(ctx context.Context) ([]model.RankingEntry, error) {
	var out struct {
		Ranking []model.RankingEntry `json:"ranking"`
	}
	if err := c.do(ctx, c.http, http.MethodGet, "/ranking", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("backend: ranking: %w", err)
	}
	return out.Ranking, nil
}

// do sends one request and decodes a 2xx JSON body into out (when non-nil).
// Transport errors become NetworkFailure, 401/403 AuthExpired, any other
// non-2xx or an undecodable body ServerError.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		return apperror.NetworkFailure(method+" "+path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return apperror.AuthExpired(errorDetail(b, "session expired, log in again"))
		}
		return apperror.ServerError(resp.StatusCode, string(b))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.NetworkFailure(method+" "+path, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		c.logger.Warn("undecodable backend response", slog.String("path", path), slog.String("error", err.Error()))
		return apperror.ServerError(resp.StatusCode, string(b))
	}
	return nil
}

// errorDetail extracts {"detail": "..."} from an error body.
func errorDetail(body []byte, fallback string) string {
	var e struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &e) == nil && e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// ClassifyOutcome decides what a successful push did. An explicit outcome
// field wins; otherwise the message is matched against the legacy strings.
func ClassifyOutcome(resp *model.PushResponse) model.PushOutcome {
	switch resp.Outcome {
	case model.OutcomeCreated, model.OutcomeDuplicate, model.OutcomeUnchanged:
		return resp.Outcome
	}

	msg := strings.TrimSpace(resp.Message)
	switch {
	case msg == messageAlreadyPushed:
		return model.OutcomeDuplicate
	case strings.TrimSuffix(msg, ".") == messageNoChange:
		return model.OutcomeUnchanged
	default:
		return model.OutcomeCreated
	}
}
