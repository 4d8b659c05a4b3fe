// Package leetcode resolves problem metadata from the practice site's
// GraphQL endpoint.
package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	DefaultGraphQLURL = "https://leetcode.com/graphql"

	questionDetailQuery = `query getQuestionDetail($titleSlug: String!) {
  question(titleSlug: $titleSlug) {
    questionFrontendId
  }
}`

	idWidth = 4
)

// Client looks up a problem's display number by slug. Successful lookups
// are memoized, so repeated resolution of one slug is stable and costs one
// request.
type Client struct {
	endpoint string
	http     *http.Client
	session  string
	csrf     string
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[string]string
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithSession sends the LEETCODE_SESSION cookie, and the csrftoken cookie
// and header when csrf is set. Anonymous requests work for public problems.
func WithSession(session, csrf string) Option {
	return func(cl *Client) {
		cl.session = session
		cl.csrf = csrf
	}
}

func New(endpoint string, logger *slog.Logger, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultGraphQLURL
	}
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
		cache:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type graphQLRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

type questionDetailResponse struct {
	Data struct {
		Question *struct {
			QuestionFrontendID string `json:"questionFrontendId"`
		} `json:"question"`
	} `json:"data"`
}

// ResolveNumericID returns the zero-padded display number for slug, e.g.
// "0001" for "two-sum". It reports false on any failure and never retries;
// the failure is logged, not returned.
func (c *Client) ResolveNumericID(ctx context.Context, slug string) (string, bool) {
	c.mu.Lock()
	id, ok := c.cache[slug]
	c.mu.Unlock()
	if ok {
		return id, true
	}

	id, err := c.fetch(ctx, slug)
	if err != nil {
		c.logger.Warn("problem number lookup failed", slog.String("slug", slug), slog.String("error", err.Error()))
		return "", false
	}

	c.mu.Lock()
	c.cache[slug] = id
	c.mu.Unlock()
	return id, true
}

func (c *Client) fetch(ctx context.Context, slug string) (string, error) {
	body, err := json.Marshal(graphQLRequest{
		OperationName: "getQuestionDetail",
		Query:         questionDetailQuery,
		Variables:     map[string]any{"titleSlug": slug},
	})
	if err != nil {
		return "", fmt.Errorf("leetcode: encoding query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("leetcode: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://leetcode.com/problems/"+slug+"/")
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: "LEETCODE_SESSION", Value: c.session})
	}
	if c.csrf != "" {
		req.AddCookie(&http.Cookie{Name: "csrftoken", Value: c.csrf})
		req.Header.Set("x-csrftoken", c.csrf)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("leetcode: querying %s: %w", slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("leetcode: querying %s: status %d", slug, resp.StatusCode)
	}

	var out questionDetailResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("leetcode: decoding response: %w", err)
	}
	if out.Data.Question == nil || out.Data.Question.QuestionFrontendID == "" {
		return "", fmt.Errorf("leetcode: no question for slug %q", slug)
	}
	return PadID(out.Data.Question.QuestionFrontendID), nil
}

// PadID left-pads id with zeros to four characters. Longer ids are kept.
func PadID(id string) string {
	if len(id) >= idWidth {
		return id
	}
	return strings.Repeat("0", idWidth-len(id)) + id
}
