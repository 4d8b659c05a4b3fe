// Package config reads leetpush settings from the environment, after
// loading a .env file when one exists.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/leetpush/internal/backend"
	"github.com/sakif/leetpush/internal/inspector"
	"github.com/sakif/leetpush/internal/leetcode"
	"github.com/sakif/leetpush/internal/monitor"
)

// Browser modes.
const (
	BrowserExec   = "exec"   // launch a local Chrome
	BrowserRemote = "remote" // connect to LEETPUSH_CDP_URL
	BrowserDocker = "docker" // run headless-shell in Docker
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Local control API
	Addr string

	// Storage
	DBPath         string
	ClearOnStartup bool

	// Backend and metadata APIs
	APIBaseURL string
	GraphQLURL string
	GitHubAPI  string

	// GitHub OAuth app (the secret lives on the backend)
	GitHubClientID    string
	GitHubCallbackURL string

	// Browser
	Browser        string
	CDPURL         string
	AttachExisting bool
	Headless       bool
	UserDataDir    string
	DockerImage    string
	Session        string // LEETCODE_SESSION cookie
	CSRFToken      string
	StartURL       string
	Selectors      inspector.Selectors

	// Verdict polling
	VerdictInterval time.Duration
	VerdictAttempts int

	// Logging
	LogFormat string // text | json
	LogLevel  slog.Level
}

// Load reads .env (silently ignored when missing) and then the environment.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from environment variables with sensible defaults.
func FromEnv() *Config {
	addr := envOrDefault("LEETPUSH_ADDR", "127.0.0.1:7337")
	return &Config{
		Addr: addr,

		DBPath:         envOrDefault("LEETPUSH_DB_PATH", "data/leetpush.db"),
		ClearOnStartup: envOrDefaultBool("LEETPUSH_CLEAR_ON_STARTUP", false),

		APIBaseURL: envOrDefault("LEETPUSH_API_BASE_URL", backend.DefaultBaseURL),
		GraphQLURL: envOrDefault("LEETPUSH_GRAPHQL_URL", leetcode.DefaultGraphQLURL),
		GitHubAPI:  envOrDefault("LEETPUSH_GITHUB_API_URL", "https://api.github.com"),

		GitHubClientID:    os.Getenv("GITHUB_CLIENT_ID"),
		GitHubCallbackURL: envOrDefault("GITHUB_CALLBACK_URL", fmt.Sprintf("http://%s/auth/github/callback", addr)),

		Browser:        strings.ToLower(envOrDefault("LEETPUSH_BROWSER", BrowserExec)),
		CDPURL:         os.Getenv("LEETPUSH_CDP_URL"),
		AttachExisting: envOrDefaultBool("LEETPUSH_ATTACH", true),
		Headless:       envOrDefaultBool("LEETPUSH_HEADLESS", false),
		UserDataDir:    os.Getenv("LEETPUSH_PROFILE_DIR"),
		DockerImage:    envOrDefault("LEETPUSH_DOCKER_IMAGE", "chromedp/headless-shell:latest"),
		Session:        os.Getenv("LEETCODE_SESSION"),
		CSRFToken:      os.Getenv("LEETCODE_CSRF_TOKEN"),
		StartURL:       os.Getenv("LEETPUSH_START_URL"),
		Selectors: inspector.DefaultSelectors().WithOverrides(inspector.Selectors{
			Verdict:  os.Getenv("LEETPUSH_SELECTOR_VERDICT"),
			Language: os.Getenv("LEETPUSH_SELECTOR_LANGUAGE"),
			CodeLine: os.Getenv("LEETPUSH_SELECTOR_CODE_LINE"),
			Submit:   os.Getenv("LEETPUSH_SELECTOR_SUBMIT"),
		}),

		VerdictInterval: envOrDefaultDuration("LEETPUSH_VERDICT_INTERVAL", monitor.DefaultInterval),
		VerdictAttempts: envOrDefaultInt("LEETPUSH_VERDICT_ATTEMPTS", monitor.DefaultMaxAttempts),

		LogFormat: strings.ToLower(envOrDefault("LEETPUSH_LOG_FORMAT", "text")),
		LogLevel:  envOrDefaultLevel("LEETPUSH_LOG_LEVEL", slog.LevelInfo),
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Browser {
	case BrowserExec, BrowserDocker:
	case BrowserRemote:
		if c.CDPURL == "" {
			return fmt.Errorf("config: LEETPUSH_BROWSER=remote needs LEETPUSH_CDP_URL")
		}
	default:
		return fmt.Errorf("config: unknown LEETPUSH_BROWSER %q (want exec, remote or docker)", c.Browser)
	}
	if c.VerdictAttempts <= 0 {
		return fmt.Errorf("config: LEETPUSH_VERDICT_ATTEMPTS must be positive")
	}
	if c.VerdictInterval <= 0 {
		return fmt.Errorf("config: LEETPUSH_VERDICT_INTERVAL must be positive")
	}
	return nil
}

// NewLogger builds the process logger: text by default, JSON when
// LEETPUSH_LOG_FORMAT=json.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return fallback
}

func envOrDefaultLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}
