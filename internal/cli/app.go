// Package cli implements the leetpush commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/leetpush/internal/backend"
	"github.com/sakif/leetpush/internal/browser/docker"
	"github.com/sakif/leetpush/internal/config"
	"github.com/sakif/leetpush/internal/coordinator"
	"github.com/sakif/leetpush/internal/github"
	"github.com/sakif/leetpush/internal/inspector"
	"github.com/sakif/leetpush/internal/inspector/cdp"
	"github.com/sakif/leetpush/internal/leetcode"
	"github.com/sakif/leetpush/internal/monitor"
	"github.com/sakif/leetpush/internal/repository"
	"github.com/sakif/leetpush/internal/repository/memory"
	sqliteRepo "github.com/sakif/leetpush/internal/repository/sqlite"
	"github.com/sakif/leetpush/internal/service"
	"github.com/sakif/leetpush/internal/trigger"
)

// store is what both the sqlite and the in-memory stores implement.
type store interface {
	repository.CredentialRepository
	repository.HistoryRepository
}

// app holds what every command needs: configuration, logger, the store and
// the services over it.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    store
	backend  *backend.Client
	accounts *service.AccountService
	history  *service.HistoryService

	closeStore func() error
}

// newApp loads configuration and opens the store. ephemeral selects the
// in-memory store; nothing is read from or written to disk.
func newApp(cmd *cobra.Command, ephemeral bool) (*app, error) {
	cfg := config.Load()
	if err := applyBrowserFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.NewLogger(cmd.ErrOrStderr())

	a := &app{cfg: cfg, logger: logger, closeStore: func() error { return nil }}

	if ephemeral {
		a.store = memory.New()
	} else {
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		a.store = db
		a.closeStore = db.Close
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	a.backend = backend.New(cfg.APIBaseURL, httpClient, logger)
	a.accounts = service.NewAccountService(
		a.backend,
		github.New(cfg.GitHubAPI, httpClient, logger),
		a.store,
		logger,
	)
	a.history = service.NewHistoryService(a.store, logger)
	return a, nil
}

func (a *app) Close() {
	if err := a.closeStore(); err != nil {
		a.logger.Warn("closing store", slog.String("error", err.Error()))
	}
}

// addBrowserFlags registers the flags that override the browser settings
// from the environment.
func addBrowserFlags(cmd *cobra.Command) {
	cmd.Flags().String("browser", "", "how to reach Chrome: exec, remote or docker (env LEETPUSH_BROWSER)")
	cmd.Flags().String("cdp-url", "", "DevTools endpoint for --browser=remote (env LEETPUSH_CDP_URL)")
	cmd.Flags().Bool("headless", false, "run a launched Chrome without a window (env LEETPUSH_HEADLESS)")
}

func applyBrowserFlags(cmd *cobra.Command, cfg *config.Config) error {
	if f := cmd.Flags().Lookup("browser"); f != nil && f.Changed {
		cfg.Browser = f.Value.String()
	}
	if f := cmd.Flags().Lookup("cdp-url"); f != nil && f.Changed {
		cfg.CDPURL = f.Value.String()
		if cfg.Browser == config.BrowserExec {
			cfg.Browser = config.BrowserRemote
		}
	}
	if f := cmd.Flags().Lookup("headless"); f != nil && f.Changed {
		headless, err := cmd.Flags().GetBool("headless")
		if err != nil {
			return err
		}
		cfg.Headless = headless
	}
	return nil
}

// openPage connects to the practice-site tab the way LEETPUSH_BROWSER says.
// The returned function releases the tab and any browser started for it.
func (a *app) openPage(ctx context.Context) (inspector.Page, func(), error) {
	opts := cdp.Options{
		CDPURL:         a.cfg.CDPURL,
		AttachExisting: a.cfg.AttachExisting,
		Headless:       a.cfg.Headless,
		UserDataDir:    a.cfg.UserDataDir,
		Session:        a.cfg.Session,
		StartURL:       a.cfg.StartURL,
		Selectors:      a.cfg.Selectors,
	}

	switch a.cfg.Browser {
	case config.BrowserExec:
		opts.CDPURL = ""
	case config.BrowserDocker:
		dcfg := docker.DefaultConfig()
		dcfg.Image = a.cfg.DockerImage
		launcher, err := docker.New(dcfg, a.logger)
		if err != nil {
			return nil, nil, err
		}
		cdpURL, err := launcher.Start(ctx)
		if err != nil {
			_ = launcher.Close()
			return nil, nil, err
		}
		opts.CDPURL = cdpURL
		opts.AttachExisting = false

		page, closePage, err := cdp.Open(ctx, opts, a.logger)
		if err != nil {
			_ = launcher.Close()
			return nil, nil, err
		}
		return page, func() {
			closePage()
			if err := launcher.Close(); err != nil {
				a.logger.Warn("stopping browser container", slog.String("error", err.Error()))
			}
		}, nil
	}

	page, closePage, err := cdp.Open(ctx, opts, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return page, closePage, nil
}

// newCoordinator wires a push coordinator to page.
func (a *app) newCoordinator(page inspector.Page) *coordinator.Coordinator {
	resolver := leetcode.New(a.cfg.GraphQLURL, a.logger,
		leetcode.WithSession(a.cfg.Session, a.cfg.CSRFToken),
	)
	return coordinator.New(coordinator.Deps{
		Page:        page,
		Trigger:     trigger.New(page, a.cfg.Selectors.Submit, a.logger),
		Monitor:     monitor.New(page, a.cfg.VerdictInterval, a.cfg.VerdictAttempts, a.logger),
		Resolver:    resolver,
		Backend:     a.backend,
		Credentials: a.store,
		History:     a.store,
		Logger:      a.logger,
	})
}
