package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/sakif/leetpush/internal/auth"
	"github.com/sakif/leetpush/internal/handler"
	"github.com/sakif/leetpush/internal/middleware"
	"github.com/sakif/leetpush/internal/service"
)

// LoginCmd returns the login command
func LoginCmd() *cobra.Command {
	var (
		code    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with GitHub",
		Long: `Log in with GitHub through the backend.

Without --code, a temporary callback server is started on LEETPUSH_ADDR and
the login URL is printed; open it in a browser and approve the app. With
--code, an OAuth code obtained elsewhere is exchanged directly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			var session *service.Session
			if code != "" {
				session, err = a.accounts.Login(ctx, code)
			} else {
				session, err = a.loginInteractive(ctx, cmd, timeout)
			}
			if err != nil {
				return explain(cmd.ErrOrStderr(), err)
			}

			green.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", session.Username)
			if session.SelectedRepository == "" {
				printHint(cmd.OutOrStdout(), "NoRepositorySelected")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "OAuth code to exchange instead of opening a browser")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for the GitHub callback")
	return cmd
}

// notifyingLogin reports the first successful login on done.
type notifyingLogin struct {
	accounts *service.AccountService
	done     chan *service.Session
}

func (l *notifyingLogin) Login(ctx context.Context, code string) (*service.Session, error) {
	session, err := l.accounts.Login(ctx, code)
	if err == nil {
		select {
		case l.done <- session:
		default:
		}
	}
	return session, err
}

func (a *app) loginInteractive(ctx context.Context, cmd *cobra.Command, timeout time.Duration) (*service.Session, error) {
	provider := auth.NewGitHubProvider(a.cfg.GitHubClientID, a.cfg.GitHubCallbackURL)
	if !provider.Configured() {
		return nil, errors.New("GITHUB_CLIENT_ID is not set; pass --code or configure the OAuth app")
	}

	login := &notifyingLogin{accounts: a.accounts, done: make(chan *service.Session, 1)}
	h := handler.NewAuthHandler(provider, login, a.logger)

	r := chi.NewRouter()
	r.Use(middleware.LocalOnly)
	r.Get("/auth/github/login", h.HandleGitHubLogin)
	r.Get("/auth/github/callback", h.HandleGitHubCallback)

	srv := &http.Server{Addr: a.cfg.Addr, Handler: r, ReadTimeout: 15 * time.Second}
	serverErrors := make(chan error, 1)
	go func() { serverErrors <- srv.ListenAndServe() }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to log in:\n\n  %s\n\n",
		cyan.Sprintf("http://%s/auth/github/login", a.cfg.Addr))

	select {
	case session := <-login.done:
		return session, nil
	case err := <-serverErrors:
		return nil, fmt.Errorf("callback server: %w", err)
	case <-time.After(timeout):
		return nil, fmt.Errorf("no GitHub callback within %s", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
