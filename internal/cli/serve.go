package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/leetpush/internal/auth"
	"github.com/sakif/leetpush/internal/coordinator"
	"github.com/sakif/leetpush/internal/server"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var (
		ephemeral bool
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the push daemon with its local control API",
		Long: `Open the practice-site tab once and serve the local control API:

  POST /api/push        push button
  GET  /api/status      push state and session
  GET  /auth/github/login

Stops on SIGINT or SIGTERM after in-flight requests finish.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, ephemeral)
			if err != nil {
				return err
			}
			defer a.Close()
			if addr != "" {
				a.cfg.Addr = addr
				if os.Getenv("GITHUB_CALLBACK_URL") == "" {
					a.cfg.GitHubCallbackURL = "http://" + addr + "/auth/github/callback"
				}
			}

			ctx := cmd.Context()
			if a.cfg.ClearOnStartup {
				if err := a.store.Clear(ctx); err != nil {
					return fmt.Errorf("clearing credentials: %w", err)
				}
				a.logger.Info("credentials cleared on startup")
			}

			page, closePage, err := a.openPage(ctx)
			if err != nil {
				return explain(cmd.ErrOrStderr(), err)
			}
			defer closePage()

			c := a.newCoordinator(page)
			defer c.Subscribe(func(e coordinator.Event) {
				a.logger.Info("push state",
					slog.String("cycle", e.CycleID),
					slog.String("state", e.State.String()),
					slog.String("label", e.Affordance.Label),
				)
			})()

			srv := server.New(server.Config{Addr: a.cfg.Addr}, server.Deps{
				Pusher:      c,
				Accounts:    a.accounts,
				History:     a.history,
				GitHub:      auth.NewGitHubProvider(a.cfg.GitHubClientID, a.cfg.GitHubCallbackURL),
				Credentials: a.store,
			}, a.logger)

			return srv.Start(ctx)
		},
	}

	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "keep credentials and history in memory only")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (env LEETPUSH_ADDR)")
	addBrowserFlags(cmd)
	return cmd
}
