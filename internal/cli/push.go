package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/leetpush/internal/coordinator"
)

// PushCmd returns the push command
func PushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Submit the open problem and push the accepted solution",
		Long: `Submit the solution in the open problem tab, wait for the verdict and,
when it is Accepted, push the code to the selected GitHub repository.

The browser is reached as configured by LEETPUSH_BROWSER (exec, remote or
docker). Use "leetpush serve" to keep one browser session open between pushes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			page, closePage, err := a.openPage(ctx)
			if err != nil {
				return explain(cmd.ErrOrStderr(), err)
			}
			defer closePage()

			c := a.newCoordinator(page)
			unsubscribe := c.Subscribe(func(e coordinator.Event) {
				a.logger.Debug("state", slog.String("state", e.State.String()))
				faint.Fprintf(cmd.ErrOrStderr(), "%s\n", e.Affordance.Label)
			})
			defer unsubscribe()

			res, err := c.Push(ctx)
			if err != nil {
				return explain(cmd.ErrOrStderr(), err)
			}
			printResult(cmd.OutOrStdout(), res)
			if res.State != coordinator.Succeeded {
				return fmt.Errorf("push failed: %s", res.ErrorKind)
			}
			return nil
		},
	}

	addBrowserFlags(cmd)
	return cmd
}
