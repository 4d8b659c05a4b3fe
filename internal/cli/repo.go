package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RepoCmd returns the repo command
func RepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage the GitHub repository solutions are pushed to",
	}

	cmd.AddCommand(repoSetCmd())
	cmd.AddCommand(repoListCmd())
	cmd.AddCommand(repoOpenCmd())

	return cmd
}

func repoSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <owner/name>",
		Short: "Select the push target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.accounts.SelectRepository(cmd.Context(), args[0]); err != nil {
				return explain(cmd.ErrOrStderr(), err)
			}
			green.Fprintf(cmd.OutOrStdout(), "Pushing to %s\n", args[0])
			return nil
		},
	}
}

func repoListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your GitHub repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			repos, err := a.accounts.Repositories(ctx)
			if err != nil {
				return explain(cmd.ErrOrStderr(), err)
			}
			cred, err := a.store.Load(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(repos) == 0 {
				fmt.Fprintln(w, "No repositories found")
				return nil
			}
			for _, r := range repos {
				marker := "  "
				if r.FullName == cred.SelectedRepository {
					marker = green.Sprint("* ")
				}
				name := r.FullName
				if r.Private {
					name += faint.Sprint(" (private)")
				}
				fmt.Fprintf(w, "%s%s\n", marker, name)
			}
			return nil
		},
	}
}

func repoOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Print the web URL of the selected repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			url, err := a.accounts.SelectedRepositoryURL(cmd.Context())
			if err != nil {
				return explain(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}
