package cli

import (
	"github.com/spf13/cobra"
)

// RootCmd returns the leetpush command tree.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "leetpush",
		Short: "Push accepted LeetCode solutions to GitHub",
		Long: `leetpush drives your browser's LeetCode tab: it submits the open
solution, waits for the verdict and pushes accepted code to a GitHub
repository through the leetpush backend.

Settings come from the environment and an optional .env file.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(PushCmd())

	// Account
	rootCmd.AddCommand(LoginCmd())
	rootCmd.AddCommand(LogoutCmd())
	rootCmd.AddCommand(StatusCmd())
	rootCmd.AddCommand(StatsCmd())
	rootCmd.AddCommand(RepoCmd())

	// Local tools
	rootCmd.AddCommand(HistoryCmd())
	rootCmd.AddCommand(InspectCmd())

	return rootCmd
}
