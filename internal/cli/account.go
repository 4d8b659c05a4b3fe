package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// LogoutCmd returns the logout command
func LogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session and push target",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.accounts.Logout(cmd.Context()); err != nil {
				return explain(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session, push target and last push",
		Long: `Show the stored session after refreshing it from the backend.

Backend values for last login, last push and the selected repository win
over the stored ones.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			session, err := a.accounts.Session(cmd.Context())
			if err != nil {
				return explain(cmd.ErrOrStderr(), err)
			}

			w := cmd.OutOrStdout()
			switch {
			case !session.LoggedIn:
				yellow.Fprintln(w, "Not logged in")
				printHint(w, "AuthExpired")
				return nil
			case session.Expired:
				red.Fprintf(w, "Session expired for %s\n", session.Username)
				printHint(w, "AuthExpired")
			default:
				green.Fprintf(w, "Logged in as %s\n", session.Username)
			}

			repo := session.SelectedRepository
			if repo == "" {
				repo = yellow.Sprint("(none)")
			}
			fmt.Fprintf(w, "  Repository: %s\n", repo)
			fmt.Fprintf(w, "  Last push:  %s\n", formatTime(session.LastPushAt))
			fmt.Fprintf(w, "  Last login: %s\n", formatTime(session.LastLoginAt))
			return nil
		},
	}
}

// StatsCmd returns the stats command
func StatsCmd() *cobra.Command {
	var streak bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show solved counts from the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			stats, err := a.accounts.Stats(ctx)
			if err != nil {
				return explain(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintf(w, "Solved: %s\n", green.Sprint(stats.TotalSolved))

			langs := make([]string, 0, len(stats.ByLanguage))
			for lang := range stats.ByLanguage {
				langs = append(langs, lang)
			}
			sort.Strings(langs)
			for _, lang := range langs {
				fmt.Fprintf(w, "  %-6s %d\n", lang, stats.ByLanguage[lang])
			}

			if len(stats.Recent) > 0 {
				fmt.Fprintln(w, "Recent:")
				for _, r := range stats.Recent {
					fmt.Fprintf(w, "  %s  %s\n", faint.Sprint(r.Timestamp.Local().Format("2006-01-02 15:04")), r.Filename)
				}
			}

			if streak {
				s, err := a.accounts.Streak(ctx)
				if err != nil {
					return explain(cmd.ErrOrStderr(), err)
				}
				fmt.Fprintf(w, "Streak: %s day(s), %d freeze(s) used\n", green.Sprint(s.Streak), s.FrozenUsed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&streak, "streak", false, "also show the current push streak")
	return cmd
}
