package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/leetpush/internal/model"
	"github.com/sakif/leetpush/internal/service"
)

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List pushes recorded on this machine",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if len(args) == 1 {
				e, err := a.history.Get(ctx, args[0])
				if err != nil {
					return explain(cmd.ErrOrStderr(), err)
				}
				fmt.Fprintf(w, "ID:         %s\n", e.ID)
				fmt.Fprintf(w, "Cycle:      %s\n", e.CycleID)
				fmt.Fprintf(w, "File:       %s\n", e.Filename)
				fmt.Fprintf(w, "Repository: %s\n", e.Repository)
				fmt.Fprintf(w, "Outcome:    %s\n", outcomeString(e.Outcome))
				fmt.Fprintf(w, "Pushed:     %s\n", formatTime(&e.PushedAt))
				fmt.Fprintf(w, "Digest:     %s\n", e.Digest)
				return nil
			}

			entries, err := a.history.List(ctx, limit, offset)
			if err != nil {
				return explain(cmd.ErrOrStderr(), err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(w, "No pushes recorded")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(w, "%s  %s  %-9s  %s  %s\n",
					faint.Sprint(e.ID),
					formatTime(&e.PushedAt),
					outcomeString(e.Outcome),
					e.Filename,
					faint.Sprint(e.Repository),
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", service.DefaultListLimit, "maximum number of entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "entries to skip")
	return cmd
}

func outcomeString(o model.PushOutcome) string {
	switch o {
	case model.OutcomeCreated:
		return green.Sprint(o)
	case model.OutcomeFailed:
		return red.Sprint(o)
	default:
		return yellow.Sprint(o)
	}
}
