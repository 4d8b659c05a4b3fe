package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/leetpush/internal/config"
	"github.com/sakif/leetpush/internal/inspector"
	"github.com/sakif/leetpush/internal/inspector/document"
)

// InspectCmd returns the inspect command
func InspectCmd() *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   "inspect <page.html>",
		Short: "Show what a push would read from a saved problem page",
		Long: `Run the page inspector over an HTML file saved from a problem page and
print the problem identity, language, code and verdict it finds.

Use it to check selector overrides (LEETPUSH_SELECTOR_*) after the site
changes its markup. Nothing is submitted or pushed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			page, err := document.New(f, location, cfg.Selectors)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if problem := inspector.ResolveProblemIdentity(location); problem != nil {
				fmt.Fprintf(w, "Problem:  %s (%s)\n", problem.Slug, problem.CanonicalTitle)
			} else {
				fmt.Fprintf(w, "Problem:  %s\n", yellow.Sprint("none, pass --url with the page address"))
			}

			lang, _ := page.DetectLanguage(ctx)
			fmt.Fprintf(w, "Language: %s (.%s)\n", lang, inspector.LanguageExtension(lang))

			verdict, _ := page.ReadVerdict(ctx)
			switch verdict {
			case "":
				fmt.Fprintf(w, "Verdict:  %s\n", faint.Sprint("none"))
			case inspector.Accepted:
				fmt.Fprintf(w, "Verdict:  %s\n", green.Sprint(verdict))
			default:
				fmt.Fprintf(w, "Verdict:  %s\n", red.Sprint(verdict))
			}

			submit := red.Sprint("missing")
			if ok, _ := page.ClickSubmit(ctx); ok {
				submit = green.Sprint("found")
			}
			fmt.Fprintf(w, "Submit:   %s\n", submit)

			code, _ := page.ExtractCode(ctx)
			if !inspector.HasCode(code) {
				fmt.Fprintf(w, "Code:     %s\n", yellow.Sprint(code))
				return nil
			}
			fmt.Fprintln(w, "Code:")
			fmt.Fprintln(w, code)
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "url", "", "address the page was saved from, e.g. https://leetcode.com/problems/two-sum/")
	return cmd
}
