package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/coordinator"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

// hints maps error kinds to the command that fixes them.
var hints = map[string]string{
	"AuthExpired":           "run `leetpush login`",
	"NoRepositorySelected":  "run `leetpush repo set <owner/name>`",
	"SubmitControlNotFound": "check LEETPUSH_SELECTOR_SUBMIT against the page",
	"NoProblemContext":      "open a problem page in the browser",
	"NetworkFailure":        "check LEETPUSH_API_BASE_URL and your connection",
}

func printResult(w io.Writer, res *coordinator.Result) {
	switch res.State {
	case coordinator.Succeeded:
		c := green
		if res.Outcome != "created" {
			c = yellow
		}
		c.Fprintf(w, "%s", res.Affordance.Label)
		if res.Filename != "" {
			fmt.Fprintf(w, "  %s", res.Filename)
		}
		fmt.Fprintln(w)
	default:
		red.Fprintf(w, "%s", res.Affordance.Label)
		fmt.Fprintf(w, "  (%s)\n", res.ErrorKind)
		if res.Error != "" {
			faint.Fprintf(w, "  %s\n", res.Error)
		}
		printHint(w, res.ErrorKind)
	}
	faint.Fprintf(w, "  cycle %s: %s\n", res.CycleID, pathString(res.Path))
}

func printHint(w io.Writer, kind string) {
	if hint, ok := hints[kind]; ok {
		cyan.Fprintf(w, "  hint: %s\n", hint)
	}
}

// explain prints the hint for err's kind, if any, and returns err for cobra
// to report.
func explain(w io.Writer, err error) error {
	printHint(w, apperror.KindOf(err))
	return err
}

func pathString(path []coordinator.State) string {
	s := ""
	for i, st := range path {
		if i > 0 {
			s += " → "
		}
		s += st.String()
	}
	return s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}
