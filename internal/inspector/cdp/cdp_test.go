package cdp_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/leetpush/internal/inspector"
	"github.com/sakif/leetpush/internal/inspector/cdp"
)

const problemPage = `<!doctype html>
<html><body>
<div id="editor">
  <button aria-haspopup="dialog">Python3</button>
  <div class="view-line">class Solution:</div>
  <div class="view-line">&nbsp;&nbsp;&nbsp;&nbsp;pass</div>
</div>
<button data-e2e-locator="console-submit-button"
  onclick="document.getElementById('result').innerHTML = '<span data-e2e-locator=&quot;submission-result&quot;>Accepted</span>'">Submit</button>
<div id="result"></div>
</body></html>`

// Runs against a locally installed Chrome.
func TestPage_LiveTab(t *testing.T) {
	if os.Getenv("LEETPUSH_CHROME_TESTS") == "" {
		t.Skip("set LEETPUSH_CHROME_TESTS=1 to run against a local Chrome")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(problemPage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	page, closePage, err := cdp.Open(ctx, cdp.Options{
		Headless:  true,
		StartURL:  srv.URL + "/problems/two-sum/",
		Selectors: inspector.DefaultSelectors(),
	}, logger)
	require.NoError(t, err)
	defer closePage()

	loc, err := page.Location(ctx)
	require.NoError(t, err)
	assert.Equal(t, "two-sum", inspector.ResolveProblemIdentity(loc).Slug)

	lang, err := page.DetectLanguage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "python3", lang)

	code, err := page.ExtractCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "class Solution:\n    pass", code)

	verdict, err := page.ReadVerdict(ctx)
	require.NoError(t, err)
	assert.Empty(t, verdict, "no verdict before submitting")

	clicked, err := page.ClickSubmit(ctx)
	require.NoError(t, err)
	assert.True(t, clicked)

	verdict, err = page.ReadVerdict(ctx)
	require.NoError(t, err)
	assert.Equal(t, inspector.Accepted, verdict)
}
