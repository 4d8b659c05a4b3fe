package document

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/leetpush/internal/inspector"
)

const problemPage = `<!doctype html>
<html><body>
<div id="editor">
  <button aria-haspopup="dialog"> Python3 </button>
  <div class="monaco-editor">
    <div class="view-line"><span>class Solution:</span></div>
    <div class="view-line"><span>&nbsp;&nbsp;&nbsp;&nbsp;def twoSum(self, nums, target):</span></div>
    <div class="view-line"><span>&nbsp;&nbsp;&nbsp;&nbsp;&nbsp;&nbsp;&nbsp;&nbsp;return []</span></div>
  </div>
</div>
<button data-e2e-locator="console-submit-button">Submit</button>
<span data-e2e-locator="submission-result"> Accepted </span>
</body></html>`

const emptyPage = `<html><body><div id="editor"></div></body></html>`

func newPage(t *testing.T, html string) *Page {
	t.Helper()
	p, err := New(strings.NewReader(html), "https://leetcode.com/problems/two-sum/", inspector.DefaultSelectors())
	require.NoError(t, err)
	return p
}

func TestPage_ProblemPage(t *testing.T) {
	ctx := context.Background()
	p := newPage(t, problemPage)

	verdict, err := p.ReadVerdict(ctx)
	require.NoError(t, err)
	assert.Equal(t, inspector.Accepted, verdict)

	lang, err := p.DetectLanguage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "python3", lang)

	code, err := p.ExtractCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "class Solution:\n    def twoSum(self, nums, target):\n        return []", code)

	loc, err := p.Location(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://leetcode.com/problems/two-sum/", loc)

	ok, err := p.ClickSubmit(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 1, p.Clicks())
}

func TestPage_EmptyPage(t *testing.T) {
	ctx := context.Background()
	p := newPage(t, emptyPage)

	verdict, err := p.ReadVerdict(ctx)
	require.NoError(t, err)
	assert.Empty(t, verdict)

	lang, err := p.DetectLanguage(ctx)
	require.NoError(t, err)
	assert.Equal(t, inspector.UnknownLanguage, lang)

	code, err := p.ExtractCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, inspector.NoCode, code)

	ok, err := p.ClickSubmit(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, p.Clicks())
}
