// Package inspector reads problem identity, editor code and submission
// verdicts from a practice-site page.
//
// The state machine never touches a document directly. It talks to a Page,
// which is implemented over a live browser tab (package cdp) and over a
// saved HTML document (package document); tests use fakes.
package inspector

import (
	"context"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sakif/leetpush/internal/model"
)

const (
	// NoCode is what ExtractCode returns when the editor has no lines.
	NoCode = "// No code found"
	// UnknownLanguage is what DetectLanguage returns when no label is found.
	UnknownLanguage = "unknown"
	// Accepted is the verdict literal for a passing submission.
	Accepted = "Accepted"

	defaultExtension = "txt"
	problemMarker    = "problems"
)

// Page is the capability the push pipeline needs from the host page.
type Page interface {
	// ReadVerdict returns the rendered verdict text, or "" while none is
	// shown. It has no side effects and is safe to poll.
	ReadVerdict(ctx context.Context) (string, error)
	// DetectLanguage returns the normalised editor language or UnknownLanguage.
	DetectLanguage(ctx context.Context) (string, error)
	// ExtractCode returns the editor contents or NoCode.
	ExtractCode(ctx context.Context) (string, error)
	// Location returns the page URL.
	Location(ctx context.Context) (string, error)
	// ClickSubmit activates the native submit control. It reports false,
	// without error, when no control can be located.
	ClickSubmit(ctx context.Context) (bool, error)
}

// Selectors locate page elements. They change whenever the host site ships
// new markup, so they are configuration rather than constants.
type Selectors struct {
	Verdict  string
	Language string
	CodeLine string
	Submit   string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Verdict:  `[data-e2e-locator="submission-result"]`,
		Language: `#editor button[aria-haspopup="dialog"]`,
		CodeLine: `.view-line`,
		Submit:   `[data-e2e-locator="console-submit-button"]`,
	}
}

// WithOverrides returns s with every non-empty field of o applied.
func (s Selectors) WithOverrides(o Selectors) Selectors {
	if o.Verdict != "" {
		s.Verdict = o.Verdict
	}
	if o.Language != "" {
		s.Language = o.Language
	}
	if o.CodeLine != "" {
		s.CodeLine = o.CodeLine
	}
	if o.Submit != "" {
		s.Submit = o.Submit
	}
	return s
}

var extensions = map[string]string{
	"python":     "py",
	"python3":    "py",
	"cpp":        "cpp",
	"c++":        "cpp",
	"java":       "java",
	"javascript": "js",
	"typescript": "ts",
	"c":          "c",
	"csharp":     "cs",
	"c#":         "cs",
	"ruby":       "rb",
	"go":         "go",
	"golang":     "go",
	"rust":       "rs",
	"swift":      "swift",
	"kotlin":     "kt",
	"scala":      "scala",
	"php":        "php",
}

// LanguageExtension maps an editor language label to a file extension,
// falling back to "txt".
func LanguageExtension(lang string) string {
	if ext, ok := extensions[NormalizeLanguage(lang)]; ok {
		return ext
	}
	return defaultExtension
}

// NormalizeLanguage trims and lower-cases a label; empty becomes UnknownLanguage.
func NormalizeLanguage(raw string) string {
	lang := strings.ToLower(strings.TrimSpace(raw))
	if lang == "" {
		return UnknownLanguage
	}
	return lang
}

// JoinCodeLines concatenates editor lines in document order. The editor
// renders indentation with non-breaking spaces; those become plain spaces.
func JoinCodeLines(lines []string) string {
	if len(lines) == 0 {
		return NoCode
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(strings.ReplaceAll(line, "\u00a0", " "))
		b.WriteByte('\n')
	}
	code := strings.TrimSpace(b.String())
	if code == "" {
		return NoCode
	}
	return code
}

// HasCode reports whether code is pushable: non-empty and not the sentinel.
func HasCode(code string) bool {
	code = strings.TrimSpace(code)
	return code != "" && code != NoCode
}

// NormalizeVerdict trims surrounding whitespace from rendered verdict text.
func NormalizeVerdict(raw string) string {
	return strings.TrimSpace(raw)
}

// ResolveProblemIdentity derives the slug from the path segment after
// "/problems/" and title-cases it into "Two_Sum" form. It returns nil when
// the location is not a problem page.
func ResolveProblemIdentity(location string) *model.ProblemIdentity {
	u, err := url.Parse(location)
	if err != nil {
		return nil
	}
	parts := strings.Split(u.Path, "/")
	for i, part := range parts {
		if part != problemMarker || i+1 >= len(parts) {
			continue
		}
		slug := parts[i+1]
		if slug == "" {
			return nil
		}
		return &model.ProblemIdentity{Slug: slug, CanonicalTitle: CanonicalTitle(slug)}
	}
	return nil
}

// CanonicalTitle turns "two-sum" into "Two_Sum".
func CanonicalTitle(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, "_")
}
