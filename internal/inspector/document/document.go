// Package document implements inspector.Page over a saved HTML snapshot of a
// problem page, using goquery selectors.
//
// It backs `leetpush inspect` for checking selectors against a saved page
// and gives tests a real DOM without a browser.
package document

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"

	"github.com/sakif/leetpush/internal/inspector"
)

var _ inspector.Page = (*Page)(nil)

type Page struct {
	doc       *goquery.Document
	location  string
	selectors inspector.Selectors
	clicks    atomic.Int64
}

// New parses an HTML document that was saved from location.
func New(r io.Reader, location string, selectors inspector.Selectors) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("document: parsing html: %w", err)
	}
	return &Page{doc: doc, location: location, selectors: selectors}, nil
}

func (p *Page) ReadVerdict(ctx context.Context) (string, error) {
	return inspector.NormalizeVerdict(p.doc.Find(p.selectors.Verdict).First().Text()), nil
}

func (p *Page) DetectLanguage(ctx context.Context) (string, error) {
	return inspector.NormalizeLanguage(p.doc.Find(p.selectors.Language).First().Text()), nil
}

func (p *Page) ExtractCode(ctx context.Context) (string, error) {
	lines := p.doc.Find(p.selectors.CodeLine).Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
	return inspector.JoinCodeLines(lines), nil
}

func (p *Page) Location(ctx context.Context) (string, error) {
	return p.location, nil
}

// ClickSubmit records the activation. A saved document cannot submit
// anything; Clicks lets callers observe how often it was asked to.
func (p *Page) ClickSubmit(ctx context.Context) (bool, error) {
	if p.doc.Find(p.selectors.Submit).Length() == 0 {
		return false, nil
	}
	p.clicks.Add(1)
	return true, nil
}

func (p *Page) Clicks() int64 {
	return p.clicks.Load()
}
