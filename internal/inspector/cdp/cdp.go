// Package cdp implements inspector.Page over a live Chrome tab driven
// through the DevTools protocol.
//
// All reads go through small JavaScript expressions rather than chromedp's
// query actions: those wait for nodes to appear, and a verdict poll or a
// missing submit button must answer immediately instead.
package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/sakif/leetpush/internal/inspector"
)

var _ inspector.Page = (*Page)(nil)

const (
	defaultActionTimeout = 10 * time.Second
	sessionCookie        = "LEETCODE_SESSION"
	sessionDomain        = ".leetcode.com"
)

// Options control how the browser is reached.
type Options struct {
	// CDPURL connects to an already running browser (ws:// or http://
	// DevTools endpoint). Empty launches a local Chrome.
	CDPURL string
	// AttachExisting reuses an open problem tab instead of opening a new
	// one. Only meaningful with CDPURL.
	AttachExisting bool
	Headless       bool
	UserDataDir    string
	// Session is a LEETCODE_SESSION cookie value injected before navigation,
	// for browsers that have never logged in (containers, fresh profiles).
	Session       string
	StartURL      string
	Selectors     inspector.Selectors
	ActionTimeout time.Duration
}

// Page is one browser tab.
type Page struct {
	tab       context.Context
	selectors inspector.Selectors
	timeout   time.Duration
}

// Open starts or connects to a browser and returns a Page for one tab. The
// returned close function releases the tab and, for launched browsers, the
// browser process.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Page, func(), error) {
	var allocCtx context.Context
	var allocCancel context.CancelFunc

	if opts.CDPURL != "" {
		logger.Info("connecting to browser", slog.String("cdp", opts.CDPURL))
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, opts.CDPURL)
	} else {
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
		)
		if opts.UserDataDir != "" {
			execOpts = append(execOpts, chromedp.UserDataDir(opts.UserDataDir))
		}
		logger.Info("launching browser",
			slog.Bool("headless", opts.Headless),
			slog.String("profile", opts.UserDataDir),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, execOpts...)
	}

	tab, tabCancel, err := openTab(allocCtx, opts, logger)
	if err != nil {
		allocCancel()
		return nil, nil, err
	}

	closeFn := func() {
		tabCancel()
		allocCancel()
	}

	var setup []chromedp.Action
	if opts.Session != "" {
		setup = append(setup, chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetCookie(sessionCookie, opts.Session).
				WithDomain(sessionDomain).
				WithPath("/").
				WithSecure(true).
				WithHTTPOnly(true).
				Do(ctx)
		}))
	}
	if opts.StartURL != "" {
		setup = append(setup, chromedp.Navigate(opts.StartURL))
	}
	// The first Run binds the browser to the tab context; it must not be a
	// short-lived derived context.
	if err := chromedp.Run(tab, setup...); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("cdp: starting tab: %w", err)
	}

	timeout := opts.ActionTimeout
	if timeout <= 0 {
		timeout = defaultActionTimeout
	}

	return &Page{tab: tab, selectors: opts.Selectors, timeout: timeout}, closeFn, nil
}

func openTab(allocCtx context.Context, opts Options, logger *slog.Logger) (context.Context, context.CancelFunc, error) {
	if !opts.AttachExisting || opts.CDPURL == "" {
		tab, cancel := chromedp.NewContext(allocCtx)
		return tab, cancel, nil
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		return nil, nil, fmt.Errorf("cdp: connecting: %w", err)
	}
	targets, err := chromedp.Targets(browserCtx)
	if err != nil {
		browserCancel()
		return nil, nil, fmt.Errorf("cdp: listing targets: %w", err)
	}
	for _, t := range targets {
		if t.Type == "page" && inspector.ResolveProblemIdentity(t.URL) != nil {
			logger.Info("attaching to open problem tab", slog.String("url", t.URL))
			tab, tabCancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(t.TargetID))
			return tab, func() { tabCancel(); browserCancel() }, nil
		}
	}
	logger.Warn("no open problem tab found, opening a new one")
	tab, tabCancel := chromedp.NewContext(browserCtx)
	return tab, func() { tabCancel(); browserCancel() }, nil
}

// run executes actions on the tab, bounded by the action timeout and by ctx.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(p.tab, p.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (p *Page) ReadVerdict(ctx context.Context) (string, error) {
	var text string
	if err := p.run(ctx, chromedp.Evaluate(textOf(p.selectors.Verdict), &text)); err != nil {
		return "", fmt.Errorf("cdp: reading verdict: %w", err)
	}
	return inspector.NormalizeVerdict(text), nil
}

func (p *Page) DetectLanguage(ctx context.Context) (string, error) {
	var text string
	if err := p.run(ctx, chromedp.Evaluate(textOf(p.selectors.Language), &text)); err != nil {
		return inspector.UnknownLanguage, fmt.Errorf("cdp: detecting language: %w", err)
	}
	return inspector.NormalizeLanguage(text), nil
}

func (p *Page) ExtractCode(ctx context.Context) (string, error) {
	var lines []string
	expr := fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).map(el => el.innerText)`, jsString(p.selectors.CodeLine))
	if err := p.run(ctx, chromedp.Evaluate(expr, &lines)); err != nil {
		return inspector.NoCode, fmt.Errorf("cdp: extracting code: %w", err)
	}
	return inspector.JoinCodeLines(lines), nil
}

func (p *Page) Location(ctx context.Context) (string, error) {
	var loc string
	if err := p.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("cdp: reading location: %w", err)
	}
	return loc, nil
}

func (p *Page) ClickSubmit(ctx context.Context) (bool, error) {
	var clicked bool
	expr := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) return false;
		el.click();
		return true;
	})()`, jsString(p.selectors.Submit))
	if err := p.run(ctx, chromedp.Evaluate(expr, &clicked)); err != nil {
		return false, fmt.Errorf("cdp: clicking submit: %w", err)
	}
	return clicked, nil
}

func textOf(selector string) string {
	return fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		return el ? (el.innerText || el.textContent || "") : "";
	})()`, jsString(selector))
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
