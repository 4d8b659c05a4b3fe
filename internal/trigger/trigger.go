// Package trigger fires the host page's native submission.
package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/inspector"
)

// Trigger activates the submit control. It never waits for a verdict.
type Trigger struct {
	page     inspector.Page
	selector string
	logger   *slog.Logger
	fired    atomic.Int64
}

// New returns a Trigger for page. selector is only used in error messages;
// the page already knows how to find its control.
func New(page inspector.Page, selector string, logger *slog.Logger) *Trigger {
	return &Trigger{page: page, selector: selector, logger: logger}
}

// Fire clicks the submit control once. A missing control is reported as
// SubmitControlNotFound and counts as an invocation.
func (t *Trigger) Fire(ctx context.Context) error {
	t.fired.Add(1)

	clicked, err := t.page.ClickSubmit(ctx)
	if err != nil {
		return fmt.Errorf("trigger: clicking submit: %w", err)
	}
	if !clicked {
		t.logger.Warn("submit control not found", slog.String("selector", t.selector))
		return apperror.SubmitControlNotFound(t.selector)
	}

	t.logger.Debug("submission fired")
	return nil
}

// Invocations returns how many times Fire has been called.
func (t *Trigger) Invocations() int64 {
	return t.fired.Load()
}
