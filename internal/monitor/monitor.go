// Package monitor waits for the host page to render a submission verdict.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sakif/leetpush/internal/inspector"
	"github.com/sakif/leetpush/internal/poll"
)

const (
	DefaultInterval    = time.Second
	DefaultMaxAttempts = 20
)

type Status int

const (
	StatusAccepted Status = iota + 1
	StatusRejected
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	case StatusTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Result is the outcome of one wait. Verdict holds the literal text for
// Accepted and Rejected.
type Result struct {
	Status   Status
	Verdict  string
	Attempts int
}

// Monitor polls a page's verdict every Interval up to MaxAttempts times.
// The first check happens one interval after Await starts, so a verdict
// left over from an earlier submission has a chance to clear.
type Monitor struct {
	page        inspector.Page
	interval    time.Duration
	maxAttempts int
	logger      *slog.Logger
}

func New(page inspector.Page, interval time.Duration, maxAttempts int, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Monitor{page: page, interval: interval, maxAttempts: maxAttempts, logger: logger}
}

// Await blocks until a verdict appears, the attempt budget runs out, or ctx
// is done. Read errors count as "no verdict yet". Only context cancellation
// returns an error.
func (m *Monitor) Await(ctx context.Context) (Result, error) {
	verdict, attempts, err := poll.Until(ctx, m.interval, m.maxAttempts,
		func(ctx context.Context, attempt int) (string, bool, error) {
			v, err := m.page.ReadVerdict(ctx)
			if err != nil {
				m.logger.Debug("verdict read failed", slog.Int("attempt", attempt), slog.String("error", err.Error()))
				return "", false, nil
			}
			return v, v != "", nil
		})

	switch {
	case errors.Is(err, poll.ErrExhausted):
		m.logger.Info("no verdict", slog.Int("attempts", attempts))
		return Result{Status: StatusTimedOut, Attempts: attempts}, nil
	case err != nil:
		return Result{Attempts: attempts}, err
	case verdict == inspector.Accepted:
		return Result{Status: StatusAccepted, Verdict: verdict, Attempts: attempts}, nil
	default:
		m.logger.Info("submission rejected", slog.String("verdict", verdict), slog.Int("attempts", attempts))
		return Result{Status: StatusRejected, Verdict: verdict, Attempts: attempts}, nil
	}
}

// MaxAttempts returns the configured attempt budget.
func (m *Monitor) MaxAttempts() int {
	return m.maxAttempts
}
