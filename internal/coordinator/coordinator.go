// Package coordinator runs push cycles: submit the solution on the host
// page, wait for the verdict, and push accepted code to the backend.
//
// At most one cycle runs at a time. A second Push while one is in flight
// returns apperror.ErrBusy without touching the page or the backend, so the
// real submission is never fired twice.
package coordinator

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
	"golang.org/x/crypto/blake2b"

	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/auth"
	"github.com/sakif/leetpush/internal/inspector"
	"github.com/sakif/leetpush/internal/model"
	"github.com/sakif/leetpush/internal/monitor"
	"github.com/sakif/leetpush/internal/repository"
)

// Submitter fires the host page's submission.
type Submitter interface {
	Fire(ctx context.Context) error
}

// VerdictWaiter waits for the host page's verdict.
type VerdictWaiter interface {
	Await(ctx context.Context) (monitor.Result, error)
}

// IDResolver maps a problem slug to its zero-padded display number.
type IDResolver interface {
	ResolveNumericID(ctx context.Context, slug string) (string, bool)
}

// Backend is the part of the backend API a cycle uses.
type Backend interface {
	PushCode(ctx context.Context, token string, req model.PushRequest) (*model.PushResponse, error)
	Stats(ctx context.Context, token string) (*model.Stats, error)
}

// Deps are the collaborators of a Coordinator. History and Now are optional.
type Deps struct {
	Page        inspector.Page
	Trigger     Submitter
	Monitor     VerdictWaiter
	Resolver    IDResolver
	Backend     Backend
	Credentials repository.CredentialRepository
	History     repository.HistoryRepository
	Logger      *slog.Logger
	Now         func() time.Time
}

// Result describes one finished cycle.
type Result struct {
	CycleID    string            `json:"cycleId"`
	State      State             `json:"state"` // Succeeded or Failed
	Path       []State           `json:"path"`
	Outcome    model.PushOutcome `json:"outcome,omitempty"`
	Filename   string            `json:"filename,omitempty"`
	Verdict    string            `json:"verdict,omitempty"`
	PushedAt   *time.Time        `json:"pushedAt,omitempty"`
	ErrorKind  string            `json:"errorKind,omitempty"`
	Error      string            `json:"error,omitempty"`
	Affordance Affordance        `json:"affordance"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`

	Err error `json:"-"`
}

// Event is emitted on every state entry.
type Event struct {
	CycleID    string     `json:"cycleId"`
	State      State      `json:"state"`
	Affordance Affordance `json:"affordance"`
}

// Status is a point-in-time view of the coordinator.
type Status struct {
	State      State        `json:"state"`
	Busy       bool         `json:"busy"`
	CycleID    string       `json:"cycleId,omitempty"`
	Affordance Affordance   `json:"affordance"`
	Last       *Result      `json:"last,omitempty"`
	Stats      *model.Stats `json:"stats,omitempty"`
	StatsAt    *time.Time   `json:"statsAt,omitempty"`
}

type Coordinator struct {
	deps   Deps
	logger *slog.Logger
	now    func() time.Time

	busy atomic.Bool

	mu          sync.Mutex
	state       State
	cycleID     string
	affordance  Affordance
	last        *Result
	stats       *model.Stats
	statsAt     time.Time
	subscribers map[int]func(Event)
	nextSub     int
}

func New(deps Deps) *Coordinator {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		deps:        deps,
		logger:      logger,
		now:         now,
		state:       Idle,
		affordance:  progressAffordance(Idle),
		subscribers: make(map[int]func(Event)),
	}
}

// Subscribe registers fn for state events and returns a function that
// removes it. fn runs on the cycle's goroutine and must not block.
func (c *Coordinator) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Status{
		State:      c.state,
		Busy:       c.busy.Load(),
		CycleID:    c.cycleID,
		Affordance: c.affordance,
		Last:       c.last,
		Stats:      c.stats,
	}
	if !c.statsAt.IsZero() {
		at := c.statsAt
		s.StatsAt = &at
	}
	return s
}

// Push runs one cycle to completion. The only error it returns is
// apperror.ErrBusy; every cycle failure is reported in the Result.
func (c *Coordinator) Push(ctx context.Context) (*Result, error) {
	if !c.busy.CompareAndSwap(false, true) {
		c.logger.Info("push ignored, cycle in flight")
		return nil, apperror.Busy()
	}

	res := func() *Result {
		defer c.busy.Store(false)
		return c.runCycle(ctx)
	}()

	c.refreshStats(ctx)
	return res, nil
}

func (c *Coordinator) runCycle(ctx context.Context) (res *Result) {
	res = &Result{CycleID: xid.New().String(), StartedAt: c.now()}
	logger := c.logger.With(slog.String("cycle", res.CycleID))

	c.mu.Lock()
	c.cycleID = res.CycleID
	c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("push cycle panicked", slog.Any("panic", r))
			c.fail(res, fmt.Errorf("coordinator: panic: %v", r))
		}
		res.FinishedAt = c.now()
		logger.Info("push cycle finished",
			slog.String("state", res.State.String()),
			slog.String("outcome", string(res.Outcome)),
			slog.String("error_kind", res.ErrorKind),
			slog.Duration("duration", res.FinishedAt.Sub(res.StartedAt)),
		)

		c.mu.Lock()
		c.last = res
		c.cycleID = ""
		c.mu.Unlock()
		c.enter(res, Idle, progressAffordance(Idle))
	}()

	cred, err := c.deps.Credentials.Load(ctx)
	if err != nil {
		c.fail(res, fmt.Errorf("coordinator: loading credentials: %w", err))
		return res
	}
	if cred.SelectedRepository == "" {
		c.fail(res, apperror.NoRepositorySelected())
		return res
	}
	if err := auth.CheckToken(cred.BearerToken, c.now()); err != nil {
		c.fail(res, err)
		return res
	}

	c.enter(res, Submitting, progressAffordance(Submitting))
	if err := c.deps.Trigger.Fire(ctx); err != nil {
		c.fail(res, err)
		return res
	}

	c.enter(res, AwaitingVerdict, progressAffordance(AwaitingVerdict))
	verdict, err := c.deps.Monitor.Await(ctx)
	if err != nil {
		c.fail(res, fmt.Errorf("coordinator: awaiting verdict: %w", err))
		return res
	}
	res.Verdict = verdict.Verdict
	switch verdict.Status {
	case monitor.StatusAccepted:
		c.enter(res, Accepted, progressAffordance(Accepted))
	case monitor.StatusRejected:
		c.enter(res, Rejected, progressAffordance(Rejected))
		c.fail(res, apperror.VerdictRejected(verdict.Verdict))
		return res
	default:
		c.enter(res, TimedOut, progressAffordance(TimedOut))
		c.fail(res, apperror.VerdictTimedOut(verdict.Attempts))
		return res
	}

	c.enter(res, BuildingRequest, progressAffordance(BuildingRequest))
	req, err := c.buildRequest(ctx, cred.SelectedRepository)
	if err != nil {
		c.fail(res, err)
		return res
	}
	res.Filename = req.Filename

	c.enter(res, Calling, progressAffordance(Calling))
	resp, err := c.deps.Backend.PushCode(ctx, cred.BearerToken, req)
	if err != nil {
		logger.Warn("push call failed", slog.String("filename", req.Filename), slog.String("error", err.Error()))
		c.fail(res, err)
		return res
	}

	res.Outcome = resp.Outcome
	if resp.Outcome == model.OutcomeCreated {
		at := c.now()
		if t := resp.PushedAt.Ptr(); t != nil {
			at = *t
		}
		res.PushedAt = &at
		if err := c.deps.Credentials.SetLastPush(ctx, at); err != nil {
			logger.Warn("could not record last push", slog.String("error", err.Error()))
		}
	}
	c.record(ctx, logger, res, req)

	res.State = Succeeded
	res.Affordance = outcomeAffordance(res.Outcome)
	c.enter(res, Succeeded, res.Affordance)
	return res
}

// buildRequest reads identity, code and number in that order. Each missing
// piece stops the cycle before any backend call.
func (c *Coordinator) buildRequest(ctx context.Context, repo string) (model.PushRequest, error) {
	loc, err := c.deps.Page.Location(ctx)
	if err != nil {
		return model.PushRequest{}, fmt.Errorf("coordinator: reading location: %w", err)
	}
	problem := inspector.ResolveProblemIdentity(loc)
	if problem == nil {
		return model.PushRequest{}, apperror.NoProblemContext(loc)
	}

	code, err := c.deps.Page.ExtractCode(ctx)
	if err != nil {
		return model.PushRequest{}, fmt.Errorf("coordinator: extracting code: %w", err)
	}
	if !inspector.HasCode(code) {
		return model.PushRequest{}, apperror.EmptyCode()
	}

	lang, err := c.deps.Page.DetectLanguage(ctx)
	if err != nil {
		c.logger.Debug("language detection failed", slog.String("error", err.Error()))
		lang = inspector.UnknownLanguage
	}

	id, ok := c.deps.Resolver.ResolveNumericID(ctx, problem.Slug)
	if !ok {
		return model.PushRequest{}, apperror.IDResolutionFailed(problem.Slug)
	}

	snap := model.Snapshot{SourceText: code, LanguageExtension: inspector.LanguageExtension(lang)}
	return model.NewPushRequest(id, *problem, snap, repo), nil
}

// record appends a successful push to the local history.
func (c *Coordinator) record(ctx context.Context, logger *slog.Logger, res *Result, req model.PushRequest) {
	if c.deps.History == nil {
		return
	}
	entry := &model.HistoryEntry{
		CycleID:    res.CycleID,
		Filename:   req.Filename,
		Repository: req.SelectedRepo,
		Outcome:    res.Outcome,
		Digest:     Digest(req.Filename, req.Code),
		PushedAt:   c.now(),
	}
	if res.PushedAt != nil {
		entry.PushedAt = *res.PushedAt
	}
	if err := c.deps.History.Append(ctx, entry); err != nil {
		logger.Warn("could not record push history", slog.String("error", err.Error()))
	}
}

func (c *Coordinator) fail(res *Result, err error) {
	res.State = Failed
	res.Err = err
	res.Error = err.Error()
	res.ErrorKind = apperror.KindOf(err)
	res.Affordance = failureAffordance(err)
	c.enter(res, Failed, res.Affordance)
}

// enter records a state transition and notifies subscribers.
func (c *Coordinator) enter(res *Result, s State, a Affordance) {
	res.Path = append(res.Path, s)

	c.mu.Lock()
	c.state = s
	if s == Idle && res.State != 0 {
		// Idle after a finished cycle keeps showing its outcome.
		c.affordance = res.Affordance
	} else {
		c.affordance = a
	}
	subs := make([]func(Event), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	affordance := c.affordance
	c.mu.Unlock()

	ev := Event{CycleID: res.CycleID, State: s, Affordance: affordance}
	for _, fn := range subs {
		fn(ev)
	}
}

// refreshStats re-reads the user's stats after a cycle. Failure is logged
// and never changes the cycle's result.
func (c *Coordinator) refreshStats(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	cred, err := c.deps.Credentials.Load(ctx)
	if err != nil || !cred.Authenticated() {
		return
	}
	stats, err := c.deps.Backend.Stats(ctx, cred.BearerToken)
	if err != nil {
		c.logger.Warn("stats refresh failed", slog.String("error", err.Error()))
		return
	}

	c.mu.Lock()
	c.stats = stats
	c.statsAt = c.now()
	c.mu.Unlock()
}

// Digest fingerprints a pushed snapshot by filename and code.
func Digest(filename, code string) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(filename))
	h.Write([]byte{0})
	h.Write([]byte(code))
	return hex.EncodeToString(h.Sum(nil))
}

func verdictOf(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Verdict
	}
	return ""
}
