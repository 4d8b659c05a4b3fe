package model

import (
	"fmt"
	"time"
)

// ProblemIdentity identifies a problem on the practice site.
type ProblemIdentity struct {
	Slug           string `json:"slug"`           // e.g. "two-sum"
	CanonicalTitle string `json:"canonicalTitle"` // e.g. "Two_Sum"
}

// Snapshot is the extracted editor content for one push attempt.
type Snapshot struct {
	SourceText        string `json:"sourceText"`
	LanguageExtension string `json:"languageExtension"`
}

// PushRequest is the unit sent to the backend. It is built once per cycle
// and never modified afterwards.
type PushRequest struct {
	Filename     string `json:"filename"`
	Code         string `json:"code"`
	SelectedRepo string `json:"selected_repo"`
}

// NewPushRequest builds the request for a resolved problem and snapshot.
// The filename is "<numericID>_<CanonicalTitle>.<ext>".
func NewPushRequest(numericID string, problem ProblemIdentity, snap Snapshot, repo string) PushRequest {
	return PushRequest{
		Filename:     fmt.Sprintf("%s_%s.%s", numericID, problem.CanonicalTitle, snap.LanguageExtension),
		Code:         snap.SourceText,
		SelectedRepo: repo,
	}
}

// PushOutcome is the backend-declared result of a push.
type PushOutcome string

const (
	OutcomeCreated   PushOutcome = "created"
	OutcomeDuplicate PushOutcome = "duplicate"
	OutcomeUnchanged PushOutcome = "unchanged"
	OutcomeFailed    PushOutcome = "failed"
)

// PushResponse is the decoded body of POST /push-code.
type PushResponse struct {
	Message    string      `json:"message"`
	Outcome    PushOutcome `json:"outcome,omitempty"`
	PushedAt   *Timestamp  `json:"pushed_at,omitempty"`
	Difficulty string      `json:"difficulty,omitempty"`
	Point      int         `json:"point,omitempty"`
}

// HistoryEntry is one locally recorded successful push.
type HistoryEntry struct {
	ID         string      `json:"id"`
	CycleID    string      `json:"cycleId"`
	Filename   string      `json:"filename"`
	Repository string      `json:"repository"`
	Outcome    PushOutcome `json:"outcome"`
	Digest     string      `json:"digest"`
	PushedAt   time.Time   `json:"pushedAt"`
}
