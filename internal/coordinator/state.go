package coordinator

import (
	"fmt"

	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/model"
)

// State is a push cycle state.
type State int

const (
	Idle State = iota
	Submitting
	AwaitingVerdict
	Accepted
	Rejected
	TimedOut
	BuildingRequest
	Calling
	Succeeded
	Failed
)

var stateNames = [...]string{
	Idle:            "idle",
	Submitting:      "submitting",
	AwaitingVerdict: "awaiting_verdict",
	Accepted:        "accepted",
	Rejected:        "rejected",
	TimedOut:        "timed_out",
	BuildingRequest: "building_request",
	Calling:         "calling",
	Succeeded:       "succeeded",
	Failed:          "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

// Prompt is the follow-up action offered to the user with an affordance.
type Prompt string

const (
	PromptNone             Prompt = "none"
	PromptSelectRepository Prompt = "select_repository"
	PromptReauthenticate   Prompt = "reauthenticate"
)

// Affordance is what the push control shows: a label and, after failures
// the user can fix, a prompt.
type Affordance struct {
	Label  string `json:"label"`
	Prompt Prompt `json:"prompt"`
}

const labelIdle = "Push to GitHub"

// progressAffordance is shown while a cycle is in a non-terminal state.
func progressAffordance(s State) Affordance {
	switch s {
	case Submitting:
		return Affordance{Label: "Submitting...", Prompt: PromptNone}
	case AwaitingVerdict:
		return Affordance{Label: "Waiting for verdict...", Prompt: PromptNone}
	case Accepted, BuildingRequest:
		return Affordance{Label: "Preparing push...", Prompt: PromptNone}
	case Calling:
		return Affordance{Label: "Pushing...", Prompt: PromptNone}
	default:
		return Affordance{Label: labelIdle, Prompt: PromptNone}
	}
}

// outcomeAffordance is shown after a successful cycle. The three outcomes
// differ only in label.
func outcomeAffordance(o model.PushOutcome) Affordance {
	switch o {
	case model.OutcomeDuplicate:
		return Affordance{Label: "Already pushed", Prompt: PromptNone}
	case model.OutcomeUnchanged:
		return Affordance{Label: "No change", Prompt: PromptNone}
	default:
		return Affordance{Label: "Pushed", Prompt: PromptNone}
	}
}

// failureAffordance maps an error kind to its label and prompt.
func failureAffordance(err error) Affordance {
	switch apperror.KindOf(err) {
	case "NoRepositorySelected":
		return Affordance{Label: "Select a repository first", Prompt: PromptSelectRepository}
	case "AuthExpired":
		return Affordance{Label: "Log in again", Prompt: PromptReauthenticate}
	case "SubmitControlNotFound":
		return Affordance{Label: "Submit button not found", Prompt: PromptNone}
	case "NoProblemContext":
		return Affordance{Label: "Not on a problem page", Prompt: PromptNone}
	case "EmptyCode":
		return Affordance{Label: "No code to push", Prompt: PromptNone}
	case "IdResolutionFailed":
		return Affordance{Label: "Problem number not found", Prompt: PromptNone}
	case "VerdictRejected":
		label := "Not accepted"
		if v := verdictOf(err); v != "" {
			label = v
		}
		return Affordance{Label: label, Prompt: PromptNone}
	case "VerdictTimedOut":
		return Affordance{Label: "No verdict", Prompt: PromptNone}
	default:
		return Affordance{Label: "Push failed", Prompt: PromptNone}
	}
}
