// Package apperror defines the error kinds shared by the push pipeline, the
// backend client and the local control API.
//
// Every kind is a sentinel wrapped by *AppError, so callers branch with
// errors.Is and read details (verdict text, HTTP status) with errors.As.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrBusy       = errors.New("push already in progress")

	ErrNoRepositorySelected  = errors.New("no repository selected")
	ErrSubmitControlNotFound = errors.New("submit control not found")
	ErrNoProblemContext      = errors.New("no problem context")
	ErrEmptyCode             = errors.New("empty code")
	ErrIDResolutionFailed    = errors.New("problem id resolution failed")
	ErrVerdictRejected       = errors.New("verdict rejected")
	ErrVerdictTimedOut       = errors.New("verdict timed out")
	ErrNetworkFailure        = errors.New("network failure")
	ErrServerError           = errors.New("server error")
	ErrAuthExpired           = errors.New("authentication expired")
)

// kinds maps each sentinel to the stable name surfaced in JSON and logs.
var kinds = []struct {
	err  error
	name string
}{
	{ErrNoRepositorySelected, "NoRepositorySelected"},
	{ErrSubmitControlNotFound, "SubmitControlNotFound"},
	{ErrNoProblemContext, "NoProblemContext"},
	{ErrEmptyCode, "EmptyCode"},
	{ErrIDResolutionFailed, "IdResolutionFailed"},
	{ErrVerdictRejected, "VerdictRejected"},
	{ErrVerdictTimedOut, "VerdictTimedOut"},
	{ErrNetworkFailure, "NetworkFailure"},
	{ErrServerError, "ServerError"},
	{ErrAuthExpired, "AuthExpired"},
	{ErrBusy, "Busy"},
	{ErrNotFound, "NotFound"},
	{ErrValidation, "Validation"},
}

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Status  int    // Optional: HTTP status returned by the backend
	Body    string // Optional: response body returned by the backend
	Verdict string // Optional: literal verdict text for rejected submissions
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// KindOf returns the stable kind name of err, or "Internal" for errors that
// carry no known sentinel.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Busy() *AppError {
	return &AppError{Err: ErrBusy, Message: "a push is already in progress"}
}

func NoRepositorySelected() *AppError {
	return &AppError{
		Err:     ErrNoRepositorySelected,
		Message: "select a repository before pushing",
		Field:   "selected_repo",
	}
}

func SubmitControlNotFound(selector string) *AppError {
	return &AppError{
		Err:     ErrSubmitControlNotFound,
		Message: fmt.Sprintf("submit control %q not found on page", selector),
	}
}

func NoProblemContext(location string) *AppError {
	return &AppError{
		Err:     ErrNoProblemContext,
		Message: fmt.Sprintf("no problem slug in %q", location),
	}
}

func EmptyCode() *AppError {
	return &AppError{Err: ErrEmptyCode, Message: "no code found in editor"}
}

func IDResolutionFailed(slug string) *AppError {
	return &AppError{
		Err:     ErrIDResolutionFailed,
		Message: fmt.Sprintf("could not resolve problem number for %q", slug),
	}
}

func VerdictRejected(verdict string) *AppError {
	return &AppError{
		Err:     ErrVerdictRejected,
		Message: fmt.Sprintf("submission not accepted: %s", verdict),
		Verdict: verdict,
	}
}

func VerdictTimedOut(attempts int) *AppError {
	return &AppError{
		Err:     ErrVerdictTimedOut,
		Message: fmt.Sprintf("no verdict after %d checks", attempts),
	}
}

func NetworkFailure(op string, err error) *AppError {
	return &AppError{
		Err:     ErrNetworkFailure,
		Message: fmt.Sprintf("%s: %v", op, err),
	}
}

func ServerError(status int, body string) *AppError {
	return &AppError{
		Err:     ErrServerError,
		Message: fmt.Sprintf("backend returned status %d", status),
		Status:  status,
		Body:    body,
	}
}

// AuthExpired is returned for 401-class responses and for missing or expired
// bearer tokens. Callers offer a re-authentication prompt.
func AuthExpired(message string) *AppError {
	return &AppError{Err: ErrAuthExpired, Message: message}
}
