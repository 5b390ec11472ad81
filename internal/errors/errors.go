package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for rejected commands and failed loads.
var (
	ErrSlotOutOfRange     = errors.New("slot out of range")
	ErrSlotNotLoaded      = errors.New("slot not loaded")
	ErrArityMismatch      = errors.New("wrong number of arguments")
	ErrBadArgument        = errors.New("bad argument")
	ErrNotPlaying         = errors.New("not playing")
	ErrBadFilenamePattern = errors.New("filename should have the format XXX_descr.ext")
	ErrLoadFailure        = errors.New("could not load clip")
	ErrEndpointUnset      = errors.New("notification endpoint not set")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// PlayerError wraps an error with a user-friendly suggestion.
type PlayerError struct {
	Err        error
	Suggestion string
}

func (e *PlayerError) Error() string {
	return e.Err.Error()
}

func (e *PlayerError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &PlayerError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var playerErr *PlayerError
	if errors.As(err, &playerErr) && playerErr.Suggestion != "" {
		return playerErr.Suggestion
	}

	switch {
	case errors.Is(err, ErrSlotOutOfRange):
		return "Start the player with a larger --numslots or use a lower slot index"
	case errors.Is(err, ErrSlotNotLoaded):
		return "Send /load slot path first"
	case errors.Is(err, ErrNotPlaying):
		return "Send /play slot first"
	case errors.Is(err, ErrBadFilenamePattern):
		return "Rename clips to <slot>_<description>.<ext>, e.g. 3_intro.mp4"
	case errors.Is(err, ErrLoadFailure):
		return "Check that the file exists and the engine can open it"
	case errors.Is(err, ErrEndpointUnset):
		return "Start the player with --oscout host:port"
	case errors.Is(err, ErrInvalidConfig):
		return "Run 'slotplayer config show' to inspect the effective configuration"
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "address already in use") {
		return "Another process is listening on that port; pick another with --port"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
