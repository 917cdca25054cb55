package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPrecondition marks an operation invoked in a state that does not allow it.
	ErrPrecondition = errors.New("precondition violation")
	// ErrNotFound marks a lookup of an element, entry, payload, or shape that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks input outside the accepted numeric or structural range.
	ErrValidation = errors.New("validation error")
	// ErrPersistence marks a failed durable write or read.
	ErrPersistence = errors.New("persistence error")
)

// Kind is the caller-facing classification of a failure.
type Kind string

const (
	KindNone         Kind = ""
	KindPrecondition Kind = "precondition"
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
	KindPersistence  Kind = "persistence"
	KindUnknown      Kind = "unknown"
)

// Classifier allows errors to declare their kind directly.
type Classifier interface {
	FailureKind() Kind
}

// Wrap builds an error message that includes component and operation context
// while tagging it with the provided marker. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrPersistence
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf classifies err. A nil error yields KindNone.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var classifier Classifier
	if errors.As(err, &classifier) {
		return classifier.FailureKind()
	}
	switch {
	case errors.Is(err, ErrPrecondition):
		return KindPrecondition
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	default:
		return KindUnknown
	}
}

// Recoverable reports whether the caller can fix the failure by changing its
// request. Persistence and unknown failures are not recoverable that way.
func Recoverable(err error) bool {
	switch KindOf(err) {
	case KindPrecondition, KindNotFound, KindValidation:
		return true
	default:
		return false
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "inspection failure"
	}
	return strings.Join(parts, ": ")
}
