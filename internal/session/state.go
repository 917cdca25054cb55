package session

import (
	"fmt"
	"strings"

	"contourqa/internal/failure"
	"contourqa/internal/ledger"
)

// State is the session lifecycle position.
type State string

const (
	StateIdle             State = "idle"
	StatePhotosTaken      State = "photos_taken"
	StateElementsDetected State = "elements_detected"
	StateDisposed         State = "disposed"
)

// Transition names an operation that changes session state.
type Transition string

const (
	TransitionCapture Transition = "capture_photos"
	TransitionDetect  Transition = "detect_elements"
	TransitionMeasure Transition = "measure"
	TransitionDispose Transition = "dispose"
	TransitionReset   Transition = "reset"
)

// DispositionKind is the operator's terminal decision on a scan.
type DispositionKind string

const (
	Approve       DispositionKind = "approve"
	Reject        DispositionKind = "reject"
	FlagForReview DispositionKind = "flag_for_review"
)

// ParseDisposition converts user input into a DispositionKind.
func ParseDisposition(value string) (DispositionKind, error) {
	switch DispositionKind(strings.ToLower(strings.TrimSpace(value))) {
	case Approve:
		return Approve, nil
	case Reject:
		return Reject, nil
	case FlagForReview, "flag", "review":
		return FlagForReview, nil
	}
	return "", failure.Wrap(failure.ErrValidation, "session", "dispose", fmt.Sprintf("unknown disposition %q", value), nil)
}

// Action is the ledger action recorded for the disposition.
func (k DispositionKind) Action() ledger.Action {
	switch k {
	case Approve:
		return ledger.ActionApprove
	case Reject:
		return ledger.ActionReject
	default:
		return ledger.ActionFlagForReview
	}
}

// Label is the status shown in audit details.
func (k DispositionKind) Label() string {
	switch k {
	case Approve:
		return "Approved"
	case Reject:
		return "Rejected"
	default:
		return "Flagged for review"
	}
}

func (k DispositionKind) valid() bool {
	return k == Approve || k == Reject || k == FlagForReview
}
