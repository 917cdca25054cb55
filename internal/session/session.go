package session

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"contourqa/internal/failure"
	"contourqa/internal/ledger"
	"contourqa/internal/logging"
	"contourqa/internal/tolerance"
	"contourqa/internal/vcut"
	"contourqa/internal/vision"
)

// Appender is the ledger write used by Dispose.
type Appender interface {
	Append(ctx context.Context, d ledger.Draft) (ledger.LogID, error)
}

// Session is one inspection pass. Methods are safe for concurrent use; each
// operation holds the session lock for its whole duration, including
// collaborator calls.
type Session struct {
	id         string
	client     vision.Client
	tolerances *tolerance.Registry
	ledger     Appender
	logger     *slog.Logger

	mu         sync.Mutex
	state      State
	marker     string
	elements   []*element
	byID       map[int]*element
	disposedAs ledger.LogID
}

// New creates an idle session with a fresh identifier.
func New(client vision.Client, tolerances *tolerance.Registry, appender Appender, logger *slog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:         id,
		client:     client,
		tolerances: tolerances,
		ledger:     appender,
		logger:     logging.WithSessionLogger(logging.NewComponentLogger(logger, "session"), id),
		state:      StateIdle,
		byID:       make(map[int]*element),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// SetMarker records the marker (work order) number written into disposition
// details.
func (s *Session) SetMarker(marker string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = strings.TrimSpace(marker)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// DisposedEntry returns the ledger id written by the last Dispose, or zero.
func (s *Session) DisposedEntry() ledger.LogID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposedAs
}

// CapturePhotos moves Idle to PhotosTaken.
func (s *Session) CapturePhotos(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return s.reject(TransitionCapture, ErrAlreadyCaptured)
	}
	if err := s.client.CaptureMeasurementPhotos(ctx); err != nil {
		return s.collaboratorFailure(TransitionCapture, err)
	}
	s.moveTo(StatePhotosTaken)
	return nil
}

// DetectElements moves PhotosTaken to ElementsDetected and records every
// detected element as unmeasured.
func (s *Session) DetectElements(ctx context.Context) ([]ElementView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateIdle:
		return nil, s.reject(TransitionDetect, ErrPhotosNotTaken)
	case StateElementsDetected, StateDisposed:
		return nil, s.reject(TransitionDetect, ErrAlreadyDetected)
	}
	detected, err := s.client.DetectElements(ctx)
	if err != nil {
		return nil, s.collaboratorFailure(TransitionDetect, err)
	}

	elements := make([]*element, 0, len(detected))
	byID := make(map[int]*element, len(detected))
	for _, d := range detected {
		if _, dup := byID[d.ID]; dup {
			return nil, s.collaboratorFailure(TransitionDetect,
				failure.Wrap(failure.ErrValidation, "session", "detect", fmt.Sprintf("duplicate element id %d", d.ID), nil))
		}
		el := &element{detected: d}
		elements = append(elements, el)
		byID[d.ID] = el
	}
	s.elements = elements
	s.byID = byID
	s.moveTo(StateElementsDetected)
	s.logger.Info("elements detected", logging.Int("count", len(elements)))
	return s.viewsLocked(), nil
}

// Measure measures one detected element against shapeID, which must be one of
// the element's shape comparisons.
func (s *Session) Measure(ctx context.Context, elementID int, shapeID string, thickness float64) (ElementView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateIdle, StatePhotosTaken:
		return ElementView{}, s.reject(TransitionMeasure, ErrElementsNotDetected)
	case StateDisposed:
		return ElementView{}, s.reject(TransitionMeasure, ErrAlreadyDisposed)
	}
	el, ok := s.byID[elementID]
	if !ok {
		return ElementView{}, s.reject(TransitionMeasure, fmt.Errorf("%w: id %d", ErrElementNotDetected, elementID))
	}
	if el.measured {
		return ElementView{}, s.reject(TransitionMeasure, fmt.Errorf("%w: id %d", ErrAlreadyMeasured, elementID))
	}
	shapeID = strings.TrimSpace(shapeID)
	if shapeID == "" {
		return ElementView{}, s.reject(TransitionMeasure, fmt.Errorf("%w: no shape selected for element %d", ErrMissingReferenceShape, elementID))
	}
	shape, offered := el.detected.OffersShape(shapeID)
	if !offered {
		return ElementView{}, s.reject(TransitionMeasure, fmt.Errorf("%w: shape %q is not a candidate for element %d", ErrMissingReferenceShape, shapeID, elementID))
	}
	if math.IsNaN(thickness) || math.IsInf(thickness, 0) || thickness <= 0 {
		return ElementView{}, s.reject(TransitionMeasure, fmt.Errorf("%w: %v must be positive", ErrInvalidThickness, thickness))
	}

	m, err := s.client.MeasureElement(ctx, elementID, shapeID, thickness)
	if err != nil {
		return ElementView{}, s.collaboratorFailure(TransitionMeasure, err)
	}
	if err := m.Validate(); err != nil {
		return ElementView{}, s.collaboratorFailure(TransitionMeasure,
			failure.Wrap(failure.ErrValidation, "session", "measure", fmt.Sprintf("element %d", elementID), err))
	}

	el.measurement = m.Clone()
	el.shape = shape
	el.thickness = thickness
	el.measured = true
	el.refresh(s.tolerances.Profile())

	s.logger.Info("element measured",
		logging.Int(logging.FieldElementID, elementID),
		logging.String("shape", shape.Name),
		logging.Float64("accuracy", el.accuracy),
		logging.String(logging.FieldEventType, "transition"),
	)
	return el.view(), nil
}

// Dispose records the operator decision. Exactly one ledger entry is written;
// if the write fails the session stays undisposed.
func (s *Session) Dispose(ctx context.Context, kind DispositionKind, comment, actor string) (ledger.LogID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDisposed {
		return 0, s.reject(TransitionDispose, ErrAlreadyDisposed)
	}
	if !kind.valid() {
		return 0, s.reject(TransitionDispose, failure.Wrap(failure.ErrValidation, "session", "dispose", fmt.Sprintf("unknown disposition %q", kind), nil))
	}

	profile := s.tolerances.Profile()
	snapshot := make([]ledger.SnapshotElement, 0, len(s.elements))
	for _, el := range s.elements {
		if !el.measured {
			continue
		}
		el.refresh(profile)
		snapshot = append(snapshot, ledger.SnapshotElement{
			ElementID:       el.detected.ID,
			ShapeID:         el.shape.ID,
			ShapeName:       el.shape.Name,
			Thickness:       el.thickness,
			Accuracy:        el.accuracy,
			PointsTolerance: profile.Threshold(tolerance.Points),
			VCutsTolerance:  profile.Threshold(tolerance.VCuts),
			Measurement:     el.measurement.Clone(),
		})
	}
	if len(snapshot) == 0 {
		return 0, s.reject(TransitionDispose, ErrNothingMeasured)
	}

	id, err := s.ledger.Append(ctx, ledger.Draft{
		Actor:       actor,
		Action:      kind.Action(),
		DetailsText: FormatDetails(s.marker, kind.Label(), comment, snapshot),
		Elements:    snapshot,
	})
	if err != nil {
		return 0, s.collaboratorFailure(TransitionDispose, err)
	}
	s.disposedAs = id
	s.moveTo(StateDisposed)
	s.logger.Info("scan disposed",
		logging.String("disposition", string(kind)),
		logging.Int64(logging.FieldEntryID, int64(id)),
		logging.Int("elements", len(snapshot)),
	)
	return id, nil
}

// Reset returns the session to Idle from any state and clears the
// collaborator's measurement data. It always succeeds; a collaborator
// failure is logged only.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.client.ClearMeasurementData(ctx); err != nil {
		logging.WarnWithContext(s.logger, "clearing measurement data failed", "reset_clear_failed", logging.Error(err))
	}
	s.elements = nil
	s.byID = make(map[int]*element)
	s.disposedAs = 0
	s.moveTo(StateIdle)
}

// Elements returns a view of every detected element in detection order.
func (s *Session) Elements() []ElementView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewsLocked()
}

// Element returns the view of one element.
func (s *Session) Element(elementID int) (ElementView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.lookupLocked(elementID)
	if err != nil {
		return ElementView{}, err
	}
	el.refresh(s.tolerances.Profile())
	return el.view(), nil
}

// Accuracy returns the main contour conformance of a measured element under
// the active tolerance profile.
func (s *Session) Accuracy(elementID int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.measuredLocked(elementID)
	if err != nil {
		return 0, err
	}
	return el.accuracy, nil
}

// VCutStatuses classifies the element's v-cuts under the active profile.
func (s *Session) VCutStatuses(elementID int) ([]vcut.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.measuredLocked(elementID)
	if err != nil {
		return nil, err
	}
	return append([]vcut.Status(nil), el.statuses...), nil
}

// AllowedTransitions lists the operations the current state accepts.
func (s *Session) AllowedTransitions() []Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateIdle:
		return []Transition{TransitionCapture, TransitionReset}
	case StatePhotosTaken:
		return []Transition{TransitionDetect, TransitionReset}
	case StateElementsDetected:
		var out []Transition
		var measured, unmeasured bool
		for _, el := range s.elements {
			if el.measured {
				measured = true
			} else {
				unmeasured = true
			}
		}
		if unmeasured {
			out = append(out, TransitionMeasure)
		}
		if measured {
			out = append(out, TransitionDispose)
		}
		return append(out, TransitionReset)
	default:
		return []Transition{TransitionReset}
	}
}

// Can reports whether t is currently allowed.
func (s *Session) Can(t Transition) bool {
	for _, allowed := range s.AllowedTransitions() {
		if allowed == t {
			return true
		}
	}
	return false
}

func (s *Session) lookupLocked(elementID int) (*element, error) {
	if s.state == StateIdle || s.state == StatePhotosTaken {
		return nil, ErrElementsNotDetected
	}
	el, ok := s.byID[elementID]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrElementNotDetected, elementID)
	}
	return el, nil
}

func (s *Session) measuredLocked(elementID int) (*element, error) {
	el, err := s.lookupLocked(elementID)
	if err != nil {
		return nil, err
	}
	if !el.measured {
		return nil, fmt.Errorf("%w: id %d", ErrNotMeasured, elementID)
	}
	el.refresh(s.tolerances.Profile())
	return el, nil
}

func (s *Session) viewsLocked() []ElementView {
	profile := s.tolerances.Profile()
	views := make([]ElementView, len(s.elements))
	for i, el := range s.elements {
		el.refresh(profile)
		views[i] = el.view()
	}
	return views
}

func (s *Session) moveTo(next State) {
	if s.state == next {
		return
	}
	s.logger.Debug("session state changed",
		logging.String("from", string(s.state)),
		logging.String("to", string(next)),
		logging.String(logging.FieldEventType, "transition"),
	)
	s.state = next
}

func (s *Session) reject(t Transition, err error) error {
	s.logger.Debug("transition rejected",
		logging.String("transition", string(t)),
		logging.String("state", string(s.state)),
		logging.Error(err),
	)
	return err
}

func (s *Session) collaboratorFailure(t Transition, err error) error {
	logging.WarnWithContext(s.logger, "transition failed", "transition_failed",
		logging.String("transition", string(t)),
		logging.String("state", string(s.state)),
		logging.Error(err),
	)
	return fmt.Errorf("%s: %w", t, err)
}
