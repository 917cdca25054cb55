package vision

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"contourqa/internal/failure"
	"contourqa/internal/geometry"
	"contourqa/internal/ingest"
	"contourqa/internal/logging"
)

//go:embed fixtures/*.json
var embeddedFixtures embed.FS

var (
	ErrPhotosAlreadyTaken   = errors.New("measurement photos were already taken")
	ErrPhotosNotTaken       = errors.New("measurement photos were not taken")
	ErrAlreadyDetected      = errors.New("elements were already detected")
	ErrNotDetected          = errors.New("elements were not detected")
	ErrElementNotDetected   = errors.New("element not detected")
	ErrElementMeasured      = errors.New("element was already measured")
	ErrMeasurementUnmatched = errors.New("no measurement fixture for element")
)

// Simulator replays recorded fixtures. Each instance tracks its own capture
// and detection progress so concurrent sessions never share state.
type Simulator struct {
	fixtures fs.FS
	logger   *slog.Logger

	mu       sync.Mutex
	captured bool
	detected bool
	measured map[int]bool
}

// SimulatorOption customizes a Simulator.
type SimulatorOption func(*Simulator)

// WithFixtureDir reads fixtures from dir instead of the built-in set. The
// directory must contain detected.json, shapes.json and element-<i>.json.
func WithFixtureDir(dir string) SimulatorOption {
	return func(s *Simulator) {
		if dir != "" {
			s.fixtures = os.DirFS(dir)
		}
	}
}

// WithFixtures reads fixtures from fsys.
func WithFixtures(fsys fs.FS) SimulatorOption {
	return func(s *Simulator) {
		s.fixtures = fsys
	}
}

// NewSimulator creates a simulator in the idle state.
func NewSimulator(logger *slog.Logger, opts ...SimulatorOption) *Simulator {
	sub, _ := fs.Sub(embeddedFixtures, "fixtures")
	s := &Simulator{
		fixtures: sub,
		logger:   logging.NewComponentLogger(logger, "vision"),
		measured: make(map[int]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) CaptureMeasurementPhotos(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.captured {
		return failure.Wrap(failure.ErrPrecondition, "vision", "capture", "", ErrPhotosAlreadyTaken)
	}
	s.captured = true
	s.logger.Debug("measurement photos captured")
	return nil
}

func (s *Simulator) DetectElements(ctx context.Context) ([]DetectedElement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.captured {
		return nil, failure.Wrap(failure.ErrPrecondition, "vision", "detect", "", ErrPhotosNotTaken)
	}
	if s.detected {
		return nil, failure.Wrap(failure.ErrPrecondition, "vision", "detect", "", ErrAlreadyDetected)
	}
	elements, err := s.detectedElements()
	if err != nil {
		return nil, err
	}
	s.detected = true
	s.logger.Debug("elements detected", logging.Int("count", len(elements)))
	return elements, nil
}

func (s *Simulator) MeasureElement(ctx context.Context, elementID int, shapeID string, thickness float64) (geometry.ElementMeasurement, error) {
	if err := ctx.Err(); err != nil {
		return geometry.ElementMeasurement{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.detected {
		return geometry.ElementMeasurement{}, failure.Wrap(failure.ErrPrecondition, "vision", "measure", "", ErrNotDetected)
	}
	elements, err := s.detectedElements()
	if err != nil {
		return geometry.ElementMeasurement{}, err
	}
	var known bool
	for _, el := range elements {
		if el.ID == elementID {
			known = true
			break
		}
	}
	if !known {
		return geometry.ElementMeasurement{}, failure.Wrap(failure.ErrNotFound, "vision", "measure", fmt.Sprintf("element %d", elementID), ErrElementNotDetected)
	}
	if s.measured[elementID] {
		return geometry.ElementMeasurement{}, failure.Wrap(failure.ErrPrecondition, "vision", "measure", fmt.Sprintf("element %d", elementID), ErrElementMeasured)
	}
	data, err := fs.ReadFile(s.fixtures, fmt.Sprintf("element-%d.json", elementID))
	if err != nil {
		return geometry.ElementMeasurement{}, failure.Wrap(failure.ErrNotFound, "vision", "measure", fmt.Sprintf("element %d", elementID), errors.Join(ErrMeasurementUnmatched, err))
	}
	m, _, err := ingest.DecodeMeasurement(data)
	if err != nil {
		return geometry.ElementMeasurement{}, failure.Wrap(failure.ErrValidation, "vision", "measure", "decode fixture", err)
	}
	s.measured[elementID] = true
	s.logger.Debug("element measured",
		logging.Int(logging.FieldElementID, elementID),
		logging.String("shape_id", shapeID),
		logging.Float64("thickness", thickness),
		logging.Int("points", m.PointCount()),
	)
	return m, nil
}

func (s *Simulator) ClearMeasurementData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captured = false
	s.detected = false
	s.measured = make(map[int]bool)
	return nil
}

func (s *Simulator) ListShapes(ctx context.Context) ([]ShapeDescription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shapes, err := s.shapes()
	if err != nil {
		return nil, err
	}
	out := make([]ShapeDescription, len(shapes))
	for i, sh := range shapes {
		out[i] = ShapeDescription{ID: sh.ID, Name: sh.Name}
	}
	return out, nil
}

// ReadShape returns the reference shape or a NotFound failure.
func (s *Simulator) ReadShape(ctx context.Context, shapeID string) (*ingest.ShapePayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shapes, err := s.shapes()
	if err != nil {
		return nil, err
	}
	for i := range shapes {
		if shapes[i].ID == shapeID {
			return &shapes[i], nil
		}
	}
	return nil, failure.Wrap(failure.ErrNotFound, "vision", "read shape", fmt.Sprintf("shape %q", shapeID), nil)
}

func (s *Simulator) detectedElements() ([]DetectedElement, error) {
	var elements []DetectedElement
	if err := s.readFixture("detected.json", &elements); err != nil {
		return nil, err
	}
	return elements, nil
}

func (s *Simulator) shapes() ([]ingest.ShapePayload, error) {
	var shapes []ingest.ShapePayload
	if err := s.readFixture("shapes.json", &shapes); err != nil {
		return nil, err
	}
	return shapes, nil
}

func (s *Simulator) readFixture(name string, target any) error {
	data, err := fs.ReadFile(s.fixtures, name)
	if err != nil {
		return failure.Wrap(failure.ErrNotFound, "vision", "read fixture", name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return failure.Wrap(failure.ErrValidation, "vision", "decode fixture", name, err)
	}
	return nil
}
