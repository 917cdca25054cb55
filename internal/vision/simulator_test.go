package vision_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"contourqa/internal/conformance"
	"contourqa/internal/failure"
	"contourqa/internal/vision"
)

func TestSimulatorLifecycle(t *testing.T) {
	ctx := context.Background()
	sim := vision.NewSimulator(nil)

	if _, err := sim.DetectElements(ctx); !errors.Is(err, vision.ErrPhotosNotTaken) {
		t.Fatalf("expected ErrPhotosNotTaken, got %v", err)
	}
	if err := sim.CaptureMeasurementPhotos(ctx); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := sim.CaptureMeasurementPhotos(ctx); !errors.Is(err, vision.ErrPhotosAlreadyTaken) {
		t.Fatalf("expected ErrPhotosAlreadyTaken, got %v", err)
	}
	if _, err := sim.MeasureElement(ctx, 0, "x", 18); failure.KindOf(err) != failure.KindPrecondition {
		t.Fatalf("expected precondition failure before detection, got %v", err)
	}

	elements, err := sim.DetectElements(ctx)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(elements) != 1 || elements[0].ID != 0 {
		t.Fatalf("unexpected detected elements: %+v", elements)
	}
	best, ok := elements[0].BestMatch()
	if !ok || best.Shape.Name != "L001728656NCPAB" {
		t.Fatalf("unexpected best match: %+v", best)
	}
	if _, err := sim.DetectElements(ctx); !errors.Is(err, vision.ErrAlreadyDetected) {
		t.Fatalf("expected ErrAlreadyDetected, got %v", err)
	}

	if _, err := sim.MeasureElement(ctx, 7, best.Shape.ID, 18); failure.KindOf(err) != failure.KindNotFound {
		t.Fatalf("expected not found for unknown element, got %v", err)
	}
	m, err := sim.MeasureElement(ctx, 0, best.Shape.ID, 18)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if got := conformance.Score(m.MainContour, 1.0); got != 90.0 {
		t.Fatalf("expected fixture main accuracy 90.0, got %v", got)
	}
	if got := conformance.ScoreAll(m, 1.0); got != 90.4 {
		t.Fatalf("expected fixture pooled accuracy 90.4, got %v", got)
	}
	if len(m.VCuts) != 2 || !m.VCuts[0].Found {
		t.Fatalf("unexpected fixture vcuts: %+v", m.VCuts)
	}
	if _, err := sim.MeasureElement(ctx, 0, best.Shape.ID, 18); !errors.Is(err, vision.ErrElementMeasured) {
		t.Fatalf("expected ErrElementMeasured, got %v", err)
	}

	if err := sim.ClearMeasurementData(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := sim.CaptureMeasurementPhotos(ctx); err != nil {
		t.Fatalf("capture after clear: %v", err)
	}
}

func TestSimulatorInstancesAreIndependent(t *testing.T) {
	ctx := context.Background()
	a := vision.NewSimulator(nil)
	b := vision.NewSimulator(nil)
	if err := a.CaptureMeasurementPhotos(ctx); err != nil {
		t.Fatalf("capture a: %v", err)
	}
	if err := b.CaptureMeasurementPhotos(ctx); err != nil {
		t.Fatalf("capture b should not see a's state: %v", err)
	}
}

func TestSimulatorShapes(t *testing.T) {
	ctx := context.Background()
	sim := vision.NewSimulator(nil)
	shapes, err := sim.ListShapes(ctx)
	if err != nil {
		t.Fatalf("list shapes: %v", err)
	}
	if len(shapes) != 2 {
		t.Fatalf("expected 2 shapes, got %d", len(shapes))
	}
	shape, err := sim.ReadShape(ctx, shapes[0].ID)
	if err != nil {
		t.Fatalf("read shape: %v", err)
	}
	if len(shape.MainContour.VCuts) != 1 {
		t.Fatalf("expected reference vcut, got %+v", shape.MainContour.VCuts)
	}
	if _, err := sim.ReadShape(ctx, "missing"); failure.KindOf(err) != failure.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSimulatorCustomFixtures(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		"detected.json":  {Data: []byte(`[{"i": 3, "shapeComparisons": [], "elementBox": {"x":0,"y":0,"width":1,"height":1,"angle":0}}]`)},
		"shapes.json":    {Data: []byte(`[]`)},
		"element-3.json": {Data: []byte(`[[0,0],[1,0],[1,1]]`)},
	}
	sim := vision.NewSimulator(nil, vision.WithFixtures(fsys))
	if err := sim.CaptureMeasurementPhotos(ctx); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if _, err := sim.DetectElements(ctx); err != nil {
		t.Fatalf("detect: %v", err)
	}
	m, err := sim.MeasureElement(ctx, 3, "", 10)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if got := conformance.Score(m.MainContour, 0); got != 100.0 {
		t.Fatalf("expected flat outline to conform fully, got %v", got)
	}
}
