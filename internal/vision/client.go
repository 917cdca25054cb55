package vision

import (
	"context"

	"contourqa/internal/geometry"
	"contourqa/internal/ingest"
)

// ObjectBox is an oriented bounding box in millimetres.
type ObjectBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle"`
}

// ShapeDescription identifies a reference shape.
type ShapeDescription struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// ShapeComparison is one candidate reference shape for a detected element.
type ShapeComparison struct {
	Shape    ShapeDescription `json:"shape"`
	Reversed bool             `json:"reversed"`
	Diff     float64          `json:"diff"`
}

// DetectedElement is one part found on the measurement photos. ID is unique
// within a measurement.
type DetectedElement struct {
	ID               int               `json:"i"`
	ShapeComparisons []ShapeComparison `json:"shapeComparisons"`
	ElementBox       ObjectBox         `json:"elementBox"`
}

// OffersShape reports whether shapeID is among the element's comparisons.
func (d DetectedElement) OffersShape(shapeID string) (ShapeDescription, bool) {
	for _, c := range d.ShapeComparisons {
		if c.Shape.ID == shapeID {
			return c.Shape, true
		}
	}
	return ShapeDescription{}, false
}

// BestMatch returns the comparison with the smallest diff.
func (d DetectedElement) BestMatch() (ShapeComparison, bool) {
	if len(d.ShapeComparisons) == 0 {
		return ShapeComparison{}, false
	}
	best := d.ShapeComparisons[0]
	for _, c := range d.ShapeComparisons[1:] {
		if c.Diff < best.Diff {
			best = c
		}
	}
	return best, true
}

// Client is the measurement collaborator consumed by scan sessions.
type Client interface {
	CaptureMeasurementPhotos(ctx context.Context) error
	DetectElements(ctx context.Context) ([]DetectedElement, error)
	MeasureElement(ctx context.Context, elementID int, shapeID string, thickness float64) (geometry.ElementMeasurement, error)
	ClearMeasurementData(ctx context.Context) error
	ListShapes(ctx context.Context) ([]ShapeDescription, error)
	ReadShape(ctx context.Context, shapeID string) (*ingest.ShapePayload, error)
}
