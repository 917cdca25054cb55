package ingest

import (
	"fmt"

	"contourqa/internal/geometry"
)

// Kind identifies a payload variant.
type Kind string

const (
	KindMeasured   Kind = "measured"
	KindFlatPoints Kind = "flat_points"
	KindShape      Kind = "shape"
)

// RawContourPayload is the closed set of accepted payload shapes. The only
// implementations are MeasuredPayload, FlatPointsPayload and ShapePayload.
type RawContourPayload interface {
	Kind() Kind
	Normalize() (geometry.ElementMeasurement, error)
	sealed()
}

// MeasuredPoint is one point of a measurement result.
type MeasuredPoint struct {
	Position      geometry.Point2D `json:"position"`
	ModelPosition geometry.Point2D `json:"modelPosition"`
	Direction     float64          `json:"direction"`
	Distance      float64          `json:"distance"`
	I             uint32           `json:"i"`
	NotRelevant   bool             `json:"notRelevantAsContour,omitempty"`
}

// MeasuredContour is one measured contour with the v-cuts found along it.
type MeasuredContour struct {
	Points []MeasuredPoint       `json:"points"`
	VCuts  []geometry.VCutResult `json:"vcuts"`
}

// MeasuredPayload is the measurement collaborator's result document.
type MeasuredPayload struct {
	MainContour        MeasuredContour   `json:"mainContour"`
	AdditionalContours []MeasuredContour `json:"additionalContours"`
}

func (*MeasuredPayload) Kind() Kind { return KindMeasured }
func (*MeasuredPayload) sealed()    {}

// Normalize maps measured points onto contour points. V-cuts reported on
// additional contours are discarded since element v-cuts index the main
// contour.
func (p *MeasuredPayload) Normalize() (geometry.ElementMeasurement, error) {
	out := geometry.ElementMeasurement{
		MainContour: p.MainContour.contour(),
	}
	if len(p.AdditionalContours) > 0 {
		out.AdditionalContours = make([]geometry.Contour, len(p.AdditionalContours))
		for i, c := range p.AdditionalContours {
			out.AdditionalContours[i] = c.contour()
		}
	}
	if len(p.MainContour.VCuts) > 0 {
		out.VCuts = append([]geometry.VCutResult(nil), p.MainContour.VCuts...)
	}
	if err := out.Validate(); err != nil {
		return geometry.ElementMeasurement{}, fmt.Errorf("measured payload: %w", err)
	}
	return out, nil
}

func (c MeasuredContour) contour() geometry.Contour {
	if len(c.Points) == 0 {
		return geometry.Contour{}
	}
	points := make([]geometry.ContourPoint, len(c.Points))
	for i, p := range c.Points {
		points[i] = geometry.ContourPoint{
			Measured:       p.Position,
			Model:          p.ModelPosition,
			SignedDistance: p.Distance,
			Index:          p.I,
		}
	}
	return geometry.Contour{Points: points}
}

// FlatPointsPayload is a bare outline. Each coordinate is both measured and
// model position with zero deviation, indexed by position in the array.
type FlatPointsPayload []geometry.Point2D

func (FlatPointsPayload) Kind() Kind { return KindFlatPoints }
func (FlatPointsPayload) sealed()    {}

// Normalize builds a single-contour measurement.
func (p FlatPointsPayload) Normalize() (geometry.ElementMeasurement, error) {
	out := geometry.ElementMeasurement{MainContour: outline(p)}
	if err := out.Validate(); err != nil {
		return geometry.ElementMeasurement{}, fmt.Errorf("flat payload: %w", err)
	}
	return out, nil
}

// ShapeVCut is a notch defined on a reference shape.
type ShapeVCut struct {
	Position  geometry.Point2D `json:"position"`
	Direction float64          `json:"direction"`
	Width     float64          `json:"width"`
	Depth     float64          `json:"depth"`
}

// ShapeContour is one outline of a reference shape.
type ShapeContour struct {
	FullContour   []geometry.Point2D `json:"fullContour"`
	NoCutsContour []geometry.Point2D `json:"noCutsContour"`
	VCuts         []ShapeVCut        `json:"vcuts"`
}

// Outline returns the full contour, or the no-cuts contour when the full one
// is absent.
func (c ShapeContour) Outline() []geometry.Point2D {
	if len(c.FullContour) > 0 {
		return c.FullContour
	}
	return c.NoCutsContour
}

// ShapePayload is a reference template.
type ShapePayload struct {
	ID                 string         `json:"_id"`
	Name               string         `json:"name"`
	MainContour        ShapeContour   `json:"mainContour"`
	AdditionalContours []ShapeContour `json:"additionalContours"`
}

func (*ShapePayload) Kind() Kind { return KindShape }
func (*ShapePayload) sealed()    {}

// Normalize renders the template as a zero-deviation measurement. Template
// v-cuts carry no contour index range and are not converted.
func (p *ShapePayload) Normalize() (geometry.ElementMeasurement, error) {
	out := geometry.ElementMeasurement{MainContour: outline(p.MainContour.Outline())}
	for _, c := range p.AdditionalContours {
		out.AdditionalContours = append(out.AdditionalContours, outline(c.Outline()))
	}
	if err := out.Validate(); err != nil {
		return geometry.ElementMeasurement{}, fmt.Errorf("shape %q: %w", p.ID, err)
	}
	return out, nil
}

func outline(pts []geometry.Point2D) geometry.Contour {
	if len(pts) == 0 {
		return geometry.Contour{}
	}
	points := make([]geometry.ContourPoint, len(pts))
	for i, pt := range pts {
		points[i] = geometry.ContourPoint{Measured: pt, Model: pt, Index: uint32(i)}
	}
	return geometry.Contour{Points: points}
}
