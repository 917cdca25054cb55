package session

import (
	"contourqa/internal/conformance"
	"contourqa/internal/geometry"
	"contourqa/internal/tolerance"
	"contourqa/internal/vcut"
	"contourqa/internal/vision"
)

type element struct {
	detected  vision.DetectedElement
	shape     vision.ShapeDescription
	thickness float64
	measured  bool

	measurement geometry.ElementMeasurement

	// metrics cached for profileVersion.
	profileVersion uint64
	accuracy       float64
	fullAccuracy   float64
	statuses       []vcut.Status
}

// refresh recomputes derived metrics when profile differs from the one they
// were computed with.
func (e *element) refresh(profile *tolerance.Profile) {
	if !e.measured || e.profileVersion == profile.Version() && e.profileVersion != 0 {
		return
	}
	points := profile.Threshold(tolerance.Points)
	e.accuracy = conformance.Score(e.measurement.MainContour, points)
	e.fullAccuracy = conformance.ScoreAll(e.measurement, points)
	e.statuses = vcut.Validate(e.measurement.VCuts, profile.Threshold(tolerance.VCuts))
	e.profileVersion = profile.Version()
}

// ElementView is a read-only copy of one element's state and metrics.
type ElementView struct {
	ID               int                          `json:"id"`
	Box              vision.ObjectBox             `json:"box"`
	ShapeComparisons []vision.ShapeComparison     `json:"shapeComparisons"`
	ShapeID          string                       `json:"shapeId,omitempty"`
	ShapeName        string                       `json:"shapeName,omitempty"`
	Thickness        float64                      `json:"thickness,omitempty"`
	Measured         bool                         `json:"measured"`
	Accuracy         float64                      `json:"accuracy"`
	FullAccuracy     float64                      `json:"fullAccuracy"`
	VCutStatuses     []vcut.Status                `json:"vcutStatuses,omitempty"`
	VCutCounts       vcut.Counts                  `json:"vcutCounts"`
	Measurement      *geometry.ElementMeasurement `json:"measurement,omitempty"`
}

func (e *element) view() ElementView {
	v := ElementView{
		ID:               e.detected.ID,
		Box:              e.detected.ElementBox,
		ShapeComparisons: append([]vision.ShapeComparison(nil), e.detected.ShapeComparisons...),
		Measured:         e.measured,
	}
	if !e.measured {
		return v
	}
	m := e.measurement.Clone()
	v.ShapeID = e.shape.ID
	v.ShapeName = e.shape.Name
	v.Thickness = e.thickness
	v.Accuracy = e.accuracy
	v.FullAccuracy = e.fullAccuracy
	v.VCutStatuses = append([]vcut.Status(nil), e.statuses...)
	v.VCutCounts = vcut.Tally(e.statuses)
	v.Measurement = &m
	return v
}
