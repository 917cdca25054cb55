package geometry

import "fmt"

// ElementMeasurement is one physical part's full measured geometry. V-cut
// index ranges refer to MainContour.
type ElementMeasurement struct {
	MainContour        Contour      `json:"mainContour"`
	AdditionalContours []Contour    `json:"additionalContours"`
	VCuts              []VCutResult `json:"vcuts"`
}

// Validate checks every contour and every v-cut range.
func (m ElementMeasurement) Validate() error {
	if err := m.MainContour.Validate(); err != nil {
		return fmt.Errorf("main contour: %w", err)
	}
	for i, c := range m.AdditionalContours {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("additional contour %d: %w", i, err)
		}
	}
	for i, v := range m.VCuts {
		if err := v.ValidateAgainst(m.MainContour); err != nil {
			return fmt.Errorf("vcut %d: %w", i, err)
		}
	}
	return nil
}

// PointCount returns the number of points across all contours.
func (m ElementMeasurement) PointCount() int {
	total := m.MainContour.Len()
	for _, c := range m.AdditionalContours {
		total += c.Len()
	}
	return total
}

// Clone returns a deep copy that shares no slices with the receiver.
func (m ElementMeasurement) Clone() ElementMeasurement {
	out := ElementMeasurement{MainContour: m.MainContour.Clone()}
	if m.AdditionalContours != nil {
		out.AdditionalContours = make([]Contour, len(m.AdditionalContours))
		for i, c := range m.AdditionalContours {
			out.AdditionalContours[i] = c.Clone()
		}
	}
	if m.VCuts != nil {
		out.VCuts = make([]VCutResult, len(m.VCuts))
		copy(out.VCuts, m.VCuts)
	}
	return out
}
