package conformance

import "contourqa/internal/geometry"

// Summary describes the deviation profile of a contour at one tolerance.
type Summary struct {
	Total         int     `json:"total"`
	Conforming    int     `json:"conforming"`
	Accuracy      float64 `json:"accuracy"`
	MaxDeviation  float64 `json:"maxDeviation"`
	MeanDeviation float64 `json:"meanDeviation"`
	WorstIndex    uint32  `json:"worstIndex"`
}

// Pass reports whether every point conforms. An empty contour never passes.
func (s Summary) Pass() bool {
	return s.Total > 0 && s.Conforming == s.Total
}

// Summarize computes the deviation profile of c.
func Summarize(c geometry.Contour, tolerance float64) Summary {
	s := Summary{Total: c.Len()}
	if s.Total == 0 {
		return s
	}
	var sum float64
	for i, p := range c.Points {
		dev := p.AbsDeviation()
		sum += dev
		if Conforms(p, tolerance) {
			s.Conforming++
		}
		if i == 0 || dev > s.MaxDeviation {
			s.MaxDeviation = dev
			s.WorstIndex = p.Index
		}
	}
	s.MeanDeviation = sum / float64(s.Total)
	s.Accuracy = percent(s.Conforming, s.Total)
	return s
}

// Outliers returns the points of c that fall outside tolerance, in traversal order.
func Outliers(c geometry.Contour, tolerance float64) []geometry.ContourPoint {
	var out []geometry.ContourPoint
	for _, p := range c.Points {
		if !Conforms(p, tolerance) {
			out = append(out, p)
		}
	}
	return out
}
