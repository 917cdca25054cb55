package conformance

import (
	"math"

	"contourqa/internal/geometry"
)

// Score returns the percentage of points of c whose absolute signed distance
// is within tolerance, rounded to one decimal. An empty contour scores 0.
func Score(c geometry.Contour, tolerance float64) float64 {
	return percent(countConforming(c.Points, tolerance), len(c.Points))
}

// ScoreAll pools the points of the main contour and every additional contour
// before applying the Score formula.
func ScoreAll(m geometry.ElementMeasurement, tolerance float64) float64 {
	conforming := countConforming(m.MainContour.Points, tolerance)
	total := m.MainContour.Len()
	for _, c := range m.AdditionalContours {
		conforming += countConforming(c.Points, tolerance)
		total += c.Len()
	}
	return percent(conforming, total)
}

// Conforms reports whether a single point is within tolerance.
func Conforms(p geometry.ContourPoint, tolerance float64) bool {
	return p.AbsDeviation() <= tolerance
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func countConforming(points []geometry.ContourPoint, tolerance float64) int {
	n := 0
	for _, p := range points {
		if Conforms(p, tolerance) {
			n++
		}
	}
	return n
}

func percent(conforming, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round1(100 * float64(conforming) / float64(total))
}
