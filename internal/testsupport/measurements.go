package testsupport

import "contourqa/internal/geometry"

// Contour builds a contour with one point per deviation, indexed from zero and
// laid out along the x axis one millimetre apart.
func Contour(deviations ...float64) geometry.Contour {
	points := make([]geometry.ContourPoint, len(deviations))
	for i, d := range deviations {
		points[i] = geometry.ContourPoint{
			Measured:       geometry.Pt(float64(i), d),
			Model:          geometry.Pt(float64(i), 0),
			SignedDistance: d,
			Index:          uint32(i),
		}
	}
	return geometry.Contour{Points: points}
}

// Measurement builds a measurement whose main contour carries deviations.
func Measurement(deviations ...float64) geometry.ElementMeasurement {
	return geometry.ElementMeasurement{MainContour: Contour(deviations...)}
}

// MeasurementWithVCut builds a measurement with one found v-cut spanning
// indices 1..2 of the main contour (which needs at least three points) and one
// v-cut that was not found.
func MeasurementWithVCut(depth float64, deviations ...float64) geometry.ElementMeasurement {
	m := Measurement(deviations...)
	m.VCuts = []geometry.VCutResult{
		geometry.FoundVCut(depth, 2, 1, 2, 1),
		geometry.NotFoundVCut(),
	}
	return m
}

// Uniform returns n copies of deviation.
func Uniform(n int, deviation float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = deviation
	}
	return out
}
