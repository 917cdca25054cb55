package conformance_test

import (
	"math/rand"
	"testing"

	"contourqa/internal/conformance"
	"contourqa/internal/geometry"
)

func contourWithDistances(distances ...float64) geometry.Contour {
	pts := make([]geometry.ContourPoint, len(distances))
	for i, d := range distances {
		pts[i] = geometry.ContourPoint{
			Measured:       geometry.Pt(float64(i), d),
			Model:          geometry.Pt(float64(i), 0),
			SignedDistance: d,
			Index:          uint32(i),
		}
	}
	return geometry.Contour{Points: pts}
}

func TestScoreEightOfTen(t *testing.T) {
	c := contourWithDistances(0, 0.5, -1, 1.5, 2, -2, 0.1, 1.9, 3, -3)
	if got := conformance.Score(c, 2.0); got != 80.0 {
		t.Fatalf("expected 80.0, got %v", got)
	}
}

func TestScoreEmptyContour(t *testing.T) {
	for _, tol := range []float64{0, 0.5, 1000} {
		if got := conformance.Score(geometry.Contour{}, tol); got != 0 {
			t.Fatalf("tol %v: expected 0, got %v", tol, got)
		}
	}
}

func TestScoreAllConforming(t *testing.T) {
	c := contourWithDistances(0.2, -0.3, 0.3)
	if got := conformance.Score(c, 0.3); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
}

func TestScoreRoundsToOneDecimal(t *testing.T) {
	c := contourWithDistances(0, 0, 5)
	if got := conformance.Score(c, 1); got != 66.7 {
		t.Fatalf("expected 66.7, got %v", got)
	}
}

func TestScoreBoundsAndMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		n := rng.Intn(40)
		d := make([]float64, n)
		for i := range d {
			d[i] = (rng.Float64() - 0.5) * 10
		}
		c := contourWithDistances(d...)
		prev := -1.0
		for tol := 0.0; tol <= 6; tol += 0.25 {
			got := conformance.Score(c, tol)
			if got < 0 || got > 100 {
				t.Fatalf("score %v out of range", got)
			}
			if got < prev {
				t.Fatalf("score decreased from %v to %v at tol %v", prev, got, tol)
			}
			prev = got
		}
	}
}

func TestScoreAllPoolsContours(t *testing.T) {
	m := geometry.ElementMeasurement{
		MainContour:        contourWithDistances(0, 0, 0, 5),
		AdditionalContours: []geometry.Contour{contourWithDistances(0, 5), contourWithDistances()},
	}
	if got := conformance.Score(m.MainContour, 1); got != 75 {
		t.Fatalf("main contour: expected 75, got %v", got)
	}
	if got := conformance.ScoreAll(m, 1); got != 66.7 {
		t.Fatalf("pooled: expected 66.7, got %v", got)
	}
	if got := conformance.ScoreAll(geometry.ElementMeasurement{}, 1); got != 0 {
		t.Fatalf("empty measurement: expected 0, got %v", got)
	}
}

func TestSummarize(t *testing.T) {
	c := contourWithDistances(0.5, -2.5, 1)
	s := conformance.Summarize(c, 1)
	if s.Total != 3 || s.Conforming != 2 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.MaxDeviation != 2.5 || s.WorstIndex != 1 {
		t.Fatalf("unexpected worst point: %+v", s)
	}
	if s.Accuracy != 66.7 || s.Pass() {
		t.Fatalf("unexpected accuracy/pass: %+v", s)
	}
	if len(conformance.Outliers(c, 1)) != 1 {
		t.Fatal("expected one outlier")
	}
	if conformance.Summarize(geometry.Contour{}, 1).Pass() {
		t.Fatal("empty contour must not pass")
	}
}
