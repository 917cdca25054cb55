package geometry

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point2D is a position in millimetres.
type Point2D struct {
	X, Y float64
}

// Pt creates a new point.
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Sub returns the difference between two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Distance returns the euclidean distance between two points.
func (p Point2D) Distance(other Point2D) float64 {
	d := p.Sub(other)
	return math.Hypot(d.X, d.Y)
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point2D) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// MarshalJSON encodes the point as a two-element array, the measurement wire format.
func (p Point2D) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes a two-element [x, y] array.
func (p *Point2D) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("point: expected 2 coordinates, got %d", len(raw))
	}
	p.X, p.Y = raw[0], raw[1]
	return nil
}
