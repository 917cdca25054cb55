package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ContourPoint pairs a measured boundary position with its model position at
// the same parametric index. SignedDistance is the perpendicular deviation from
// the model boundary; its sign encodes inside/outside.
type ContourPoint struct {
	Measured       Point2D `json:"measured"`
	Model          Point2D `json:"model"`
	SignedDistance float64 `json:"signedDistance"`
	Index          uint32  `json:"index"`
}

// AbsDeviation returns the unsigned deviation from the model boundary.
func (p ContourPoint) AbsDeviation() float64 {
	return math.Abs(p.SignedDistance)
}

// Contour is an ordered, closed boundary: the first and last points are
// adjacent on the physical part.
type Contour struct {
	Points []ContourPoint `json:"points"`
}

// ErrIndexOrder is returned when contour indices are not strictly increasing.
var ErrIndexOrder = errors.New("contour indices must be strictly increasing")

// Len returns the number of points.
func (c Contour) Len() int {
	return len(c.Points)
}

// Empty reports whether the contour has no points.
func (c Contour) Empty() bool {
	return len(c.Points) == 0
}

// Validate checks index monotonicity and that every value is finite.
func (c Contour) Validate() error {
	for i, p := range c.Points {
		if !p.Measured.IsFinite() || !p.Model.IsFinite() || math.IsNaN(p.SignedDistance) || math.IsInf(p.SignedDistance, 0) {
			return fmt.Errorf("point %d: non-finite coordinate or distance", p.Index)
		}
		if i > 0 && p.Index <= c.Points[i-1].Index {
			return fmt.Errorf("%w: index %d follows %d", ErrIndexOrder, p.Index, c.Points[i-1].Index)
		}
	}
	return nil
}

// Position returns the slice position of the point carrying index, or -1.
func (c Contour) Position(index uint32) int {
	lo, hi := 0, len(c.Points)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case c.Points[mid].Index == index:
			return mid
		case c.Points[mid].Index < index:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return -1
}

// Slice returns the points from index start through index end inclusive in
// traversal order. When start > end the range wraps past the last point back
// to the first. Both indices must exist in the contour.
func (c Contour) Slice(start, end uint32) ([]ContourPoint, error) {
	from := c.Position(start)
	if from < 0 {
		return nil, fmt.Errorf("start index %d not in contour", start)
	}
	to := c.Position(end)
	if to < 0 {
		return nil, fmt.Errorf("end index %d not in contour", end)
	}
	if from <= to {
		out := make([]ContourPoint, to-from+1)
		copy(out, c.Points[from:to+1])
		return out, nil
	}
	out := make([]ContourPoint, 0, len(c.Points)-from+to+1)
	out = append(out, c.Points[from:]...)
	out = append(out, c.Points[:to+1]...)
	return out, nil
}

// Clone returns a deep copy.
func (c Contour) Clone() Contour {
	if c.Points == nil {
		return Contour{}
	}
	pts := make([]ContourPoint, len(c.Points))
	copy(pts, c.Points)
	return Contour{Points: pts}
}
