package vcut

import (
	"math"

	"contourqa/internal/geometry"
)

// Status is the classification of one v-cut result.
type Status string

const (
	InTolerance    Status = "in_tolerance"
	OutOfTolerance Status = "out_of_tolerance"
	NotPresent     Status = "not_present"
)

// Classify returns the status of a single result.
func Classify(v geometry.VCutResult, tolerance float64) Status {
	if !v.Found {
		return NotPresent
	}
	if math.Abs(v.Depth) > tolerance {
		return OutOfTolerance
	}
	return InTolerance
}

// Validate classifies every result, preserving order.
func Validate(vcuts []geometry.VCutResult, tolerance float64) []Status {
	out := make([]Status, len(vcuts))
	for i, v := range vcuts {
		out[i] = Classify(v, tolerance)
	}
	return out
}

// Counts aggregates statuses.
type Counts struct {
	InTolerance    int `json:"inTolerance"`
	OutOfTolerance int `json:"outOfTolerance"`
	NotPresent     int `json:"notPresent"`
}

// Tally counts statuses.
func Tally(statuses []Status) Counts {
	var c Counts
	for _, s := range statuses {
		switch s {
		case InTolerance:
			c.InTolerance++
		case OutOfTolerance:
			c.OutOfTolerance++
		case NotPresent:
			c.NotPresent++
		}
	}
	return c
}

// Evaluated is the number of v-cuts that count toward pass/fail.
func (c Counts) Evaluated() int {
	return c.InTolerance + c.OutOfTolerance
}

// Pass reports whether no found v-cut is out of tolerance.
func (c Counts) Pass() bool {
	return c.OutOfTolerance == 0
}
