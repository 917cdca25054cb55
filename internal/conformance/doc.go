// Package conformance scores how closely a measured contour matches its
// reference model.
//
// A point conforms when its absolute signed distance is within tolerance. The
// score is the conforming share in percent, rounded to one decimal place, and
// an empty contour scores 0. Every function here is pure, which is what makes
// replaying a stored measurement reproduce the original accuracy exactly.
package conformance
