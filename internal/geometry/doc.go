// Package geometry holds the value types shared by the scorer, the v-cut
// validator, the scan session, and the audit ledger: points, paired
// measured/model contour points, closed contours, v-cut results, and the full
// measurement of one physical element.
//
// Contours are closed. Point indices define traversal order and Slice treats
// the sequence as cyclic so a v-cut range may wrap past the last point.
package geometry
