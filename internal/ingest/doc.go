// Package ingest converts contour payloads received at the system boundary
// into the canonical geometry types.
//
// Three wire shapes exist: measurement results nesting points under
// mainContour.points, bare coordinate arrays, and reference shapes carrying
// fullContour/noCutsContour outlines. Decode classifies a document exactly
// once into a RawContourPayload variant and Normalize produces a
// geometry.ElementMeasurement, so scoring code never inspects raw JSON.
package ingest
