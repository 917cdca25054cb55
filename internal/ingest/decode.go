package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"contourqa/internal/geometry"
)

// ErrUnrecognized is returned when a document matches no payload variant.
var ErrUnrecognized = errors.New("unrecognized contour payload")

type probe struct {
	MainContour *struct {
		Points        json.RawMessage `json:"points"`
		FullContour   json.RawMessage `json:"fullContour"`
		NoCutsContour json.RawMessage `json:"noCutsContour"`
	} `json:"mainContour"`
	Measurement json.RawMessage `json:"measurement"`
	Shape       json.RawMessage `json:"shape"`
}

// Decode classifies data into one payload variant. Collaborator response
// envelopes ({"measurement": ...} and {"shape": ...}) are unwrapped once.
func Decode(data []byte) (RawContourPayload, error) {
	return decode(data, true)
}

func decode(data []byte, unwrap bool) (RawContourPayload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrUnrecognized)
	}
	switch trimmed[0] {
	case '[':
		var pts []geometry.Point2D
		if err := json.Unmarshal(trimmed, &pts); err != nil {
			return nil, fmt.Errorf("decode flat points: %w", err)
		}
		return FlatPointsPayload(pts), nil
	case '{':
	default:
		return nil, fmt.Errorf("%w: expected object or array", ErrUnrecognized)
	}

	var p probe
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	switch {
	case p.MainContour != nil && len(p.MainContour.Points) > 0:
		var out MeasuredPayload
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("decode measured payload: %w", err)
		}
		return &out, nil
	case p.MainContour != nil && (len(p.MainContour.FullContour) > 0 || len(p.MainContour.NoCutsContour) > 0):
		var out ShapePayload
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("decode shape payload: %w", err)
		}
		return &out, nil
	case unwrap && len(p.Measurement) > 0 && !isNull(p.Measurement):
		return decode(p.Measurement, false)
	case unwrap && len(p.Shape) > 0 && !isNull(p.Shape):
		return decode(p.Shape, false)
	}
	return nil, ErrUnrecognized
}

// DecodeMeasurement decodes and normalizes in one step.
func DecodeMeasurement(data []byte) (geometry.ElementMeasurement, Kind, error) {
	payload, err := Decode(data)
	if err != nil {
		return geometry.ElementMeasurement{}, "", err
	}
	m, err := payload.Normalize()
	if err != nil {
		return geometry.ElementMeasurement{}, payload.Kind(), err
	}
	return m, payload.Kind(), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
