package ingest_test

import (
	"errors"
	"testing"

	"contourqa/internal/ingest"
)

const measuredDoc = `{
  "measurement": {
    "mainContour": {
      "points": [
        {"position": [0, 0], "modelPosition": [0, 0.1], "direction": 0, "distance": 0.1, "i": 0},
        {"position": [1, 0], "modelPosition": [1, 0.2], "direction": 0, "distance": -0.2, "i": 1},
        {"position": [1, 1], "modelPosition": [1, 1], "direction": 0, "distance": 2.5, "i": 2, "notRelevantAsContour": true},
        {"position": [0, 1], "modelPosition": [0, 1], "direction": 0, "distance": 0, "i": 3}
      ],
      "vcuts": [
        {"found": true, "depth": 0.4, "width": 3, "startPointIdx": 1, "endPointIdx": 2, "highestDepthIdx": 2},
        {"found": false}
      ]
    },
    "additionalContours": [
      {
        "points": [
          {"position": [5, 5], "modelPosition": [5, 5], "direction": 0, "distance": 0.3, "i": 0}
        ],
        "vcuts": [{"found": false}]
      }
    ]
  }
}`

func TestDecodeMeasuredEnvelope(t *testing.T) {
	payload, err := ingest.Decode([]byte(measuredDoc))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if payload.Kind() != ingest.KindMeasured {
		t.Fatalf("expected measured payload, got %s", payload.Kind())
	}
	m, err := payload.Normalize()
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if m.MainContour.Len() != 4 {
		t.Fatalf("expected 4 main points, got %d", m.MainContour.Len())
	}
	if got := m.MainContour.Points[1].SignedDistance; got != -0.2 {
		t.Fatalf("expected signed distance -0.2, got %v", got)
	}
	if got := m.MainContour.Points[0].Model.Y; got != 0.1 {
		t.Fatalf("expected model y 0.1, got %v", got)
	}
	if len(m.AdditionalContours) != 1 || m.AdditionalContours[0].Len() != 1 {
		t.Fatalf("unexpected additional contours: %+v", m.AdditionalContours)
	}
	if len(m.VCuts) != 2 {
		t.Fatalf("expected only main contour vcuts, got %d", len(m.VCuts))
	}
	if !m.VCuts[0].Found || m.VCuts[0].Depth != 0.4 {
		t.Fatalf("unexpected first vcut: %+v", m.VCuts[0])
	}
	if m.VCuts[1].Found {
		t.Fatal("expected second vcut to be not found")
	}
}

func TestDecodeFlatPoints(t *testing.T) {
	m, kind, err := ingest.DecodeMeasurement([]byte(`[[0,0],[10,0],[10,5]]`))
	if err != nil {
		t.Fatalf("DecodeMeasurement returned error: %v", err)
	}
	if kind != ingest.KindFlatPoints {
		t.Fatalf("expected flat points, got %s", kind)
	}
	if m.MainContour.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", m.MainContour.Len())
	}
	last := m.MainContour.Points[2]
	if last.Index != 2 || last.Measured != last.Model || last.SignedDistance != 0 {
		t.Fatalf("unexpected flat point: %+v", last)
	}
}

func TestDecodeShapeFallsBackToNoCutsContour(t *testing.T) {
	doc := `{"shape": {"_id": "s1", "name": "L1",
	  "mainContour": {"noCutsContour": [[0,0],[4,0],[4,4]], "vcuts": [{"position": [2,0], "direction": 1.57, "width": 3, "depth": 1}]},
	  "additionalContours": [{"fullContour": [[1,1],[2,1]], "noCutsContour": [[9,9]]}]}}`
	payload, err := ingest.Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	shape, ok := payload.(*ingest.ShapePayload)
	if !ok {
		t.Fatalf("expected *ShapePayload, got %T", payload)
	}
	if shape.Name != "L1" || len(shape.MainContour.VCuts) != 1 {
		t.Fatalf("unexpected shape: %+v", shape)
	}
	m, err := payload.Normalize()
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if m.MainContour.Len() != 3 {
		t.Fatalf("expected no-cuts outline of 3 points, got %d", m.MainContour.Len())
	}
	if m.AdditionalContours[0].Len() != 2 {
		t.Fatalf("expected full contour preferred for additional outline")
	}
	if len(m.VCuts) != 0 {
		t.Fatalf("template vcuts should not be converted, got %d", len(m.VCuts))
	}
}

func TestDecodeRejectsUnknownDocuments(t *testing.T) {
	tests := []string{
		``,
		`42`,
		`{"data": {"mainContour": {"points": []}}}`,
		`{"measurement": {"measurement": {"mainContour": {"points": []}}}}`,
		`{"measurement": null}`,
	}
	for _, doc := range tests {
		if _, err := ingest.Decode([]byte(doc)); !errors.Is(err, ingest.ErrUnrecognized) {
			t.Fatalf("Decode(%q) expected ErrUnrecognized, got %v", doc, err)
		}
	}
}

func TestNormalizeRejectsBadVCutRange(t *testing.T) {
	doc := `{"mainContour": {"points": [
	  {"position": [0,0], "modelPosition": [0,0], "distance": 0, "i": 0},
	  {"position": [1,0], "modelPosition": [1,0], "distance": 0, "i": 1}],
	  "vcuts": [{"found": true, "depth": 1, "width": 1, "startPointIdx": 0, "endPointIdx": 7, "highestDepthIdx": 0}]}}`
	if _, _, err := ingest.DecodeMeasurement([]byte(doc)); err == nil {
		t.Fatal("expected invalid vcut range to fail normalization")
	}
}

func TestNormalizeRejectsDuplicateIndices(t *testing.T) {
	doc := `{"mainContour": {"points": [
	  {"position": [0,0], "modelPosition": [0,0], "distance": 0, "i": 3},
	  {"position": [1,0], "modelPosition": [1,0], "distance": 0, "i": 3}]}}`
	if _, _, err := ingest.DecodeMeasurement([]byte(doc)); err == nil {
		t.Fatal("expected duplicate indices to fail normalization")
	}
}
