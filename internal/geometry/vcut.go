package geometry

import (
	"encoding/json"
	"fmt"
)

// VCutResult is the outcome of searching for one notch: either a found notch
// with its geometry and contour index range, or NotFound.
type VCutResult struct {
	Found           bool
	Depth           float64
	Width           float64
	StartPointIdx   uint32
	EndPointIdx     uint32
	HighestDepthIdx uint32
}

// FoundVCut builds a found v-cut result.
func FoundVCut(depth, width float64, start, end, highest uint32) VCutResult {
	return VCutResult{
		Found:           true,
		Depth:           depth,
		Width:           width,
		StartPointIdx:   start,
		EndPointIdx:     end,
		HighestDepthIdx: highest,
	}
}

// NotFoundVCut builds a result for a notch that was searched for but not found.
func NotFoundVCut() VCutResult {
	return VCutResult{}
}

// ValidateAgainst checks that the index range is a non-empty slice of the
// owning contour and that the deepest point lies inside it.
func (v VCutResult) ValidateAgainst(c Contour) error {
	if !v.Found {
		return nil
	}
	span, err := c.Slice(v.StartPointIdx, v.EndPointIdx)
	if err != nil {
		return fmt.Errorf("v-cut range: %w", err)
	}
	if len(span) == 0 {
		return fmt.Errorf("v-cut range %d..%d is empty", v.StartPointIdx, v.EndPointIdx)
	}
	for _, p := range span {
		if p.Index == v.HighestDepthIdx {
			return nil
		}
	}
	return fmt.Errorf("v-cut deepest index %d outside range %d..%d", v.HighestDepthIdx, v.StartPointIdx, v.EndPointIdx)
}

// Points returns the contour points spanned by the v-cut.
func (v VCutResult) Points(c Contour) ([]ContourPoint, error) {
	if !v.Found {
		return nil, nil
	}
	return c.Slice(v.StartPointIdx, v.EndPointIdx)
}

type vcutWire struct {
	Found           bool     `json:"found"`
	Depth           *float64 `json:"depth,omitempty"`
	Width           *float64 `json:"width,omitempty"`
	StartPointIdx   *uint32  `json:"startPointIdx,omitempty"`
	EndPointIdx     *uint32  `json:"endPointIdx,omitempty"`
	HighestDepthIdx *uint32  `json:"highestDepthIdx,omitempty"`
}

// MarshalJSON emits {"found": false} for NotFound and the full record otherwise.
func (v VCutResult) MarshalJSON() ([]byte, error) {
	if !v.Found {
		return json.Marshal(vcutWire{})
	}
	return json.Marshal(vcutWire{
		Found:           true,
		Depth:           &v.Depth,
		Width:           &v.Width,
		StartPointIdx:   &v.StartPointIdx,
		EndPointIdx:     &v.EndPointIdx,
		HighestDepthIdx: &v.HighestDepthIdx,
	})
}

// UnmarshalJSON decodes the tagged form; a found record must carry every field.
func (v *VCutResult) UnmarshalJSON(data []byte) error {
	var wire vcutWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("vcut: %w", err)
	}
	if !wire.Found {
		*v = NotFoundVCut()
		return nil
	}
	if wire.Depth == nil || wire.Width == nil || wire.StartPointIdx == nil || wire.EndPointIdx == nil || wire.HighestDepthIdx == nil {
		return fmt.Errorf("vcut: found record is missing fields")
	}
	*v = FoundVCut(*wire.Depth, *wire.Width, *wire.StartPointIdx, *wire.EndPointIdx, *wire.HighestDepthIdx)
	return nil
}
