package ledger

import (
	"encoding/json"
	"strconv"
	"time"

	"contourqa/internal/geometry"
)

// LogID identifies an audit entry. Zero means "no entry".
type LogID int64

func (id LogID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Action labels the recorded event.
type Action string

const (
	ActionApprove         Action = "approved scan"
	ActionReject          Action = "rejected scan"
	ActionFlagForReview   Action = "flagged scan for review"
	ActionVerification    Action = "verified scan"
	ActionParameterChange Action = "parameter change"
)

// SnapshotElement is one measured element frozen at disposition time,
// together with the thresholds its accuracy was computed with.
type SnapshotElement struct {
	ElementID       int                         `json:"elementId"`
	ShapeID         string                      `json:"shapeId"`
	ShapeName       string                      `json:"shapeName,omitempty"`
	Thickness       float64                     `json:"thickness"`
	Accuracy        float64                     `json:"accuracy"`
	PointsTolerance float64                     `json:"pointsTolerance"`
	VCutsTolerance  float64                     `json:"vcutsTolerance"`
	Measurement     geometry.ElementMeasurement `json:"measurement"`
}

// Draft is an entry before the ledger assigns its id, timestamp and hashes.
// A nil Elements slice records no payload.
type Draft struct {
	Actor          string
	Action         Action
	DetailsText    string
	Elements       []SnapshotElement
	RelatedEntryID LogID
}

// Entry is a stored audit record.
type Entry struct {
	ID             LogID           `json:"id"`
	Timestamp      time.Time       `json:"timestamp"`
	Actor          string          `json:"actor"`
	Action         Action          `json:"action"`
	DetailsText    string          `json:"detailsText"`
	ScanPayload    json.RawMessage `json:"scanPayload,omitempty"`
	RelatedEntryID LogID           `json:"relatedEntryId,omitempty"`
	PrevHash       string          `json:"prevHash"`
	RecordHash     string          `json:"recordHash"`
}

// HasPayload reports whether the entry carries a scan snapshot.
func (e Entry) HasPayload() bool {
	return len(e.ScanPayload) > 0
}

// Snapshot is the decoded payload of an entry.
type Snapshot struct {
	EntryID  LogID             `json:"entryId"`
	Elements []SnapshotElement `json:"elements"`
}

// Measurements returns the frozen measurements in element order.
func (s Snapshot) Measurements() []geometry.ElementMeasurement {
	out := make([]geometry.ElementMeasurement, len(s.Elements))
	for i, el := range s.Elements {
		out[i] = el.Measurement
	}
	return out
}

// Order selects the sort direction of List.
type Order int

const (
	Descending Order = iota
	Ascending
)

// Filter narrows List. Actor and ActionSubstring match case-insensitively as
// substrings; Date matches entries recorded on the same UTC calendar day.
type Filter struct {
	Actor           string
	ActionSubstring string
	Date            time.Time
	Limit           int
}

// ChainReport is the result of VerifyChain. BrokenAt is zero when the chain
// is intact.
type ChainReport struct {
	Checked  int    `json:"checked"`
	BrokenAt LogID  `json:"brokenAt,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Intact reports whether every link verified.
func (r ChainReport) Intact() bool {
	return r.BrokenAt == 0
}
