package inspection

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"contourqa/internal/conformance"
	"contourqa/internal/ledger"
	"contourqa/internal/logging"
	"contourqa/internal/session"
	"contourqa/internal/tolerance"
	"contourqa/internal/vcut"
)

// ReplayElement pairs a stored element with its metrics recomputed from the
// frozen measurement.
type ReplayElement struct {
	ledger.SnapshotElement

	// RecordedAccuracy is the stored measurement re-scored at the thresholds
	// stored with it; it matches Accuracy recorded at disposition time.
	RecordedAccuracy float64 `json:"recordedAccuracy"`
	// CurrentAccuracy uses the active tolerance profile.
	CurrentAccuracy float64             `json:"currentAccuracy"`
	FullAccuracy    float64             `json:"fullAccuracy"`
	Summary         conformance.Summary `json:"summary"`
	VCutStatuses    []vcut.Status       `json:"vcutStatuses"`
	VCutCounts      vcut.Counts         `json:"vcutCounts"`
}

// ReplayView is the read-only reconstruction of a stored scan.
type ReplayView struct {
	Entry         ledger.Entry    `json:"entry"`
	Elements      []ReplayElement `json:"elements"`
	Verifications []ledger.Entry  `json:"verifications"`
}

// Replay reconstructs the metrics view of entry id. Nothing is written.
func (s *Service) Replay(ctx context.Context, id ledger.LogID) (ReplayView, error) {
	entry, err := s.ledger.Get(ctx, id)
	if err != nil {
		return ReplayView{}, err
	}
	snapshot, err := s.ledger.Replay(ctx, id)
	if err != nil {
		return ReplayView{}, err
	}
	children, err := s.ledger.Children(ctx, id)
	if err != nil {
		return ReplayView{}, err
	}

	profile := s.tolerances.Profile()
	points := profile.Threshold(tolerance.Points)
	vcuts := profile.Threshold(tolerance.VCuts)
	elements := make([]ReplayElement, len(snapshot.Elements))
	for i, el := range snapshot.Elements {
		statuses := vcut.Validate(el.Measurement.VCuts, vcuts)
		elements[i] = ReplayElement{
			SnapshotElement:  el,
			RecordedAccuracy: conformance.Score(el.Measurement.MainContour, el.PointsTolerance),
			CurrentAccuracy:  conformance.Score(el.Measurement.MainContour, points),
			FullAccuracy:     conformance.ScoreAll(el.Measurement, points),
			Summary:          conformance.Summarize(el.Measurement.MainContour, points),
			VCutStatuses:     statuses,
			VCutCounts:       vcut.Tally(statuses),
		}
	}
	return ReplayView{Entry: entry, Elements: elements, Verifications: children}, nil
}

// Verify commits a verification disposition against a replayed entry. The new
// entry references id and re-embeds the replayed payload with accuracy under
// the current profile, so it can itself be replayed.
func (s *Service) Verify(ctx context.Context, id ledger.LogID, kind session.DispositionKind, comment, actor string) (ledger.LogID, error) {
	if _, err := session.ParseDisposition(string(kind)); err != nil {
		return 0, err
	}
	ctx = logging.WithCorrelationID(ctx, uuid.NewString())
	view, err := s.Replay(ctx, id)
	if err != nil {
		return 0, err
	}

	profile := s.tolerances.Profile()
	elements := make([]ledger.SnapshotElement, len(view.Elements))
	for i, el := range view.Elements {
		stored := el.SnapshotElement
		stored.Accuracy = el.CurrentAccuracy
		stored.PointsTolerance = profile.Threshold(tolerance.Points)
		stored.VCutsTolerance = profile.Threshold(tolerance.VCuts)
		stored.Measurement = el.Measurement.Clone()
		elements[i] = stored
	}

	status := fmt.Sprintf("Verified (%s) entry %d", kind.Label(), id)
	newID, err := s.ledger.Append(ctx, ledger.Draft{
		Actor:          actor,
		Action:         ledger.ActionVerification,
		DetailsText:    session.FormatDetails(markerFromDetails(view.Entry.DetailsText), status, comment, elements),
		Elements:       elements,
		RelatedEntryID: id,
	})
	if err != nil {
		return 0, err
	}
	logging.WithContext(ctx, s.logger).Info("scan verified",
		logging.Int64(logging.FieldEntryID, int64(newID)),
		logging.Int64("related_entry_id", int64(id)),
		logging.String("disposition", string(kind)),
	)
	return newID, nil
}
