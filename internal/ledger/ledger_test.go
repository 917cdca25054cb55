package ledger_test

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"contourqa/internal/failure"
	"contourqa/internal/geometry"
	"contourqa/internal/ledger"
	"contourqa/internal/testsupport"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

func newClock(start time.Time) *stepClock {
	return &stepClock{now: start}
}

func snapshotOf(m geometry.ElementMeasurement) []ledger.SnapshotElement {
	return []ledger.SnapshotElement{{
		ElementID:   0,
		ShapeID:     "shape-1",
		ShapeName:   "L001",
		Thickness:   18,
		Accuracy:    80,
		Measurement: m,
	}}
}

func TestAppendAssignsIncreasingIDsAndUTCTimestamps(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	local := time.FixedZone("CEST", 2*60*60)
	clock := newClock(time.Date(2026, 5, 1, 23, 30, 0, 0, local))
	l := testsupport.MustOpenLedger(t, cfg, ledger.WithClock(clock.Now))

	first := testsupport.MustAppend(t, l, ledger.Draft{Actor: "jan", Action: ledger.ActionApprove})
	second := testsupport.MustAppend(t, l, ledger.Draft{Actor: "jan", Action: ledger.ActionReject})
	if first != 1 || second != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first, second)
	}

	entry, err := l.Get(context.Background(), first)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Timestamp.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", entry.Timestamp.Location())
	}
	if got := entry.Timestamp.Format(time.DateOnly); got != "2026-05-01" {
		t.Fatalf("expected UTC day 2026-05-01, got %s", got)
	}
	if entry.HasPayload() {
		t.Fatal("expected entry without payload")
	}
}

func TestReplayRoundTripsPayload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	l := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	m := testsupport.MeasurementWithVCut(0.5, 0.1, -0.4, 1.7, 0.05)
	m.AdditionalContours = []geometry.Contour{testsupport.Contour(0.3, -2.2)}
	id := testsupport.MustAppend(t, l, ledger.Draft{
		Actor:       "anna",
		Action:      ledger.ActionApprove,
		DetailsText: "Marker: M1",
		Elements:    snapshotOf(m),
	})

	snapshot, err := l.Replay(ctx, id)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(snapshot.Elements) != 1 {
		t.Fatalf("expected one element, got %d", len(snapshot.Elements))
	}
	if !reflect.DeepEqual(snapshot.Measurements()[0], m) {
		t.Fatalf("replayed measurement differs:\n got %+v\nwant %+v", snapshot.Measurements()[0], m)
	}

	before, _ := l.Get(ctx, id)
	if _, err := l.Replay(ctx, id); err != nil {
		t.Fatalf("second Replay: %v", err)
	}
	after, _ := l.Get(ctx, id)
	if !reflect.DeepEqual(before, after) {
		t.Fatal("replay must not mutate the stored entry")
	}
}

func TestReplayWithoutPayloadIsNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	l := testsupport.MustOpenLedger(t, cfg)
	id := testsupport.MustAppend(t, l, ledger.Draft{Actor: "jan", Action: ledger.ActionParameterChange})

	_, err := l.Replay(context.Background(), id)
	if !errors.Is(err, ledger.ErrNoPayload) {
		t.Fatalf("expected ErrNoPayload, got %v", err)
	}
	if failure.KindOf(err) != failure.KindNotFound {
		t.Fatalf("expected not found kind, got %s", failure.KindOf(err))
	}
	if _, err := l.Replay(context.Background(), 99); !errors.Is(err, ledger.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestRelatedEntryMustExist(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	l := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	_, err := l.Append(ctx, ledger.Draft{Actor: "anna", Action: ledger.ActionVerification, RelatedEntryID: 42})
	if !errors.Is(err, ledger.ErrRelatedNotFound) {
		t.Fatalf("expected ErrRelatedNotFound, got %v", err)
	}
	entries, err := l.List(ctx, ledger.Filter{}, ledger.Descending)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected append must not store anything, got %d entries", len(entries))
	}
}

func TestVerificationScenario(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	l := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	m := testsupport.Measurement(0.1, 0.2, 3.0)
	a := testsupport.MustAppend(t, l, ledger.Draft{Actor: "jan", Action: ledger.ActionApprove, Elements: snapshotOf(m)})
	b := testsupport.MustAppend(t, l, ledger.Draft{Actor: "anna", Action: ledger.ActionVerification, Elements: snapshotOf(m), RelatedEntryID: a})

	entries, err := l.List(ctx, ledger.Filter{}, ledger.Ascending)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != a || entries[1].ID != b {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[1].RelatedEntryID != a {
		t.Fatalf("expected B related to A, got %d", entries[1].RelatedEntryID)
	}
	if _, err := l.Replay(ctx, a); err != nil {
		t.Fatalf("Replay(A): %v", err)
	}
	if _, err := l.Replay(ctx, b); err != nil {
		t.Fatalf("Replay(B): %v", err)
	}

	children, err := l.Children(ctx, a)
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	if len(children) != 1 || children[0].ID != b {
		t.Fatalf("unexpected children: %+v", children)
	}
}

func TestListFilters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	clock := newClock(time.Date(2026, 3, 9, 23, 57, 0, 0, time.UTC))
	l := testsupport.MustOpenLedger(t, cfg, ledger.WithClock(clock.Now))
	ctx := context.Background()

	// Entries land at 23:58 and 23:59 on the 9th, then 00:00 and 00:01 on the 10th.
	testsupport.MustAppend(t, l, ledger.Draft{Actor: "Jan", Action: ledger.ActionApprove})
	testsupport.MustAppend(t, l, ledger.Draft{Actor: "anna", Action: ledger.ActionReject})
	testsupport.MustAppend(t, l, ledger.Draft{Actor: "JANUSZ", Action: ledger.ActionApprove})
	testsupport.MustAppend(t, l, ledger.Draft{Actor: "pawel", Action: ledger.ActionParameterChange})

	tests := []struct {
		name   string
		filter ledger.Filter
		want   []ledger.LogID
	}{
		{"no filter", ledger.Filter{}, []ledger.LogID{4, 3, 2, 1}},
		{"actor case-insensitive substring", ledger.Filter{Actor: "jan"}, []ledger.LogID{3, 1}},
		{"action substring", ledger.Filter{ActionSubstring: "SCAN"}, []ledger.LogID{3, 2, 1}},
		{"date equals", ledger.Filter{Date: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}, []ledger.LogID{4, 3}},
		{"combined", ledger.Filter{Actor: "an", ActionSubstring: "approved", Date: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)}, []ledger.LogID{1}},
		{"limit keeps most recent", ledger.Filter{Limit: 2}, []ledger.LogID{4, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := l.List(ctx, tt.filter, ledger.Descending)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			got := make([]ledger.LogID, len(entries))
			for i, e := range entries {
				got[i] = e.ID
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got ids %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListDefaultCap(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithListLimit(3))
	l := testsupport.MustOpenLedger(t, cfg)
	for i := 0; i < 5; i++ {
		testsupport.MustAppend(t, l, ledger.Draft{Actor: "jan", Action: ledger.ActionApprove})
	}
	entries, err := l.List(context.Background(), ledger.Filter{}, ledger.Ascending)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 || entries[0].ID != 3 || entries[2].ID != 5 {
		t.Fatalf("expected the 3 most recent entries in ascending order, got %+v", entries)
	}
}

func TestAppendRejectsInvalidDrafts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	l := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	bad := geometry.ElementMeasurement{
		MainContour: testsupport.Contour(0, 0),
		VCuts:       []geometry.VCutResult{geometry.FoundVCut(1, 1, 0, 9, 0)},
	}
	drafts := []ledger.Draft{
		{Action: ledger.ActionApprove},
		{Actor: "jan"},
		{Actor: "jan", Action: ledger.ActionApprove, Elements: snapshotOf(bad)},
	}
	for _, d := range drafts {
		if _, err := l.Append(ctx, d); failure.KindOf(err) != failure.KindValidation {
			t.Fatalf("expected validation failure for %+v, got %v", d, err)
		}
	}
}

func TestConcurrentAppendsAreSerialized(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	l := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Append(ctx, ledger.Draft{Actor: "jan", Action: ledger.ActionApprove, Elements: snapshotOf(testsupport.Measurement(0.1))})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent append: %v", err)
		}
	}

	report, err := l.VerifyChain(ctx)
	if err != nil {
		t.Fatalf("VerifyChain: %v", err)
	}
	if !report.Intact() || report.Checked != writers {
		t.Fatalf("unexpected chain report: %+v", report)
	}
}

func TestVerifyChainDetectsTampering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	l := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()
	for _, actor := range []string{"jan", "anna", "pawel"} {
		testsupport.MustAppend(t, l, ledger.Draft{Actor: actor, Action: ledger.ActionApprove, DetailsText: "ok"})
	}

	db, err := sql.Open("sqlite", cfg.LedgerPath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	statements := []string{
		"DROP TRIGGER audit_entries_no_update",
		"UPDATE audit_entries SET details_text = 'forged' WHERE id = 2",
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}

	report, err := l.VerifyChain(ctx)
	if err != nil {
		t.Fatalf("VerifyChain: %v", err)
	}
	if report.Intact() || report.BrokenAt != 2 {
		t.Fatalf("expected chain broken at 2, got %+v", report)
	}
}

func TestEntriesAreAppendOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	l := testsupport.MustOpenLedger(t, cfg)
	testsupport.MustAppend(t, l, ledger.Draft{Actor: "jan", Action: ledger.ActionApprove})

	db, err := sql.Open("sqlite", cfg.LedgerPath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec("DELETE FROM audit_entries WHERE id = 1"); err == nil {
		t.Fatal("expected delete to be rejected")
	}
}
