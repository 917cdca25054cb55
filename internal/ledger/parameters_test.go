package ledger_test

import (
	"context"
	"strings"
	"testing"

	"contourqa/internal/ledger"
	"contourqa/internal/logging"
	"contourqa/internal/testsupport"
	"contourqa/internal/tolerance"
)

func TestParametersPersistTolerancesAndRecordChange(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	l := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()
	params := l.Parameters()

	defaults := map[tolerance.Category]tolerance.Setting{
		tolerance.Points: {Threshold: 1, Color: "#2e7d32"},
		tolerance.VCuts:  {Threshold: 0.5, Color: "#c62828"},
	}
	registry := tolerance.NewRegistry(defaults, params, logging.NewNop())
	if err := registry.Save(ctx, "anna", tolerance.Points, tolerance.Setting{Threshold: 2.5, Color: "#000000"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	value, ok, err := params.Get(ctx, "tolerance_points")
	if err != nil || !ok || value != "2.5" {
		t.Fatalf("unexpected tolerance_points parameter: %q %v %v", value, ok, err)
	}

	entries, err := l.List(ctx, ledger.Filter{ActionSubstring: "parameter"}, ledger.Descending)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one parameter change entry, got %d", len(entries))
	}
	if !strings.Contains(entries[0].DetailsText, "tolerance_points, Old value: 1, New value: 2.5") {
		t.Fatalf("unexpected details: %q", entries[0].DetailsText)
	}
	if entries[0].Actor != "anna" {
		t.Fatalf("unexpected actor: %q", entries[0].Actor)
	}

	reloaded := tolerance.NewRegistry(defaults, params, logging.NewNop())
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := reloaded.Profile().Get(tolerance.Points); got.Threshold != 2.5 || got.Color != "#000000" {
		t.Fatalf("unexpected reloaded points setting: %+v", got)
	}
	if got := reloaded.Profile().Threshold(tolerance.VCuts); got != 0.5 {
		t.Fatalf("expected default vcuts threshold, got %v", got)
	}
}

func TestParametersRejectedSaveLeavesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	params := testsupport.MustOpenParameters(t, cfg)
	ctx := context.Background()

	err := params.SaveTolerance(ctx, "", tolerance.Points, tolerance.Setting{}, tolerance.Setting{Threshold: 1})
	if err == nil {
		t.Fatal("expected missing actor to be rejected")
	}
	if _, ok, _ := params.Get(ctx, "tolerance_points"); ok {
		t.Fatal("rejected save must not write parameters")
	}
}
