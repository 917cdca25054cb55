package vcut_test

import (
	"reflect"
	"testing"

	"contourqa/internal/geometry"
	"contourqa/internal/vcut"
)

func TestValidateDepthAgainstTolerance(t *testing.T) {
	found := geometry.FoundVCut(0.5, 2, 0, 4, 2)
	cases := []struct {
		tol  float64
		want vcut.Status
	}{
		{1.0, vcut.InTolerance},
		{0.5, vcut.InTolerance},
		{0.3, vcut.OutOfTolerance},
	}
	for _, tc := range cases {
		got := vcut.Validate([]geometry.VCutResult{found}, tc.tol)
		if got[0] != tc.want {
			t.Fatalf("tol %v: got %s want %s", tc.tol, got[0], tc.want)
		}
	}
}

func TestValidateNegativeDepthUsesMagnitude(t *testing.T) {
	got := vcut.Classify(geometry.FoundVCut(-0.8, 1, 0, 1, 0), 0.5)
	if got != vcut.OutOfTolerance {
		t.Fatalf("expected out of tolerance, got %s", got)
	}
}

func TestNotFoundAlwaysNotPresent(t *testing.T) {
	for _, tol := range []float64{0, 0.1, 1e9} {
		got := vcut.Validate([]geometry.VCutResult{geometry.NotFoundVCut()}, tol)
		if !reflect.DeepEqual(got, []vcut.Status{vcut.NotPresent}) {
			t.Fatalf("tol %v: got %v", tol, got)
		}
	}
}

func TestTallyIgnoresNotPresent(t *testing.T) {
	statuses := vcut.Validate([]geometry.VCutResult{
		geometry.NotFoundVCut(),
		geometry.FoundVCut(0.2, 1, 0, 1, 0),
		geometry.NotFoundVCut(),
	}, 0.5)
	counts := vcut.Tally(statuses)
	if counts.NotPresent != 2 || counts.InTolerance != 1 || counts.Evaluated() != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if !counts.Pass() {
		t.Fatal("expected pass")
	}
	if len(vcut.Validate(nil, 1)) != 0 {
		t.Fatal("expected empty result for no v-cuts")
	}
}
