package testsupport

import (
	"context"
	"testing"

	"contourqa/internal/config"
	"contourqa/internal/ledger"
)

// MustOpenLedger opens a ledger.Ledger for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config, opts ...ledger.Option) *ledger.Ledger {
	t.Helper()

	l, err := ledger.Open(cfg, opts...)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		l.Close()
	})
	return l
}

// MustOpenParameters opens a ledger and returns its parameter store.
func MustOpenParameters(t testing.TB, cfg *config.Config) *ledger.Parameters {
	t.Helper()
	return MustOpenLedger(t, cfg).Parameters()
}

// MustAppend appends d and fails the test on error.
func MustAppend(t testing.TB, l *ledger.Ledger, d ledger.Draft) ledger.LogID {
	t.Helper()

	id, err := l.Append(context.Background(), d)
	if err != nil {
		t.Fatalf("ledger.Append: %v", err)
	}
	return id
}
