package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"contourqa/internal/config"
	"contourqa/internal/ledger"
	"contourqa/internal/logging"
	"contourqa/internal/vision"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFixtures runs a throwaway simulator against dir: shapes and detected
// elements must decode, and every detected element needs a measurement file.
func CheckFixtures(ctx context.Context, dir string) Result {
	const name = "Vision fixtures"
	if err := unix.Access(dir, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", dir, err)}
	}

	sim := vision.NewSimulator(logging.NewNop(), vision.WithFixtureDir(dir))
	shapes, err := sim.ListShapes(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: shapes: %v)", dir, err)}
	}
	if err := sim.CaptureMeasurementPhotos(ctx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: capture: %v)", dir, err)}
	}
	detected, err := sim.DetectElements(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: detected elements: %v)", dir, err)}
	}
	var missing []error
	for _, el := range detected {
		file := filepath.Join(dir, fmt.Sprintf("element-%d.json", el.ID))
		if _, err := os.Stat(file); err != nil {
			missing = append(missing, fmt.Errorf("element %d: %w", el.ID, err))
		}
	}
	if err := errors.Join(missing...); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", dir, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d shapes, %d elements)", dir, len(shapes), len(detected))}
}

// CheckLedger opens the ledger and verifies its hash chain.
func CheckLedger(ctx context.Context, cfg *config.Config) Result {
	const name = "Audit ledger"
	path := cfg.LedgerPath()
	l, err := ledger.Open(cfg, ledger.WithLogger(logging.NewNop()))
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: open: %v)", path, err)}
	}
	defer l.Close()

	report, err := l.VerifyChain(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if !report.Intact() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: chain broken at entry %d: %s)", path, report.BrokenAt, report.Reason)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d entries, chain intact)", path, report.Checked)}
}
