package testsupport

import (
	"path/filepath"
	"testing"

	"contourqa/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTolerances overrides the default thresholds of every category.
func WithTolerances(points, vcuts, additional float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tolerance.Points = points
		b.cfg.Tolerance.VCuts = vcuts
		b.cfg.Tolerance.Additional = additional
	}
}

// WithListLimit sets the ledger list cap.
func WithListLimit(limit int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.ListLimit = limit
	}
}

// WithFixtureDir points the vision simulator at a directory under the test
// base dir and returns it through dir.
func WithFixtureDir(dir *string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Vision.FixtureDir = filepath.Join(b.baseDir, "fixtures")
		if dir != nil {
			*dir = b.cfg.Vision.FixtureDir
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
