package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeVision(); err != nil {
		return err
	}
	c.normalizeTolerance()
	c.normalizeLedger()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("CONTOURQA_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeVision() error {
	c.Vision.FixtureDir = strings.TrimSpace(c.Vision.FixtureDir)
	if c.Vision.FixtureDir == "" {
		return nil
	}
	var err error
	if c.Vision.FixtureDir, err = expandPath(c.Vision.FixtureDir); err != nil {
		return fmt.Errorf("vision.fixture_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTolerance() {
	c.Tolerance.PointsColor = strings.ToLower(strings.TrimSpace(c.Tolerance.PointsColor))
	c.Tolerance.VCutsColor = strings.ToLower(strings.TrimSpace(c.Tolerance.VCutsColor))
	c.Tolerance.AdditionalColor = strings.ToLower(strings.TrimSpace(c.Tolerance.AdditionalColor))
}

func (c *Config) normalizeLedger() {
	if c.Ledger.ListLimit == 0 {
		c.Ledger.ListLimit = defaultLedgerListLimit
	}
	if c.Ledger.BusyTimeoutMS == 0 {
		c.Ledger.BusyTimeoutMS = defaultBusyTimeoutMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
