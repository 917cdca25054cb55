package config

import (
	"errors"
	"fmt"
	"math"
	"regexp"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTolerance(); err != nil {
		return err
	}
	if err := c.validateLedger(); err != nil {
		return err
	}
	if err := c.validateVision(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTolerance() error {
	for key, value := range map[string]float64{
		"tolerance.points":     c.Tolerance.Points,
		"tolerance.vcuts":      c.Tolerance.VCuts,
		"tolerance.additional": c.Tolerance.Additional,
	} {
		if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 || value > maxToleranceMM {
			return fmt.Errorf("%s must be between 0 and %g", key, maxToleranceMM)
		}
	}
	for key, value := range map[string]string{
		"tolerance.points_color":     c.Tolerance.PointsColor,
		"tolerance.vcuts_color":      c.Tolerance.VCutsColor,
		"tolerance.additional_color": c.Tolerance.AdditionalColor,
	} {
		if value != "" && !colorPattern.MatchString(value) {
			return fmt.Errorf("%s must be a #rrggbb colour, got %q", key, value)
		}
	}
	return nil
}

func (c *Config) validateLedger() error {
	if c.Ledger.ListLimit < 0 {
		return errors.New("ledger.list_limit must not be negative")
	}
	if c.Ledger.BusyTimeoutMS < 0 {
		return errors.New("ledger.busy_timeout_ms must not be negative")
	}
	return nil
}

func (c *Config) validateVision() error {
	if c.Vision.ElementThickness <= 0 {
		return errors.New("vision.element_thickness must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
