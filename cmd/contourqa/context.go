package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"contourqa/internal/config"
	"contourqa/internal/inspection"
	"contourqa/internal/ledger"
	"contourqa/internal/logging"
	"contourqa/internal/tolerance"
	"contourqa/internal/vision"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withService opens the ledger, loads persisted tolerances and hands fn a
// ready service. The ledger is closed when fn returns.
func (c *commandContext) withService(cmd *cobra.Command, fn func(context.Context, *inspection.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	l, err := ledger.Open(cfg, ledger.WithLogger(logger))
	if err != nil {
		return err
	}
	defer l.Close()

	registry := tolerance.NewRegistry(toleranceDefaults(cfg), l.Parameters(), logger)
	if err := registry.Load(ctx); err != nil {
		return err
	}
	fixtureDir := cfg.Vision.FixtureDir
	newClient := func() vision.Client {
		var opts []vision.SimulatorOption
		if fixtureDir != "" {
			opts = append(opts, vision.WithFixtureDir(fixtureDir))
		}
		return vision.NewSimulator(logger, opts...)
	}
	return fn(ctx, inspection.NewService(l, registry, newClient, logger))
}

func toleranceDefaults(cfg *config.Config) map[tolerance.Category]tolerance.Setting {
	t := cfg.Tolerance
	return map[tolerance.Category]tolerance.Setting{
		tolerance.Points:     {Threshold: t.Points, Color: t.PointsColor},
		tolerance.VCuts:      {Threshold: t.VCuts, Color: t.VCutsColor},
		tolerance.Additional: {Threshold: t.Additional, Color: t.AdditionalColor},
	}
}

// resolveActor prefers the flag, then the login name.
func resolveActor(flagValue string) string {
	if actor := strings.TrimSpace(flagValue); actor != "" {
		return actor
	}
	for _, key := range []string{"CONTOURQA_ACTOR", "USER", "USERNAME"} {
		if actor := strings.TrimSpace(os.Getenv(key)); actor != "" {
			return actor
		}
	}
	return "operator"
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
