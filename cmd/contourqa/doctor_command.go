package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"contourqa/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, vision fixtures and ledger integrity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderSectionHeader("Readiness", colorize))
				for _, r := range results {
					fmt.Fprintln(out, renderStatusLine(r.Name, r.Passed, r.Detail, colorize))
				}
			}
			if preflight.Failed(results) {
				return errors.New("one or more readiness checks failed")
			}
			return nil
		},
	}
}
