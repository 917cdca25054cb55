package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"contourqa/internal/failure"
	"contourqa/internal/inspection"
	"contourqa/internal/tolerance"
)

type toleranceRow struct {
	Category  tolerance.Category `json:"category"`
	Threshold float64            `json:"threshold"`
	Color     string             `json:"color"`
}

func newToleranceCommand(ctx *commandContext) *cobra.Command {
	toleranceCmd := &cobra.Command{
		Use:   "tolerance",
		Short: "Inspect or change tolerance thresholds",
	}
	toleranceCmd.AddCommand(newToleranceShowCommand(ctx))
	toleranceCmd.AddCommand(newToleranceSetCommand(ctx))
	return toleranceCmd
}

func newToleranceShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active tolerance profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(_ context.Context, svc *inspection.Service) error {
				profile := svc.Tolerances()
				rows := make([]toleranceRow, 0, len(tolerance.Categories()))
				for _, c := range tolerance.Categories() {
					s := profile.Get(c)
					rows = append(rows, toleranceRow{Category: c, Threshold: s.Threshold, Color: s.Color})
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, rows)
				}
				table := make([][]string, 0, len(rows))
				for _, r := range rows {
					table = append(table, []string{string(r.Category), formatMM(r.Threshold), r.Color})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable("",
					[]string{"Category", "Threshold", "Color"},
					table,
					[]columnAlignment{alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func newToleranceSetCommand(ctx *commandContext) *cobra.Command {
	var color string
	var actor string

	cmd := &cobra.Command{
		Use:   "set <category> <threshold-mm>",
		Short: "Replace one tolerance category and record the change",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, ok := tolerance.ParseCategory(args[0])
			if !ok {
				return failure.Wrap(failure.ErrValidation, "cli", "tolerance set",
					fmt.Sprintf("unknown category %q (expected one of %s)", args[0], categoryList()), nil)
			}
			threshold, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
			if err != nil {
				return failure.Wrap(failure.ErrValidation, "cli", "tolerance set", "threshold must be a number", err)
			}
			return ctx.withService(cmd, func(c context.Context, svc *inspection.Service) error {
				setting := svc.Tolerances().Get(category)
				setting.Threshold = threshold
				if strings.TrimSpace(color) != "" {
					setting.Color = strings.TrimSpace(color)
				}
				if err := svc.SaveTolerance(c, resolveActor(actor), category, setting); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, toleranceRow{Category: category, Threshold: setting.Threshold, Color: setting.Color})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tolerance %s set to %s\n", category, formatMM(setting.Threshold))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "Display colour as #rrggbb (default: keep current)")
	cmd.Flags().StringVar(&actor, "actor", "", "Operator name (default: $USER)")
	return cmd
}

func categoryList() string {
	names := make([]string, 0, 3)
	for _, c := range tolerance.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
