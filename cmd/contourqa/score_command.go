package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"contourqa/internal/conformance"
	"contourqa/internal/geometry"
	"contourqa/internal/ingest"
	"contourqa/internal/inspection"
	"contourqa/internal/tolerance"
	"contourqa/internal/vcut"
)

type contourScore struct {
	Name      string              `json:"name"`
	Tolerance float64             `json:"tolerance"`
	Summary   conformance.Summary `json:"summary"`
}

type scoreResult struct {
	Kind         ingest.Kind    `json:"kind"`
	Contours     []contourScore `json:"contours"`
	FullAccuracy float64        `json:"fullAccuracy"`
	VCutStatuses []vcut.Status  `json:"vcutStatuses"`
	VCutCounts   vcut.Counts    `json:"vcutCounts"`
}

func newScoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "score <file|->",
		Short: "Score a measurement, flat point list or shape document offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			m, kind, err := ingest.DecodeMeasurement(data)
			if err != nil {
				return err
			}
			return ctx.withService(cmd, func(_ context.Context, svc *inspection.Service) error {
				result := scoreMeasurement(m, kind, svc.Tolerances())
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				printScoreResult(cmd, result)
				return nil
			})
		},
	}
}

// scoreMeasurement scores the main contour and the pooled set at the points
// threshold and each additional contour at the additional threshold.
func scoreMeasurement(m geometry.ElementMeasurement, kind ingest.Kind, profile *tolerance.Profile) scoreResult {
	points := profile.Threshold(tolerance.Points)
	additional := profile.Threshold(tolerance.Additional)
	contours := []contourScore{{
		Name:      "main",
		Tolerance: points,
		Summary:   conformance.Summarize(m.MainContour, points),
	}}
	for i, c := range m.AdditionalContours {
		contours = append(contours, contourScore{
			Name:      "additional " + strconv.Itoa(i+1),
			Tolerance: additional,
			Summary:   conformance.Summarize(c, additional),
		})
	}
	statuses := vcut.Validate(m.VCuts, profile.Threshold(tolerance.VCuts))
	return scoreResult{
		Kind:         kind,
		Contours:     contours,
		FullAccuracy: conformance.ScoreAll(m, points),
		VCutStatuses: statuses,
		VCutCounts:   vcut.Tally(statuses),
	}
}

func printScoreResult(cmd *cobra.Command, result scoreResult) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(result.Contours))
	for _, c := range result.Contours {
		rows = append(rows, []string{
			c.Name,
			strconv.Itoa(c.Summary.Total),
			formatMM(c.Tolerance),
			formatPercent(c.Summary.Accuracy),
			formatMM(c.Summary.MaxDeviation),
			formatMM(c.Summary.MeanDeviation),
			passLabel(c.Summary.Pass(), colorize),
		})
	}
	fmt.Fprintln(out, renderTable("Payload: "+string(result.Kind),
		[]string{"Contour", "Points", "Tolerance", "Accuracy", "Max dev", "Mean dev", "Result"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "All contours: %s\n", formatPercent(result.FullAccuracy))
	if len(result.VCutStatuses) == 0 {
		return
	}
	fmt.Fprintln(out, renderSectionHeader("V-cuts", colorize))
	for i, s := range result.VCutStatuses {
		fmt.Fprintf(out, "  #%d %s\n", i+1, vcutStatusLabel(s, colorize))
	}
	fmt.Fprintf(out, "  %s\n", vcutSummary(result.VCutCounts))
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
