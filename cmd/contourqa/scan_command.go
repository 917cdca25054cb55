package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"contourqa/internal/inspection"
	"contourqa/internal/ledger"
	"contourqa/internal/session"
	"contourqa/internal/vision"
)

type scanResult struct {
	SessionID   string                `json:"sessionId"`
	Marker      string                `json:"marker,omitempty"`
	Elements    []session.ElementView `json:"elements"`
	EntryID     ledger.LogID          `json:"entryId,omitempty"`
	Disposition string                `json:"disposition,omitempty"`
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		marker      string
		shapeID     string
		thickness   float64
		disposition string
		comment     string
		actor       string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Capture, detect and measure every element, then optionally record a disposition",
		Long: `Run one scan session end to end against the vision collaborator.

Every detected element is measured against --shape, or against its closest
template when --shape is empty. With --disposition the session is recorded in
the audit ledger; without it the metrics are printed and discarded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind session.DispositionKind
			if strings.TrimSpace(disposition) != "" {
				parsed, err := session.ParseDisposition(disposition)
				if err != nil {
					return err
				}
				kind = parsed
			}
			if !cmd.Flags().Changed("thickness") {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				thickness = cfg.Vision.ElementThickness
			}

			return ctx.withService(cmd, func(c context.Context, svc *inspection.Service) error {
				result, err := runScan(c, svc, marker, shapeID, thickness, kind, comment, resolveActor(actor))
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				printScanResult(cmd, result)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&marker, "marker", "", "Batch or order marker recorded with the scan")
	cmd.Flags().StringVar(&shapeID, "shape", "", "Reference shape id (default: closest match per element)")
	cmd.Flags().Float64Var(&thickness, "thickness", 0, "Element thickness in mm (default from config)")
	cmd.Flags().StringVarP(&disposition, "disposition", "d", "", "approve, reject or flag_for_review")
	cmd.Flags().StringVar(&comment, "comment", "", "Operator comment stored with the disposition")
	cmd.Flags().StringVar(&actor, "actor", "", "Operator name (default: $USER)")

	return cmd
}

func runScan(ctx context.Context, svc *inspection.Service, marker, shapeID string, thickness float64, kind session.DispositionKind, comment, actor string) (scanResult, error) {
	sess := svc.StartSession(marker)
	id := sess.ID()
	defer svc.EndSession(context.WithoutCancel(ctx), id)

	if err := svc.CapturePhotos(ctx, id); err != nil {
		return scanResult{}, err
	}
	detected, err := svc.Detect(ctx, id)
	if err != nil {
		return scanResult{}, err
	}
	for _, view := range detected {
		shape := strings.TrimSpace(shapeID)
		if shape == "" {
			best, ok := vision.DetectedElement{ShapeComparisons: view.ShapeComparisons}.BestMatch()
			if ok {
				shape = best.Shape.ID
			}
		}
		if _, err := svc.Measure(ctx, id, view.ID, shape, thickness); err != nil {
			return scanResult{}, fmt.Errorf("element %d: %w", view.ID, err)
		}
	}

	result := scanResult{SessionID: id, Marker: marker, Elements: sess.Elements()}
	if kind == "" {
		return result, nil
	}
	entryID, err := svc.Dispose(ctx, id, kind, comment, actor)
	if err != nil {
		return scanResult{}, err
	}
	result.EntryID = entryID
	result.Disposition = kind.Label()
	return result, nil
}

func printScanResult(cmd *cobra.Command, result scanResult) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(result.Elements))
	for _, el := range result.Elements {
		rows = append(rows, []string{
			strconv.Itoa(el.ID),
			session.ElementName(el.ShapeName, el.ID),
			formatMM(el.Thickness),
			formatPercent(el.Accuracy),
			formatPercent(el.FullAccuracy),
			vcutSummary(el.VCutCounts),
		})
	}
	title := "Scan " + result.SessionID
	if result.Marker != "" {
		title = fmt.Sprintf("Scan %s (%s)", result.SessionID, result.Marker)
	}
	fmt.Fprintln(out, renderTable(title,
		[]string{"Element", "Shape", "Thickness", "Accuracy", "All contours", "V-cuts"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	if result.EntryID != 0 {
		fmt.Fprintln(out, paint(fmt.Sprintf("Recorded entry %d: %s", result.EntryID, result.Disposition), ansiGreen, colorize))
		return
	}
	fmt.Fprintln(out, "No disposition recorded")
}
