package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"contourqa/internal/failure"
	"contourqa/internal/inspection"
	"contourqa/internal/ledger"
	"contourqa/internal/session"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Browse, replay and verify the audit ledger",
	}
	auditCmd.AddCommand(newAuditListCommand(ctx))
	auditCmd.AddCommand(newAuditShowCommand(ctx))
	auditCmd.AddCommand(newAuditReplayCommand(ctx))
	auditCmd.AddCommand(newAuditVerifyCommand(ctx))
	auditCmd.AddCommand(newAuditCheckChainCommand(ctx))
	return auditCmd
}

func newAuditListCommand(ctx *commandContext) *cobra.Command {
	var (
		actor     string
		action    string
		date      string
		limit     int
		ascending bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit entries, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ledger.Filter{Actor: actor, ActionSubstring: action, Limit: limit}
			if strings.TrimSpace(date) != "" {
				day, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
				if err != nil {
					return failure.Wrap(failure.ErrValidation, "cli", "audit list", "date must be YYYY-MM-DD", err)
				}
				filter.Date = day
			}
			order := ledger.Descending
			if ascending {
				order = ledger.Ascending
			}
			return ctx.withService(cmd, func(c context.Context, svc *inspection.Service) error {
				entries, err := svc.ListAudit(c, filter, order)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No audit entries")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						e.ID.String(),
						e.Timestamp.Format(time.DateTime),
						e.Actor,
						string(e.Action),
						relatedLabel(e.RelatedEntryID),
						yesNo(e.HasPayload()),
					})
				}
				fmt.Fprintln(out, renderTable("",
					[]string{"ID", "Time (UTC)", "Actor", "Action", "Related", "Payload"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Case-insensitive actor substring")
	cmd.Flags().StringVar(&action, "action", "", "Case-insensitive action substring")
	cmd.Flags().StringVar(&date, "date", "", "UTC calendar day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries (default from config)")
	cmd.Flags().BoolVar(&ascending, "asc", false, "Oldest first within the selected window")
	return cmd
}

func newAuditShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one audit entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLogID(args[0])
			if err != nil {
				return err
			}
			return ctx.withService(cmd, func(c context.Context, svc *inspection.Service) error {
				entry, err := svc.AuditEntry(c, id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, entry)
				}
				printEntry(cmd, entry)
				return nil
			})
		},
	}
}

func newAuditReplayCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <id>",
		Short: "Reconstruct the metrics view of a recorded scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLogID(args[0])
			if err != nil {
				return err
			}
			return ctx.withService(cmd, func(c context.Context, svc *inspection.Service) error {
				view, err := svc.Replay(c, id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, view)
				}
				printReplay(cmd, view)
				return nil
			})
		},
	}
}

func newAuditVerifyCommand(ctx *commandContext) *cobra.Command {
	var disposition string
	var comment string
	var actor string

	cmd := &cobra.Command{
		Use:   "verify <id>",
		Short: "Record a verification decision against a replayed scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLogID(args[0])
			if err != nil {
				return err
			}
			kind, err := session.ParseDisposition(disposition)
			if err != nil {
				return err
			}
			return ctx.withService(cmd, func(c context.Context, svc *inspection.Service) error {
				newID, err := svc.Verify(c, id, kind, comment, resolveActor(actor))
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]ledger.LogID{"entryId": newID, "relatedEntryId": id})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded verification entry %d for entry %d (%s)\n", newID, id, kind.Label())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&disposition, "disposition", "d", string(session.Approve), "approve, reject or flag_for_review")
	cmd.Flags().StringVar(&comment, "comment", "", "Verification comment")
	cmd.Flags().StringVar(&actor, "actor", "", "Supervisor name (default: $USER)")
	return cmd
}

func newAuditCheckChainCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check-chain",
		Short: "Verify the tamper-evident hash chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(c context.Context, svc *inspection.Service) error {
				report, err := svc.VerifyChain(c)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					if err := writeJSON(cmd, report); err != nil {
						return err
					}
				} else {
					out := cmd.OutOrStdout()
					colorize := shouldColorize(out)
					if report.Intact() {
						fmt.Fprintln(out, paint(fmt.Sprintf("Chain intact (%d entries)", report.Checked), ansiGreen, colorize))
					} else {
						fmt.Fprintln(out, paint(fmt.Sprintf("Chain broken at entry %d: %s", report.BrokenAt, report.Reason), ansiRed, colorize))
					}
				}
				if !report.Intact() {
					return fmt.Errorf("audit chain broken at entry %d", report.BrokenAt)
				}
				return nil
			})
		},
	}
}

func printEntry(cmd *cobra.Command, e ledger.Entry) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintln(out, renderSectionHeader(fmt.Sprintf("Entry %d", e.ID), colorize))
	fmt.Fprintf(out, "Time:    %s\n", e.Timestamp.Format(time.RFC3339Nano))
	fmt.Fprintf(out, "Actor:   %s\n", e.Actor)
	fmt.Fprintf(out, "Action:  %s\n", e.Action)
	fmt.Fprintf(out, "Related: %s\n", relatedLabel(e.RelatedEntryID))
	fmt.Fprintf(out, "Payload: %s\n", yesNo(e.HasPayload()))
	fmt.Fprintf(out, "Hash:    %s\n", e.RecordHash)
	fmt.Fprintln(out, renderSectionHeader("Details", colorize))
	fmt.Fprintln(out, e.DetailsText)
}

func printReplay(cmd *cobra.Command, view inspection.ReplayView) {
	printEntry(cmd, view.Entry)
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(view.Elements))
	for _, el := range view.Elements {
		rows = append(rows, []string{
			strconv.Itoa(el.ElementID),
			session.ElementName(el.ShapeName, el.ElementID),
			formatPercent(el.RecordedAccuracy),
			formatPercent(el.CurrentAccuracy),
			formatMM(el.Summary.MaxDeviation),
			vcutSummary(el.VCutCounts),
		})
	}
	fmt.Fprintln(out, renderTable("Replay",
		[]string{"Element", "Shape", "Recorded", "Current", "Max dev", "V-cuts"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	if len(view.Verifications) == 0 {
		return
	}
	fmt.Fprintln(out, renderSectionHeader("Verifications", colorize))
	for _, v := range view.Verifications {
		fmt.Fprintf(out, "  #%d %s by %s at %s\n", v.ID, v.Action, v.Actor, v.Timestamp.Format(time.DateTime))
	}
}

func parseLogID(value string) (ledger.LogID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, failure.Wrap(failure.ErrValidation, "cli", "parse id", fmt.Sprintf("invalid entry id %q", value), nil)
	}
	return ledger.LogID(id), nil
}

func relatedLabel(id ledger.LogID) string {
	if id == 0 {
		return "-"
	}
	return id.String()
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
