package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"contourqa/internal/logging"
)

// recordHash digests the entry fields together with the previous hash. Each
// field is length-prefixed so adjacent values cannot be re-split.
func recordHash(e Entry) string {
	h := sha256.New()
	fields := []string{
		strconv.FormatInt(int64(e.ID), 10),
		e.Timestamp.UTC().Format(timestampLayout),
		e.Actor,
		string(e.Action),
		e.DetailsText,
		string(e.ScanPayload),
		strconv.FormatInt(int64(e.RelatedEntryID), 10),
		e.PrevHash,
	}
	for _, f := range fields {
		fmt.Fprintf(h, "%d:%s;", len(f), f)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyChain walks every entry in id order and reports the first entry whose
// stored hash or back-link does not match.
func (l *Ledger) VerifyChain(ctx context.Context) (ChainReport, error) {
	ctx = ensureContext(ctx)
	rows, err := l.db.QueryContext(ctx, "SELECT "+entryColumns+" FROM audit_entries ORDER BY id ASC")
	if err != nil {
		return ChainReport{}, persistenceError("verify chain", err)
	}
	defer rows.Close()

	var (
		report ChainReport
		prev   string
	)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return ChainReport{}, persistenceError("verify chain", err)
		}
		report.Checked++
		switch {
		case entry.PrevHash != prev:
			report.BrokenAt = entry.ID
			report.Reason = "previous hash does not match the preceding entry"
		case recordHash(entry) != entry.RecordHash:
			report.BrokenAt = entry.ID
			report.Reason = "record hash does not match entry contents"
		}
		if report.BrokenAt != 0 {
			break
		}
		prev = entry.RecordHash
	}
	if err := rows.Err(); err != nil {
		return ChainReport{}, persistenceError("verify chain", err)
	}

	if report.Intact() {
		l.logger.Debug("audit chain verified", logging.Int("entries", report.Checked))
	} else {
		logging.WarnWithContext(l.logger, "audit chain broken", "chain_broken",
			logging.Int64(logging.FieldEntryID, int64(report.BrokenAt)),
			logging.String("reason", report.Reason),
		)
	}
	return report, nil
}
