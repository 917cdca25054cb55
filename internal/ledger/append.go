package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"contourqa/internal/failure"
	"contourqa/internal/logging"
)

// timestampLayout is fixed width so stored timestamps sort lexically and the
// first ten characters are the UTC calendar day.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Append stores d and returns the assigned id. The entry becomes visible
// atomically; on any error nothing is stored.
func (l *Ledger) Append(ctx context.Context, d Draft) (LogID, error) {
	ctx = ensureContext(ctx)
	payload, err := prepareDraft(d)
	if err != nil {
		return 0, err
	}

	var entry Entry
	err = l.withWriteLock(ctx, func() error {
		return l.inTx(ctx, func(tx *sql.Tx) error {
			var txErr error
			entry, txErr = l.appendTx(ctx, tx, d, payload)
			return txErr
		})
	})
	if err != nil {
		return 0, classifyWriteError("append", err)
	}

	l.logger.Info("audit entry appended",
		logging.Int64(logging.FieldEntryID, int64(entry.ID)),
		logging.String("actor", entry.Actor),
		logging.String("action", string(entry.Action)),
		logging.Bool("payload", entry.HasPayload()),
		logging.Int64("related_entry_id", int64(entry.RelatedEntryID)),
		logging.String(logging.FieldEventType, "append"),
	)
	return entry.ID, nil
}

func prepareDraft(d Draft) ([]byte, error) {
	if strings.TrimSpace(d.Actor) == "" {
		return nil, fmt.Errorf("%w: actor is required", ErrInvalidDraft)
	}
	if strings.TrimSpace(string(d.Action)) == "" {
		return nil, fmt.Errorf("%w: action is required", ErrInvalidDraft)
	}
	if d.RelatedEntryID < 0 {
		return nil, fmt.Errorf("%w: related entry id %d", ErrInvalidDraft, d.RelatedEntryID)
	}
	if len(d.Elements) == 0 {
		return nil, nil
	}
	for _, el := range d.Elements {
		if err := el.Measurement.Validate(); err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", ErrInvalidDraft, el.ElementID, err)
		}
	}
	payload, err := json.Marshal(d.Elements)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %w", ErrInvalidDraft, err)
	}
	return payload, nil
}

// appendTx writes one entry inside tx. Callers hold the write lock, so the
// next id and previous hash cannot change underneath it.
func (l *Ledger) appendTx(ctx context.Context, tx *sql.Tx, d Draft, payload []byte) (Entry, error) {
	if d.RelatedEntryID != 0 {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM audit_entries WHERE id = ?", int64(d.RelatedEntryID)).Scan(&exists)
		if err != nil {
			return Entry{}, fmt.Errorf("check related entry: %w", err)
		}
		if exists == 0 {
			return Entry{}, fmt.Errorf("%w: id %d", ErrRelatedNotFound, d.RelatedEntryID)
		}
	}

	var (
		lastID   int64
		prevHash string
	)
	err := tx.QueryRowContext(ctx, "SELECT id, record_hash FROM audit_entries ORDER BY id DESC LIMIT 1").Scan(&lastID, &prevHash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("read chain head: %w", err)
	}

	entry := Entry{
		ID:             LogID(lastID + 1),
		Timestamp:      l.now().UTC(),
		Actor:          strings.TrimSpace(d.Actor),
		Action:         d.Action,
		DetailsText:    d.DetailsText,
		ScanPayload:    payload,
		RelatedEntryID: d.RelatedEntryID,
		PrevHash:       prevHash,
	}
	entry.RecordHash = recordHash(entry)

	_, err = tx.ExecContext(ctx, `INSERT INTO audit_entries
		(id, timestamp, actor, action, details_text, scan_payload, related_entry_id, prev_hash, record_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(entry.ID),
		entry.Timestamp.Format(timestampLayout),
		entry.Actor,
		string(entry.Action),
		entry.DetailsText,
		nullablePayload(entry.ScanPayload),
		nullableID(entry.RelatedEntryID),
		entry.PrevHash,
		entry.RecordHash,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert audit entry: %w", err)
	}
	return entry, nil
}

// classifyWriteError keeps caller-recoverable failures as they are and marks
// everything else as a persistence failure.
func classifyWriteError(operation string, err error) error {
	if errors.Is(err, failure.ErrNotFound) || errors.Is(err, failure.ErrValidation) || errors.Is(err, failure.ErrPersistence) {
		return err
	}
	return persistenceError(operation, err)
}

func nullablePayload(payload []byte) sql.NullString {
	if len(payload) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(payload), Valid: true}
}

func nullableID(id LogID) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(id), Valid: true}
}
