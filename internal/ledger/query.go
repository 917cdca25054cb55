package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"contourqa/internal/logging"
)

const entryColumns = "id, timestamp, actor, action, details_text, scan_payload, related_entry_id, prev_hash, record_hash"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		id        int64
		rawTime   string
		actor     string
		action    string
		details   sql.NullString
		payload   sql.NullString
		relatedID sql.NullInt64
		prevHash  string
		hash      string
	)
	if err := scanner.Scan(&id, &rawTime, &actor, &action, &details, &payload, &relatedID, &prevHash, &hash); err != nil {
		return Entry{}, err
	}
	ts, err := time.Parse(timestampLayout, rawTime)
	if err != nil {
		return Entry{}, fmt.Errorf("parse timestamp of entry %d: %w", id, err)
	}
	entry := Entry{
		ID:             LogID(id),
		Timestamp:      ts.UTC(),
		Actor:          actor,
		Action:         Action(action),
		DetailsText:    details.String,
		RelatedEntryID: LogID(relatedID.Int64),
		PrevHash:       prevHash,
		RecordHash:     hash,
	}
	if payload.Valid && payload.String != "" {
		entry.ScanPayload = json.RawMessage(payload.String)
	}
	return entry, nil
}

// Get returns the entry with the given id.
func (l *Ledger) Get(ctx context.Context, id LogID) (Entry, error) {
	ctx = ensureContext(ctx)
	row := l.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM audit_entries WHERE id = ?", int64(id))
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: id %d", ErrEntryNotFound, id)
	}
	if err != nil {
		return Entry{}, persistenceError("get", err)
	}
	return entry, nil
}

// List returns entries matching f, newest first unless order is Ascending.
// At most f.Limit entries are returned (the configured list limit when zero);
// the cap always keeps the most recent matches.
func (l *Ledger) List(ctx context.Context, f Filter, order Order) ([]Entry, error) {
	ctx = ensureContext(ctx)
	limit := f.Limit
	if limit <= 0 {
		limit = l.listLimit
	}

	query := "SELECT " + entryColumns + " FROM audit_entries"
	var args []any
	if !f.Date.IsZero() {
		query += " WHERE substr(timestamp, 1, 10) = ?"
		args = append(args, f.Date.UTC().Format(time.DateOnly))
	}
	query += " ORDER BY id DESC"

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistenceError("list", err)
	}
	defer rows.Close()

	fold := cases.Fold()
	actor := fold.String(strings.TrimSpace(f.Actor))
	action := fold.String(strings.TrimSpace(f.ActionSubstring))

	entries := make([]Entry, 0, min(limit, 64))
	for len(entries) < limit && rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, persistenceError("list", err)
		}
		if actor != "" && !strings.Contains(fold.String(entry.Actor), actor) {
			continue
		}
		if action != "" && !strings.Contains(fold.String(string(entry.Action)), action) {
			continue
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list", err)
	}

	if order == Ascending {
		slices.Reverse(entries)
	}
	return entries, nil
}

// Children returns the entries whose RelatedEntryID is id, oldest first.
func (l *Ledger) Children(ctx context.Context, id LogID) ([]Entry, error) {
	ctx = ensureContext(ctx)
	rows, err := l.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM audit_entries WHERE related_entry_id = ? ORDER BY id ASC", int64(id))
	if err != nil {
		return nil, persistenceError("children", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, persistenceError("children", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("children", err)
	}
	return entries, nil
}

// Replay decodes the scan snapshot stored with entry id. The stored row is
// only read.
func (l *Ledger) Replay(ctx context.Context, id LogID) (Snapshot, error) {
	entry, err := l.Get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if !entry.HasPayload() {
		return Snapshot{}, fmt.Errorf("%w: id %d", ErrNoPayload, id)
	}
	var elements []SnapshotElement
	if err := json.Unmarshal(entry.ScanPayload, &elements); err != nil {
		return Snapshot{}, persistenceError("replay", fmt.Errorf("decode payload of entry %d: %w", id, err))
	}
	l.logger.Debug("audit entry replayed",
		logging.Int64(logging.FieldEntryID, int64(id)),
		logging.Int("elements", len(elements)),
	)
	return Snapshot{EntryID: id, Elements: elements}, nil
}
