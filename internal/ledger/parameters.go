package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"contourqa/internal/logging"
	"contourqa/internal/tolerance"
)

const (
	tolerancePrefix = "tolerance_"
	colorPrefix     = "color_"
)

// Parameters is the named parameter table sharing the ledger database. It
// implements tolerance.Store: every save also appends a parameter change
// entry in the same transaction.
type Parameters struct {
	ledger *Ledger
}

// Parameters returns the parameter store backed by l.
func (l *Ledger) Parameters() *Parameters {
	return &Parameters{ledger: l}
}

// Get returns the raw value of a named parameter.
func (p *Parameters) Get(ctx context.Context, name string) (string, bool, error) {
	ctx = ensureContext(ctx)
	var value string
	err := p.ledger.db.QueryRowContext(ctx, "SELECT value FROM parameters WHERE name = ?", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, persistenceError("read parameter", err)
	}
	return value, true, nil
}

// LoadTolerances returns every category with a persisted threshold.
func (p *Parameters) LoadTolerances(ctx context.Context) (map[tolerance.Category]tolerance.Setting, error) {
	ctx = ensureContext(ctx)
	rows, err := p.ledger.db.QueryContext(ctx,
		"SELECT name, value FROM parameters WHERE name LIKE 'tolerance\\_%' ESCAPE '\\' OR name LIKE 'color\\_%' ESCAPE '\\'")
	if err != nil {
		return nil, persistenceError("load tolerances", err)
	}
	defer rows.Close()

	thresholds := make(map[tolerance.Category]float64)
	colors := make(map[tolerance.Category]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, persistenceError("load tolerances", err)
		}
		switch {
		case strings.HasPrefix(name, tolerancePrefix):
			category, ok := tolerance.ParseCategory(strings.TrimPrefix(name, tolerancePrefix))
			if !ok {
				continue
			}
			threshold, err := strconv.ParseFloat(value, 64)
			if err != nil {
				logging.WarnWithContext(p.ledger.logger, "ignoring malformed tolerance parameter", "parameter_invalid",
					logging.String("parameter", name),
					logging.Error(err),
				)
				continue
			}
			thresholds[category] = threshold
		case strings.HasPrefix(name, colorPrefix):
			if category, ok := tolerance.ParseCategory(strings.TrimPrefix(name, colorPrefix)); ok {
				colors[category] = value
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("load tolerances", err)
	}

	out := make(map[tolerance.Category]tolerance.Setting, len(thresholds))
	for category, threshold := range thresholds {
		out[category] = tolerance.Setting{Threshold: threshold, Color: colors[category]}
	}
	return out, nil
}

// SaveTolerance replaces the threshold and colour of category and records the
// change, all in one transaction.
func (p *Parameters) SaveTolerance(ctx context.Context, actor string, category tolerance.Category, previous, next tolerance.Setting) error {
	ctx = ensureContext(ctx)
	thresholdName := tolerancePrefix + string(category)
	colorName := colorPrefix + string(category)
	oldThreshold := formatThreshold(previous.Threshold)
	newThreshold := formatThreshold(next.Threshold)

	draft := Draft{
		Actor:  actor,
		Action: ActionParameterChange,
		DetailsText: strings.Join([]string{
			fmt.Sprintf("Parameter: %s, Old value: %s, New value: %s", thresholdName, oldThreshold, newThreshold),
			fmt.Sprintf("Parameter: %s, Old value: %s, New value: %s", colorName, orDash(previous.Color), orDash(next.Color)),
		}, "\n"),
	}
	if _, err := prepareDraft(draft); err != nil {
		return err
	}

	l := p.ledger
	err := l.withWriteLock(ctx, func() error {
		return l.inTx(ctx, func(tx *sql.Tx) error {
			updatedAt := l.now().UTC().Format(timestampLayout)
			for _, kv := range [][2]string{{thresholdName, newThreshold}, {colorName, next.Color}} {
				if _, err := tx.ExecContext(ctx, `INSERT INTO parameters (name, value, updated_at) VALUES (?, ?, ?)
					ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
					kv[0], kv[1], updatedAt); err != nil {
					return fmt.Errorf("upsert parameter %s: %w", kv[0], err)
				}
			}
			_, err := l.appendTx(ctx, tx, draft, nil)
			return err
		})
	})
	if err != nil {
		return classifyWriteError("save tolerance", err)
	}
	l.logger.Info("tolerance parameters saved",
		logging.String("category", string(category)),
		logging.String("actor", actor),
		logging.String(logging.FieldEventType, "parameter_change"),
	)
	return nil
}

func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
