package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"contourqa/internal/config"
	"contourqa/internal/logging"
)

// Ledger is the SQLite-backed audit store. All methods are safe for
// concurrent use.
type Ledger struct {
	db        *sql.DB
	path      string
	fileLock  *flock.Flock
	writeMu   sync.Mutex
	now       func() time.Time
	listLimit int
	logger    *slog.Logger
}

// Option customizes a Ledger.
type Option func(*Ledger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger used for append and verification events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logging.NewComponentLogger(logger, "ledger")
	}
}

const (
	defaultListLimit        = 100
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	lockRetryDelay          = 20 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the ledger database at cfg.LedgerPath.
func Open(cfg *config.Config, opts ...Option) (*Ledger, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.LedgerPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	busyTimeout := cfg.Ledger.BusyTimeoutMS
	if busyTimeout <= 0 {
		busyTimeout = 5000
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout),
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	l := &Ledger{
		db:        db,
		path:      dbPath,
		fileLock:  flock.New(cfg.LockPath()),
		now:       time.Now,
		listLimit: cfg.Ledger.ListLimit,
		logger:    logging.NewComponentLogger(nil, "ledger"),
	}
	if l.listLimit <= 0 {
		l.listLimit = defaultListLimit
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// Path returns the database file location.
func (l *Ledger) Path() string {
	return l.path
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// withWriteLock serializes writers within the process and across processes
// sharing the same data directory.
func (l *Ledger) withWriteLock(ctx context.Context, fn func() error) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	locked, err := l.fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire ledger lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire ledger lock: %s is held by another process", l.fileLock.Path())
	}
	defer func() { _ = l.fileLock.Unlock() }()
	return fn()
}

// inTx runs fn in a transaction, retrying the whole transaction while SQLite
// reports the database busy.
func (l *Ledger) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := l.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}
