// Package sqlite provides the SQLite-backed commit log implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/continental/internal/game/commitlog"
	apperrors "github.com/louisbranch/continental/internal/platform/errors"
	"github.com/louisbranch/continental/internal/platform/storage/sqlitemigrate"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/louisbranch/continental/internal/game/commitlog/sqlite/migrations"
)

// DefaultRetention is the number of commits kept per channel when the
// caller does not configure one.
const DefaultRetention = 10000

// busyTTL is how long the channel busy marker stays live after a put.
// It must stay comfortably under the report poll budget so readers can
// observe quiescence between commits.
const busyTTL = 200 * time.Millisecond

// Store persists the commit log, session bindings, and busy markers in
// SQLite. It implements commitlog.Log.
type Store struct {
	sqlDB     *sql.DB
	notifier  *commitlog.Notifier
	retention int64
	tracer    trace.Tracer
}

// Option configures an opened store.
type Option func(*Store)

// WithRetention overrides the per-channel retention window.
func WithRetention(entries int64) Option {
	return func(s *Store) {
		if entries > 0 {
			s.retention = entries
		}
	}
}

// Open opens a SQLite commit log at the provided path and applies the
// embedded migrations. Notifications publish on the given notifier.
func Open(path string, notifier *commitlog.Notifier, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store := &Store{
		sqlDB:     sqlDB,
		notifier:  notifier,
		retention: DefaultRetention,
		tracer:    otel.Tracer("continental.commitlog"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// Close closes the SQLite handle. Nil-safe so callers can defer it in
// all startup paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func isSQLiteBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}

// storeErr maps low-level failures to coded domain errors so callers can
// branch on the code rather than the driver.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.CodeTimeout, op+" timed out", err)
	case isSQLiteBusyError(err):
		return apperrors.Wrap(apperrors.CodeBusy, op+" found the log busy", err)
	default:
		return apperrors.Wrap(apperrors.CodeWriteError, fmt.Sprintf("%s: %v", op, err), err)
	}
}
