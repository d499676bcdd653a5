package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/continental/internal/game/commit"
	"github.com/louisbranch/continental/internal/game/commitlog"
	apperrors "github.com/louisbranch/continental/internal/platform/errors"
)

// Put appends a commit in one transaction: content-hash dedup, sequence
// allocation, busy marker, retention trim, and session rotation. The
// notification publishes only after the transaction commits.
func (s *Store) Put(ctx context.Context, channel string, c commit.Commit, playerToken string) (commit.Commit, error) {
	if err := ctx.Err(); err != nil {
		return commit.Commit{}, storeErr("put commit", err)
	}
	if s == nil || s.sqlDB == nil {
		return commit.Commit{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(channel) == "" {
		return commit.Commit{}, fmt.Errorf("channel is required")
	}
	if len(c.Events) == 0 {
		return commit.Commit{}, commit.ErrEmpty
	}

	ctx, span := s.tracer.Start(ctx, "commitlog.Put",
		trace.WithAttributes(attribute.String("channel", channel)))
	defer span.End()

	hash, err := contentHash(c)
	if err != nil {
		return commit.Commit{}, fmt.Errorf("hash commit: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return commit.Commit{}, storeErr("begin tx", err)
	}
	defer tx.Rollback()

	if stored, err := s.getByHash(ctx, tx, channel, hash); err == nil {
		return stored, apperrors.New(apperrors.CodeAlreadyExists, "commit already appended")
	} else if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		return commit.Commit{}, err
	}

	seq, err := nextSeq(ctx, tx, channel)
	if err != nil {
		return commit.Commit{}, err
	}

	now := toMillis(time.Now())
	c.Timestamp = now
	c.ID = fmt.Sprintf("%d-%d", now, seq)

	if playerToken != "" {
		session, err := rotateSession(ctx, tx, playerToken, c.ID, now)
		if err != nil {
			return commit.Commit{}, err
		}
		c.Session = session
	}

	payload, err := json.Marshal(c)
	if err != nil {
		return commit.Commit{}, fmt.Errorf("encode commit: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO commits (channel, seq, commit_id, content_hash, payload, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		channel, seq, c.ID, hash, string(payload), now,
	); err != nil {
		if isConstraintError(err) {
			return commit.Commit{}, apperrors.Wrap(apperrors.CodeAlreadyExists, "commit already appended", err)
		}
		return commit.Commit{}, storeErr("append commit", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO channel_busy (channel, expires_at) VALUES (?, ?)
		 ON CONFLICT (channel) DO UPDATE SET expires_at = excluded.expires_at`,
		channel, now+busyTTL.Milliseconds(),
	); err != nil {
		return commit.Commit{}, storeErr("mark channel busy", err)
	}

	if s.retention > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM commits WHERE channel = ? AND seq <= ?`,
			channel, seq-s.retention,
		); err != nil {
			return commit.Commit{}, storeErr("trim retention", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return commit.Commit{}, storeErr("commit tx", err)
	}

	s.notifier.Publish(channel, commitlog.Notification{ID: c.ID, Timestamp: now})
	return c, nil
}

// Get returns the commit stored under the log-assigned id.
func (s *Store) Get(ctx context.Context, channel, id string) (commit.Commit, error) {
	if err := ctx.Err(); err != nil {
		return commit.Commit{}, storeErr("get commit", err)
	}
	if s == nil || s.sqlDB == nil {
		return commit.Commit{}, fmt.Errorf("storage is not configured")
	}

	var payload string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT payload FROM commits WHERE channel = ? AND commit_id = ?`,
		channel, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return commit.Commit{}, apperrors.New(apperrors.CodeNotFound, "commit "+id+" not found")
	}
	if err != nil {
		return commit.Commit{}, storeErr("get commit", err)
	}
	return decodeStored(payload)
}

// GetRange returns commits with timestamps in [from, to] in log order.
// A negative to means no upper bound.
func (s *Store) GetRange(ctx context.Context, channel string, from, to int64) ([]commit.Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("get range", err)
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := `SELECT payload FROM commits WHERE channel = ? AND timestamp >= ?`
	args := []any{channel, from}
	if to >= 0 {
		query += ` AND timestamp <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY seq ASC`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("get range", err)
	}
	defer rows.Close()

	var commits []commit.Commit
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, storeErr("scan commit", err)
		}
		c, err := decodeStored(payload)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate commits", err)
	}
	return commits, nil
}

// LatestTimestamp returns the newest commit timestamp on the channel, or
// zero when the channel is empty.
func (s *Store) LatestTimestamp(ctx context.Context, channel string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, storeErr("latest timestamp", err)
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var latest sql.NullInt64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT MAX(timestamp) FROM commits WHERE channel = ?`, channel,
	).Scan(&latest)
	if err != nil {
		return 0, storeErr("latest timestamp", err)
	}
	if !latest.Valid {
		return 0, nil
	}
	return latest.Int64, nil
}

// Busy reports whether the channel's busy marker has not yet expired.
func (s *Store) Busy(ctx context.Context, channel string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, storeErr("check busy", err)
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}

	var expires int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT expires_at FROM channel_busy WHERE channel = ?`, channel,
	).Scan(&expires)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storeErr("check busy", err)
	}
	return expires > toMillis(time.Now()), nil
}

func (s *Store) getByHash(ctx context.Context, tx *sql.Tx, channel, hash string) (commit.Commit, error) {
	var payload string
	err := tx.QueryRowContext(ctx,
		`SELECT payload FROM commits WHERE channel = ? AND content_hash = ?`,
		channel, hash,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return commit.Commit{}, apperrors.New(apperrors.CodeNotFound, "no commit for hash")
	}
	if err != nil {
		return commit.Commit{}, storeErr("lookup hash", err)
	}
	return decodeStored(payload)
}

func nextSeq(ctx context.Context, tx *sql.Tx, channel string) (int64, error) {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO commit_seq (channel, next_seq) VALUES (?, 1)
		 ON CONFLICT (channel) DO UPDATE SET next_seq = next_seq + 1`,
		channel,
	); err != nil {
		return 0, storeErr("advance seq", err)
	}
	var seq int64
	if err := tx.QueryRowContext(ctx,
		`SELECT next_seq FROM commit_seq WHERE channel = ?`, channel,
	).Scan(&seq); err != nil {
		return 0, storeErr("read seq", err)
	}
	return seq, nil
}

// decodeStored parses a persisted wire payload. A row that no longer
// decodes is surfaced as CORRUPT_ENTRY rather than a generic error.
func decodeStored(payload string) (commit.Commit, error) {
	var c commit.Commit
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return commit.Commit{}, apperrors.Wrap(apperrors.CodeCorruptEntry, "decode stored commit", err)
	}
	return c, nil
}

// contentHash fingerprints the commit's serialized content: the creation
// token plus each event's type and payload. The log-assigned id and
// timestamp are excluded so a resubmitted commit hashes identically.
func contentHash(c commit.Commit) (string, error) {
	h := sha256.New()
	h.Write([]byte(c.Token))
	for _, evt := range c.Events {
		payload, err := json.Marshal(evt.Payload)
		if err != nil {
			return "", fmt.Errorf("encode %s payload: %w", evt.Type, err)
		}
		h.Write([]byte(evt.Type))
		h.Write(payload)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
