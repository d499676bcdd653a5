package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/louisbranch/continental/internal/platform/errors"
)

// rotateSession rebinds the player's session inside the put transaction.
// An existing binding is replaced with a freshly generated session id; a
// player with no binding is anchored to the log-assigned commit id, so
// exactly one live session exists per player token.
func rotateSession(ctx context.Context, tx *sql.Tx, playerToken, commitID string, now int64) (string, error) {
	var current string
	err := tx.QueryRowContext(ctx,
		`SELECT session_id FROM session_bindings WHERE player_token = ?`,
		playerToken,
	).Scan(&current)

	session := commitID
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// First commit for this player: the commit id is the anchor.
	case err != nil:
		return "", storeErr("lookup session", err)
	default:
		session = uuid.NewString()
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM session_bindings WHERE player_token = ?`, playerToken,
		); err != nil {
			return "", storeErr("remove session", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO session_bindings (session_id, player_token, anchor_commit_id, updated_at)
		 VALUES (?, ?, ?, ?)`,
		session, playerToken, commitID, now,
	); err != nil {
		return "", storeErr("bind session", err)
	}
	return session, nil
}

// SessionPlayer resolves a session id to its bound player token.
func (s *Store) SessionPlayer(ctx context.Context, sessionID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", storeErr("session player", err)
	}
	if s == nil || s.sqlDB == nil {
		return "", fmt.Errorf("storage is not configured")
	}

	var token string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT player_token FROM session_bindings WHERE session_id = ?`,
		sessionID,
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.New(apperrors.CodeNotFound, "session "+sessionID+" not bound")
	}
	if err != nil {
		return "", storeErr("session player", err)
	}
	return token, nil
}

// PlayerSession resolves a player token to its live session id.
func (s *Store) PlayerSession(ctx context.Context, playerToken string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", storeErr("player session", err)
	}
	if s == nil || s.sqlDB == nil {
		return "", fmt.Errorf("storage is not configured")
	}

	var session string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT session_id FROM session_bindings WHERE player_token = ?`,
		playerToken,
	).Scan(&session)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.New(apperrors.CodeNotFound, "player "+playerToken+" has no session")
	}
	if err != nil {
		return "", storeErr("player session", err)
	}
	return session, nil
}
