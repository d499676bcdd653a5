package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/continental/internal/game/state"
	apperrors "github.com/louisbranch/continental/internal/platform/errors"
)

// Take stores the channel's projection, replacing any previous snapshot.
// asOf records the timestamp of the last folded commit.
func (s *Store) Take(ctx context.Context, channel string, st *state.State, asOf int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, storeErr("take snapshot", err)
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if st == nil {
		return 0, fmt.Errorf("state is required")
	}

	players, err := json.Marshal(st.Players)
	if err != nil {
		return 0, fmt.Errorf("encode players: %w", err)
	}
	games, err := json.Marshal(st.Games)
	if err != nil {
		return 0, fmt.Errorf("encode games: %w", err)
	}

	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO snapshots (channel, players, games, as_of, taken_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (channel) DO UPDATE SET
		   players = excluded.players,
		   games = excluded.games,
		   as_of = excluded.as_of,
		   taken_at = excluded.taken_at`,
		channel, string(players), string(games), asOf, toMillis(time.Now()),
	); err != nil {
		return 0, storeErr("take snapshot", err)
	}
	return len(st.Players) + len(st.Games), nil
}

// Read restores the channel's latest snapshot and the timestamp of the
// last commit it covers.
func (s *Store) Read(ctx context.Context, channel string) (*state.State, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, storeErr("read snapshot", err)
	}
	if s == nil || s.sqlDB == nil {
		return nil, 0, fmt.Errorf("storage is not configured")
	}

	var players, games string
	var asOf int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT players, games, as_of FROM snapshots WHERE channel = ?`,
		channel,
	).Scan(&players, &games, &asOf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, apperrors.New(apperrors.CodeNotFound, "no snapshot for channel "+channel)
	}
	if err != nil {
		return nil, 0, storeErr("read snapshot", err)
	}

	st := state.NewState()
	if err := json.Unmarshal([]byte(players), &st.Players); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CodeCorruptEntry, "decode snapshot players", err)
	}
	if err := json.Unmarshal([]byte(games), &st.Games); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CodeCorruptEntry, "decode snapshot games", err)
	}
	return st, asOf, nil
}
