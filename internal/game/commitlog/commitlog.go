// Package commitlog defines the durable, ordered log of commits per
// channel, together with the notification stream emitted after each
// successful append.
package commitlog

import (
	"context"

	"github.com/louisbranch/continental/internal/game/commit"
)

// Notification announces one appended commit on a channel.
type Notification struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
}

// Log is the append-only commit store. Appends are atomic: the entry,
// the busy marker, the retention trim, and the session rebind all land
// in one transaction, and the notification publishes only afterwards.
type Log interface {
	// Put appends a commit to the channel. The log assigns the id and
	// timestamp, rotates the session bound to playerToken when one is
	// given, and publishes a notification. A commit whose serialized
	// content is already stored fails with an ALREADY_EXISTS error and
	// does not notify.
	Put(ctx context.Context, channel string, c commit.Commit, playerToken string) (commit.Commit, error)

	// Get returns the commit stored under the log-assigned id.
	Get(ctx context.Context, channel, id string) (commit.Commit, error)

	// GetRange returns commits with timestamps in [from, to], ascending.
	// A negative to means no upper bound.
	GetRange(ctx context.Context, channel string, from, to int64) ([]commit.Commit, error)

	// LatestTimestamp returns the timestamp of the newest commit on the
	// channel, or zero when the channel is empty.
	LatestTimestamp(ctx context.Context, channel string) (int64, error)

	// Busy reports whether the channel's short-TTL busy marker is live.
	Busy(ctx context.Context, channel string) (bool, error)

	// SessionPlayer resolves a session id to its bound player token.
	SessionPlayer(ctx context.Context, sessionID string) (string, error)

	// PlayerSession resolves a player token to its live session id.
	PlayerSession(ctx context.Context, playerToken string) (string, error)

	Close() error
}
