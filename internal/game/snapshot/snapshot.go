// Package snapshot defines persistence for folded projections, letting a
// subscription prime from the last snapshot instead of replaying the
// whole log.
package snapshot

import (
	"context"

	"github.com/louisbranch/continental/internal/game/state"
)

// Store persists and restores projection snapshots keyed by channel.
type Store interface {
	// Take stores the projection for the channel, replacing any previous
	// snapshot, and returns how many entities it captured.
	Take(ctx context.Context, channel string, st *state.State, asOf int64) (int, error)

	// Read restores the latest snapshot for the channel. A channel with
	// no snapshot fails with a NOT_FOUND error.
	Read(ctx context.Context, channel string) (*state.State, int64, error)
}
