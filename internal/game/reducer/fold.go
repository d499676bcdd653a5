// Package reducer folds ordered commits into the Player/Game projection.
//
// Every event is validated against current state before it mutates
// anything. Game-rule violations are recovered locally: the offending
// event is rejected, an error message is recorded, and folding continues
// with the next event. Only infrastructural failures propagate as errors.
package reducer

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/louisbranch/continental/internal/game/commit"
	"github.com/louisbranch/continental/internal/game/event"
	"github.com/louisbranch/continental/internal/game/message"
	"github.com/louisbranch/continental/internal/game/state"
	apperrors "github.com/louisbranch/continental/internal/platform/errors"
)

// DefaultMaxDepth bounds secondary-commit recursion. No cycle detection
// exists beyond this cap; exceeding it is reported as a suspected cycle.
const DefaultMaxDepth = 5

// Config tunes fold behavior.
type Config struct {
	// MaxDepth caps secondary-commit recursion. Zero means DefaultMaxDepth.
	MaxDepth int
}

// Result carries the outcome of one fold.
type Result struct {
	// State is the projection after folding. It is the same value passed
	// to Fold, returned for convenience.
	State *state.State
	// Messages are the user-facing messages recorded during the fold.
	Messages []message.Message
	// Secondary lists the commits synthesized during the fold. They have
	// already been folded and are never persisted.
	Secondary []commit.Commit
}

// Fold applies commits in order to the projection, mutating it in place.
// Callers that need an isolated copy clone the state first.
func Fold(cfg Config, commits []commit.Commit, st *state.State) Result {
	if st == nil {
		st = state.NewState()
	}
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	f := &folder{state: st, maxDepth: maxDepth}
	for _, c := range commits {
		// Replay randomness is seeded from the commit's creation token so
		// folding the same log always yields the same projection.
		f.rng = rand.New(rand.NewSource(tokenSeed(c.Token)))
		f.applyCommit(c, 0)
	}

	return Result{State: st, Messages: f.messages, Secondary: f.secondary}
}

type folder struct {
	state     *state.State
	maxDepth  int
	rng       *rand.Rand
	messages  []message.Message
	secondary []commit.Commit
}

func (f *folder) applyCommit(c commit.Commit, depth int) {
	for i, evt := range c.Events {
		f.applyEvent(c, i, evt, depth)
	}
}

// applyEvent dispatches on the closed payload union. A payload outside the
// union means the log handed us something the codec should have rejected.
func (f *folder) applyEvent(c commit.Commit, index int, evt event.Event, depth int) {
	switch p := evt.Payload.(type) {
	case event.PlayerRegistered:
		f.applyPlayerRegistered(c, index, p)
	case event.PlayerLeft:
		f.applyPlayerLeft(c, p)
	case event.GameOpened:
		f.applyGameOpened(c, index, p)
	case event.GameJoined:
		f.applyGameJoined(c, p)
	case event.GameQuit:
		f.applyGameQuit(c, p)
	case event.GameStarted:
		f.applyGameStarted(c, depth, p)
	case event.SetupFinished:
		f.applySetupFinished(c, p)
	case event.MoveMade:
		f.applyMoveMade(c, depth, p)
	case event.TroopPlaced:
		f.applyTroopPlaced(c, depth, p)
	case event.TerritoryAttacked:
		f.applyTerritoryAttacked(c, depth, p)
	case event.TerritoryConquered:
		f.applyTerritoryConquered(c, p)
	case event.TurnEnded:
		f.applyTurnEnded(c, p)
	case event.PositionFortified:
		f.applyPositionFortified(c, p)
	case event.CardsRedeemed:
		f.applyCardsRedeemed(c, depth, p)
	case event.CardReturned:
		f.applyCardReturned(c, p)
	default:
		f.errorf(c, evt.Type, apperrors.CodeCorruptEntry, "unhandled event type %s", evt.Type)
	}
}

// expand folds a synthesized commit immediately. The depth cap is the only
// cycle guard: when exceeded, expansion stops for this commit while events
// already applied stand.
func (f *folder) expand(parent commit.Commit, depth int, payloads ...event.Payload) {
	if len(payloads) == 0 {
		return
	}
	if depth+1 > f.maxDepth {
		f.errorf(parent, payloads[0].EventType(), apperrors.CodeCycleSuspected,
			"secondary commit depth %d exceeded, suspected event cycle", f.maxDepth)
		return
	}

	events := make([]event.Event, 0, len(payloads))
	for _, p := range payloads {
		events = append(events, event.New(p))
	}
	secondary := commit.Commit{
		ID:        parent.ID,
		Version:   parent.Version,
		Session:   parent.Session,
		Token:     parent.Token,
		Events:    events,
		Timestamp: parent.Timestamp,
	}
	f.secondary = append(f.secondary, secondary)
	f.applyCommit(secondary, depth+1)
}

func (f *folder) message(c commit.Commit, name event.Type, format string, args ...any) {
	f.messages = append(f.messages, message.Message{
		CommitID:  c.ID,
		Kind:      message.KindMessage,
		EventName: name,
		Text:      fmt.Sprintf(format, args...),
		Timestamp: c.Timestamp,
	})
}

func (f *folder) errorf(c commit.Commit, name event.Type, code apperrors.Code, format string, args ...any) {
	f.messages = append(f.messages, message.Message{
		CommitID:  c.ID,
		Kind:      message.KindError,
		EventName: name,
		Code:      code,
		Text:      fmt.Sprintf(format, args...),
		Timestamp: c.Timestamp,
	})
}

// entityToken derives a stable token for an entity created by an event.
// The log-assigned commit id is unique per commit; the event index keeps
// multi-event commits collision-free.
func entityToken(c commit.Commit, index int) string {
	if index == 0 {
		return c.ID
	}
	return fmt.Sprintf("%s.%d", c.ID, index)
}

func tokenSeed(token string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	return int64(h.Sum64())
}
