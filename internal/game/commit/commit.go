// Package commit defines the immutable, ordered batch of events appended
// to the log, together with its JSON wire format.
package commit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/louisbranch/continental/internal/game/event"
	apperrors "github.com/louisbranch/continental/internal/platform/errors"
	"github.com/louisbranch/continental/internal/platform/id"
)

// Version is the current commit wire format version.
const Version = 1

// ErrEmpty indicates an attempt to build a commit with zero events.
var ErrEmpty = apperrors.New(apperrors.CodeCommitEmpty, "commit requires at least one event")

// Commit is an immutable batch of one or more events.
//
// ID starts as a random, time-salted creation token and is overwritten by
// the log with the log-assigned position token on append. Token retains
// the creation token so replays can reproduce in-fold randomness.
type Commit struct {
	ID        string
	Version   int
	Session   string
	Token     string
	Events    []event.Event
	Timestamp int64
}

// New builds a commit around the provided events. A commit with zero
// events fails with ErrEmpty.
func New(events ...event.Event) (Commit, error) {
	if len(events) == 0 {
		return Commit{}, ErrEmpty
	}
	token, err := id.NewCommitToken(time.Now())
	if err != nil {
		return Commit{}, fmt.Errorf("new commit token: %w", err)
	}
	return Commit{
		ID:      token,
		Version: Version,
		Token:   token,
		Events:  append([]event.Event(nil), events...),
	}, nil
}

type wireEvent struct {
	Type    event.Type      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wireCommit struct {
	ID        string      `json:"id"`
	Version   int         `json:"version"`
	Session   string      `json:"session,omitempty"`
	Token     string      `json:"token,omitempty"`
	Events    []wireEvent `json:"events"`
	Timestamp int64       `json:"timestamp,omitempty"`
}

// MarshalJSON implements the commit wire format
// {id, version, session, events:[{type, payload}], timestamp?}.
func (c Commit) MarshalJSON() ([]byte, error) {
	events := make([]wireEvent, 0, len(c.Events))
	for _, evt := range c.Events {
		payload, err := json.Marshal(evt.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", evt.Type, err)
		}
		events = append(events, wireEvent{Type: evt.Type, Payload: payload})
	}
	return json.Marshal(wireCommit{
		ID:        c.ID,
		Version:   c.Version,
		Session:   c.Session,
		Token:     c.Token,
		Events:    events,
		Timestamp: c.Timestamp,
	})
}

// UnmarshalJSON decodes the wire format, resolving each event payload by
// its type discriminant. Unknown types or malformed payloads fail decode.
func (c *Commit) UnmarshalJSON(data []byte) error {
	var wire wireCommit
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decode commit: %w", err)
	}
	if len(wire.Events) == 0 {
		return ErrEmpty
	}

	events := make([]event.Event, 0, len(wire.Events))
	for _, we := range wire.Events {
		payload, err := event.DecodePayload(we.Type, we.Payload)
		if err != nil {
			return err
		}
		events = append(events, event.Event{Type: we.Type, Payload: payload})
	}

	c.ID = wire.ID
	c.Version = wire.Version
	c.Session = wire.Session
	c.Token = wire.Token
	c.Events = events
	c.Timestamp = wire.Timestamp
	return nil
}
