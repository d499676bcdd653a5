// Package message defines the append-only, user-facing output of the
// reducer. Messages are never mutated once recorded.
package message

import (
	"github.com/louisbranch/continental/internal/game/event"
	apperrors "github.com/louisbranch/continental/internal/platform/errors"
)

// Kind distinguishes informational messages from rejected-event errors.
type Kind string

const (
	// KindMessage is an informational message.
	KindMessage Kind = "message"
	// KindError records a rejected event.
	KindError Kind = "error"
)

// Message is one line of reducer output tied to the commit that caused it.
// Code is set only for error messages so the API surface can map them.
type Message struct {
	CommitID  string
	Kind      Kind
	EventName event.Type
	Code      apperrors.Code
	Text      string
	Timestamp int64
}
