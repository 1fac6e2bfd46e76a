// Package chatengine abstracts the external pub/sub chat SDK. The SDK owns
// transport, presence and delivery; this package only defines the event and
// handle shapes the rest of the system consumes.
package chatengine

import (
	"context"
	"encoding/json"
)

type EventType string

const (
	TypeMessage     EventType = "message"
	TypeChatCreated EventType = "chatCreated"
	TypeReady       EventType = "ready"
)

// SupportUUID is the reserved identity of the support operator. Messages
// from this UUID are attributed to the support side of a conversation.
const SupportUUID = "support"

// User identifies a chat participant as reported by the SDK.
type User struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// Chat is the opaque conversation handle supplied by the SDK. The state
// store never constructs one; it only files handles under their key and
// emits outbound events through them.
type Chat interface {
	Key() string
	Emit(ctx context.Context, event string, payload any) error
}

// Event is a single SDK callback, normalized.
type Event struct {
	Type      EventType
	Sender    User
	Chat      Chat
	Data      json.RawMessage
	Timetoken int64
}

// Source is the SDK's event stream. Implementations close the channel when
// the underlying connection goes away.
type Source interface {
	Events() <-chan Event
}

// Sink receives events in arrival order. *chatstate.Store satisfies this.
type Sink interface {
	IngestMessage(Event)
	NewChat(Chat) error
	SetChatEngineReady()
}
