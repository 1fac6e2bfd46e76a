// Package supportstate models the single persisted document describing
// which chats the support operator has open.
package supportstate

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/ysy950803/supportchat/internal/errors"
)

// DocumentKey is the fixed key the document lives under in the kv store.
const DocumentKey = "support_user_state"

// State is the stored document. Chat values stay raw so a POST round-trips
// fields this service knows nothing about.
type State struct {
	Name  string                     `json:"name"`
	UUID  string                     `json:"uuid"`
	Chats map[string]json.RawMessage `json:"chats"`
}

// ChatMeta is the chat entry shape written by PUT upserts.
type ChatMeta struct {
	Key  string    `json:"key"`
	Name string    `json:"name"`
	Time time.Time `json:"time"`
}

// Default returns the document served (and lazily created) when nothing has
// been stored yet.
func Default() *State {
	return &State{
		Name:  "support",
		UUID:  "support",
		Chats: map[string]json.RawMessage{},
	}
}

func Decode(data []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Chats == nil {
		s.Chats = map[string]json.RawMessage{}
	}
	return &s, nil
}

func (s *State) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Merge overwrites the named chat keys with the incoming values. Keys not
// mentioned in incoming survive untouched; nothing is ever removed.
func (s *State) Merge(incoming map[string]json.RawMessage) {
	if s.Chats == nil {
		s.Chats = map[string]json.RawMessage{}
	}
	for key, value := range incoming {
		s.Chats[key] = value
	}
}

// Upsert writes a ChatMeta entry for meta.Key.
func (s *State) Upsert(meta ChatMeta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if s.Chats == nil {
		s.Chats = map[string]json.RawMessage{}
	}
	s.Chats[meta.Key] = raw
	return nil
}

// PostBody is a validated chat_state POST payload.
type PostBody struct {
	Raw   []byte
	Chats map[string]json.RawMessage
}

// ParsePostBody enforces the merge contract: the body must be a JSON object
// whose "chats" field is itself a non-array object.
func ParsePostBody(data []byte) (*PostBody, error) {
	if !isObject(data) {
		return nil, errors.BadRequest("body must be a JSON object")
	}
	var envelope struct {
		Chats json.RawMessage `json:"chats"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, errors.BadRequest("malformed JSON body")
	}
	if !isObject(envelope.Chats) {
		return nil, errors.BadRequest("chats must be an object")
	}
	var chats map[string]json.RawMessage
	if err := json.Unmarshal(envelope.Chats, &chats); err != nil {
		return nil, errors.BadRequest("chats must be an object")
	}
	return &PostBody{Raw: data, Chats: chats}, nil
}

// PutBody is a validated chat_state PUT payload. A client-sent time field
// is accepted and ignored; the server clock is authoritative.
type PutBody struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

func ParsePutBody(data []byte) (*PutBody, error) {
	var body PutBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, errors.BadRequest("malformed JSON body")
	}
	if body.Key == "" {
		return nil, errors.InvalidArg("key")
	}
	if body.Name == "" {
		return nil, errors.InvalidArg("name")
	}
	return &body, nil
}

func isObject(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}
