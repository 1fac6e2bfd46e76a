// Package chatstate holds the client-side view model: the current user,
// known chats, per-chat message logs and the friend list. Mutations are the
// only way in; getters return copies so callers cannot reach the guarded
// state.
package chatstate

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/ysy950803/supportchat/internal/chatengine"
	"github.com/ysy950803/supportchat/internal/errors"
)

type Author string

const (
	AuthorMe      Author = "me"
	AuthorSupport Author = "support"
)

// Identity is the authenticated user, set once after the SDK connects.
type Identity struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

type Friend struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type Message struct {
	Timetoken int64           `json:"timetoken"`
	Author    Author          `json:"author"`
	Type      string          `json:"type"`
	Who       Author          `json:"who"`
	Data      json.RawMessage `json:"data"`
}

// Notification is a lightweight change signal for UI-level subscribers.
// Only message ingestion and engine readiness notify; every other mutation
// is a pure state transition.
type Notification struct {
	Kind    string `json:"kind"` // "ready" or "message"
	ChatKey string `json:"chat_key,omitempty"`
}

type Store struct {
	mu sync.RWMutex

	me          Identity
	chats       map[string]chatengine.Chat
	messages    map[string][]Message
	friends     []Friend
	friendKeys  map[string]bool
	currentChat string
	ready       bool

	readyCh chan struct{}
	notify  chan Notification
}

func New() *Store {
	return &Store{
		chats:      map[string]chatengine.Chat{},
		messages:   map[string][]Message{},
		friendKeys: map[string]bool{},
		readyCh:    make(chan struct{}),
		notify:     make(chan Notification, 32),
	}
}

// SetMe replaces the current identity wholesale.
func (s *Store) SetMe(me Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.me = me
}

// SetChatEngineReady marks the SDK as connected. The ready channel closes
// and the "ready" notification fires on the first call only; repeat calls
// are no-ops.
func (s *Store) SetChatEngineReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return
	}
	s.ready = true
	close(s.readyCh)
	s.push(Notification{Kind: "ready"})
}

// SetCurrentChat selects chatKey without checking it exists.
func (s *Store) SetCurrentChat(chatKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentChat = chatKey
}

// SetFriends merges the incoming records into the friend list, skipping any
// whose key is already known. First record wins, name included.
func (s *Store) SetFriends(friends []Friend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range friends {
		if s.friendKeys[f.Key] {
			continue
		}
		s.friendKeys[f.Key] = true
		s.friends = append(s.friends, f)
	}
}

// NewChat files the SDK handle under its key, overwriting any previous
// handle for that key. A nil handle or empty key leaves state untouched.
func (s *Store) NewChat(chat chatengine.Chat) error {
	if chat == nil || chat.Key() == "" {
		return errors.ErrMissingChatKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[chat.Key()] = chat
	return nil
}

// RegisterFriendChat is the bootstrap for a fresh 1:1 conversation: the
// friend joins the list and the handle joins the chat map in one step.
func (s *Store) RegisterFriendChat(friend Friend, chat chatengine.Chat) error {
	if err := s.NewChat(chat); err != nil {
		return err
	}
	if friend.Name == "" {
		friend.Name = "No Name"
	}
	s.SetFriends([]Friend{friend})
	return nil
}

// IngestMessage folds an SDK message event into the per-chat log. The log
// stays sorted ascending by timetoken; equal timetokens keep their arrival
// order.
func (s *Store) IngestMessage(ev chatengine.Event) {
	key := ""
	if ev.Chat != nil {
		key = ev.Chat.Key()
	}

	who := AuthorMe
	if ev.Sender.UUID == chatengine.SupportUUID {
		who = AuthorSupport
	}

	msg := Message{
		Timetoken: ev.Timetoken,
		Author:    who,
		Type:      "text",
		Who:       who,
		Data:      ev.Data,
	}

	s.mu.Lock()
	if s.messages[key] == nil {
		s.messages[key] = []Message{}
	}
	s.messages[key] = append(s.messages[key], msg)
	log := s.messages[key]
	sort.SliceStable(log, func(i, j int) bool {
		return log[i].Timetoken < log[j].Timetoken
	})
	s.mu.Unlock()

	s.push(Notification{Kind: "message", ChatKey: key})
}

// SendMessage emits a "message" event on the chat's SDK handle. Delivery is
// the SDK's problem from here on.
func (s *Store) SendMessage(ctx context.Context, chatKey string, payload any) error {
	s.mu.RLock()
	chat, ok := s.chats[chatKey]
	s.mu.RUnlock()
	if !ok {
		return errors.ErrUnknownChat
	}
	return chat.Emit(ctx, "message", payload)
}

func (s *Store) Me() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.me
}

func (s *Store) MyUUID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.me.UUID
}

func (s *Store) Friends() []Friend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Friend, len(s.friends))
	copy(out, s.friends)
	return out
}

func (s *Store) ChatEngineReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *Store) CurrentChat() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentChat
}

func (s *Store) Chat(key string) (chatengine.Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chat, ok := s.chats[key]
	return chat, ok
}

func (s *Store) Messages(key string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages[key]))
	copy(out, s.messages[key])
	return out
}

// Ready returns a channel closed once the chat engine reports readiness.
func (s *Store) Ready() <-chan struct{} {
	return s.readyCh
}

// Notifications exposes the change signal stream. Sends never block; a slow
// consumer loses signals, not state.
func (s *Store) Notifications() <-chan Notification {
	return s.notify
}

func (s *Store) push(n Notification) {
	select {
	case s.notify <- n:
	default:
	}
}
