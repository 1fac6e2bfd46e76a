package chatstate_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysy950803/supportchat/internal/chatengine"
	"github.com/ysy950803/supportchat/internal/chatstate"
	"github.com/ysy950803/supportchat/internal/errors"
)

type emitted struct {
	Event   string
	Payload any
}

type fakeChat struct {
	key   string
	emits []emitted
}

func (f *fakeChat) Key() string { return f.key }

func (f *fakeChat) Emit(_ context.Context, event string, payload any) error {
	f.emits = append(f.emits, emitted{Event: event, Payload: payload})
	return nil
}

func msgEvent(chat chatengine.Chat, senderUUID string, timetoken int64, data string) chatengine.Event {
	return chatengine.Event{
		Type:      chatengine.TypeMessage,
		Sender:    chatengine.User{UUID: senderUUID},
		Chat:      chat,
		Data:      json.RawMessage(data),
		Timetoken: timetoken,
	}
}

func TestIngestMessageKeepsLogSorted(t *testing.T) {
	s := chatstate.New()
	chat := &fakeChat{key: "room-1"}

	s.IngestMessage(msgEvent(chat, "customer-1", 30, `"c"`))
	s.IngestMessage(msgEvent(chat, "customer-1", 10, `"a"`))
	s.IngestMessage(msgEvent(chat, "customer-1", 20, `"b"`))

	got := s.Messages("room-1")
	require.Len(t, got, 3)
	assert.Equal(t, int64(10), got[0].Timetoken)
	assert.Equal(t, int64(20), got[1].Timetoken)
	assert.Equal(t, int64(30), got[2].Timetoken)
}

func TestIngestMessageStableForEqualTimetokens(t *testing.T) {
	s := chatstate.New()
	chat := &fakeChat{key: "room-1"}

	s.IngestMessage(msgEvent(chat, "customer-1", 10, `"first"`))
	s.IngestMessage(msgEvent(chat, "customer-1", 10, `"second"`))
	s.IngestMessage(msgEvent(chat, "customer-1", 10, `"third"`))

	got := s.Messages("room-1")
	require.Len(t, got, 3)
	assert.Equal(t, `"first"`, string(got[0].Data))
	assert.Equal(t, `"second"`, string(got[1].Data))
	assert.Equal(t, `"third"`, string(got[2].Data))
}

func TestIngestMessageAuthorship(t *testing.T) {
	s := chatstate.New()
	chat := &fakeChat{key: "room-1"}

	s.IngestMessage(msgEvent(chat, "support", 1, `"hello"`))
	s.IngestMessage(msgEvent(chat, "customer-1", 2, `"hi"`))

	got := s.Messages("room-1")
	require.Len(t, got, 2)
	assert.Equal(t, chatstate.AuthorSupport, got[0].Author)
	assert.Equal(t, chatstate.AuthorSupport, got[0].Who)
	assert.Equal(t, chatstate.AuthorMe, got[1].Author)
	assert.Equal(t, "text", got[0].Type)
}

func TestIngestMessageInitializesLog(t *testing.T) {
	s := chatstate.New()

	assert.Empty(t, s.Messages("never-seen"))

	s.IngestMessage(msgEvent(&fakeChat{key: "fresh"}, "customer-1", 1, `"x"`))
	assert.Len(t, s.Messages("fresh"), 1)
}

func TestNewChatRejectsMissingKey(t *testing.T) {
	s := chatstate.New()

	err := s.NewChat(&fakeChat{key: ""})
	assert.ErrorIs(t, err, errors.ErrMissingChatKey)

	err = s.NewChat(nil)
	assert.ErrorIs(t, err, errors.ErrMissingChatKey)

	_, ok := s.Chat("")
	assert.False(t, ok)
}

func TestNewChatOverwritesDuplicateKey(t *testing.T) {
	s := chatstate.New()
	first := &fakeChat{key: "room-1"}
	second := &fakeChat{key: "room-1"}

	require.NoError(t, s.NewChat(first))
	require.NoError(t, s.NewChat(second))

	got, ok := s.Chat("room-1")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestSetFriendsDeduplicatesByKey(t *testing.T) {
	s := chatstate.New()

	s.SetFriends([]chatstate.Friend{{Key: "f1", Name: "Alice"}})
	s.SetFriends([]chatstate.Friend{
		{Key: "f1", Name: "Impostor"},
		{Key: "f2", Name: "Bob"},
	})

	friends := s.Friends()
	require.Len(t, friends, 2)
	assert.Equal(t, "Alice", friends[0].Name) // first record wins
	assert.Equal(t, "Bob", friends[1].Name)
}

func TestSetChatEngineReadyIsIdempotent(t *testing.T) {
	s := chatstate.New()

	assert.False(t, s.ChatEngineReady())

	s.SetChatEngineReady()
	s.SetChatEngineReady()

	assert.True(t, s.ChatEngineReady())

	select {
	case <-s.Ready():
	default:
		t.Fatal("ready channel not closed")
	}

	// Exactly one ready notification despite two calls.
	n := <-s.Notifications()
	assert.Equal(t, "ready", n.Kind)
	select {
	case extra := <-s.Notifications():
		t.Fatalf("unexpected second notification: %+v", extra)
	default:
	}
}

func TestSendMessage(t *testing.T) {
	s := chatstate.New()
	chat := &fakeChat{key: "room-1"}
	require.NoError(t, s.NewChat(chat))

	err := s.SendMessage(context.Background(), "room-1", map[string]string{"text": "hello"})
	require.NoError(t, err)
	require.Len(t, chat.emits, 1)
	assert.Equal(t, "message", chat.emits[0].Event)

	err = s.SendMessage(context.Background(), "no-such-chat", nil)
	assert.ErrorIs(t, err, errors.ErrUnknownChat)
}

func TestIdentityAndSelection(t *testing.T) {
	s := chatstate.New()

	s.SetMe(chatstate.Identity{UUID: "u-1", Name: "blue-whale"})
	assert.Equal(t, "u-1", s.MyUUID())
	assert.Equal(t, "blue-whale", s.Me().Name)

	// No existence check on selection.
	s.SetCurrentChat("anything")
	assert.Equal(t, "anything", s.CurrentChat())
}

func TestRegisterFriendChat(t *testing.T) {
	s := chatstate.New()
	chat := &fakeChat{key: "f1"}

	err := s.RegisterFriendChat(chatstate.Friend{Key: "f1"}, chat)
	require.NoError(t, err)

	friends := s.Friends()
	require.Len(t, friends, 1)
	assert.Equal(t, "No Name", friends[0].Name)

	_, ok := s.Chat("f1")
	assert.True(t, ok)
}

func TestMessageNotification(t *testing.T) {
	s := chatstate.New()
	s.IngestMessage(msgEvent(&fakeChat{key: "room-1"}, "support", 1, `"hey"`))

	n := <-s.Notifications()
	assert.Equal(t, "message", n.Kind)
	assert.Equal(t, "room-1", n.ChatKey)
}
