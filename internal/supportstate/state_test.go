package supportstate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDocument(t *testing.T) {
	data, err := Default().Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"support","uuid":"support","chats":{}}`, string(data))
}

func TestMergeIsAdditive(t *testing.T) {
	doc, err := Decode([]byte(`{"name":"support","uuid":"support","chats":{"xyz":{"key":"xyz","name":"Old"}}}`))
	require.NoError(t, err)

	doc.Merge(map[string]json.RawMessage{
		"abc": json.RawMessage(`{"key":"abc","name":"Alice"}`),
	})

	assert.Contains(t, doc.Chats, "xyz")
	assert.Contains(t, doc.Chats, "abc")
}

func TestMergeOverwritesNamedKeysOnly(t *testing.T) {
	doc, err := Decode([]byte(`{"name":"support","uuid":"support","chats":{"a":{"name":"one"},"b":{"name":"two"}}}`))
	require.NoError(t, err)

	doc.Merge(map[string]json.RawMessage{"a": json.RawMessage(`{"name":"replaced"}`)})

	assert.JSONEq(t, `{"name":"replaced"}`, string(doc.Chats["a"]))
	assert.JSONEq(t, `{"name":"two"}`, string(doc.Chats["b"]))
}

func TestDecodeRoundTripsForeignFields(t *testing.T) {
	// Fields this service does not model must survive decode/encode.
	doc, err := Decode([]byte(`{"name":"support","uuid":"support","chats":{"a":{"key":"a","avatar":"cat.png","unread":3}}}`))
	require.NoError(t, err)

	data, err := doc.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"avatar":"cat.png"`)
	assert.Contains(t, string(data), `"unread":3`)
}

func TestUpsert(t *testing.T) {
	doc := Default()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, doc.Upsert(ChatMeta{Key: "a", Name: "Alice", Time: now}))

	var meta ChatMeta
	require.NoError(t, json.Unmarshal(doc.Chats["a"], &meta))
	assert.Equal(t, "a", meta.Key)
	assert.Equal(t, "Alice", meta.Name)
	assert.True(t, meta.Time.Equal(now))
}

func TestParsePostBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"chats":{"abc":{"key":"abc"}}}`},
		{name: "empty chats object", body: `{"chats":{}}`},
		{name: "chats is a string", body: `{"chats":"not-an-object"}`, wantErr: true},
		{name: "chats is an array", body: `{"chats":[]}`, wantErr: true},
		{name: "chats missing", body: `{}`, wantErr: true},
		{name: "body is an array", body: `[1,2]`, wantErr: true},
		{name: "body is not json", body: `hello`, wantErr: true},
		{name: "empty body", body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePostBody([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.body, string(got.Raw))
		})
	}
}

func TestParsePutBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"key":"a","name":"Alice"}`},
		{name: "client time ignored but accepted", body: `{"key":"a","name":"Alice","time":"2020-01-01T00:00:00Z"}`},
		{name: "missing key", body: `{"name":"Alice"}`, wantErr: true},
		{name: "missing name", body: `{"key":"a"}`, wantErr: true},
		{name: "key not a string", body: `{"key":7,"name":"Alice"}`, wantErr: true},
		{name: "not json", body: `nope`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePutBody([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a", got.Key)
			assert.Equal(t, "Alice", got.Name)
		})
	}
}
