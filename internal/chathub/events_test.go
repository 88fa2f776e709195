package chathub

import (
	"campuscart/backend/internal/config"
	"campuscart/backend/internal/models"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent_Variants(t *testing.T) {
	v := validator.New()

	ev, err := DecodeEvent(v, models.Frame{Event: EventTypingStart, Data: json.RawMessage(`{"recipientId":"b"}`)})
	require.NoError(t, err)
	assert.Equal(t, &Typing{RecipientID: "b", IsTyping: true}, ev)

	ev, err = DecodeEvent(v, models.Frame{Event: EventTypingStop, Data: json.RawMessage(`{"recipientId":"b","isTyping":true}`)})
	require.NoError(t, err)
	assert.False(t, ev.(*Typing).IsTyping, "typing state comes from the event name")

	ev, err = DecodeEvent(v, models.Frame{Event: EventMarkAllNotificationsRead})
	require.NoError(t, err)
	assert.IsType(t, &MarkAllNotificationsRead{}, ev)

	ev, err = DecodeEvent(v, models.Frame{Event: EventGetNotifications, Data: json.RawMessage(`{"page":2}`)})
	require.NoError(t, err)
	assert.Equal(t, &GetNotifications{Page: 2}, ev)
}

func TestDecodeEvent_Errors(t *testing.T) {
	v := validator.New()

	_, err := DecodeEvent(v, models.Frame{Event: "dance"})
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, err = DecodeEvent(v, models.Frame{Event: EventJoinConversation, Data: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodeEvent(v, models.Frame{Event: EventGetNotifications, Data: json.RawMessage(`{"page":-1}`)})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodeEvent(v, models.Frame{Event: EventSendMessage, Data: json.RawMessage(`[1,2]`)})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestParseFrame(t *testing.T) {
	f, err := ParseFrame([]byte(`{"event":"send_message","id":"42","data":{"content":"hi"}}`))
	require.NoError(t, err)
	assert.Equal(t, "send_message", f.Event)
	assert.Equal(t, "42", f.ID)

	_, err = ParseFrame([]byte(`{"id":"42"}`))
	assert.ErrorIs(t, err, ErrInvalidFrame)

	_, err = ParseFrame([]byte(`{`))
	assert.ErrorIs(t, err, ErrInvalidFrame)
}

func TestNormalizeContent(t *testing.T) {
	got, err := NormalizeContent("  hello \n")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = NormalizeContent("   ")
	assert.ErrorIs(t, err, ErrContentEmpty)

	exact := strings.Repeat("ї", config.MaxMessageLength)
	got, err = NormalizeContent(exact)
	require.NoError(t, err)
	assert.Equal(t, exact, got)

	_, err = NormalizeContent(exact + "ї")
	assert.ErrorIs(t, err, ErrContentTooLong)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short"))
	long := strings.Repeat("ab", 80)
	assert.Equal(t, long[:config.PreviewLength], Preview(long))
	assert.Len(t, []rune(Preview(strings.Repeat("й", 150))), config.PreviewLength)
}

func TestErrorCode(t *testing.T) {
	code, key := errorCode(ErrContentTooLong)
	assert.Equal(t, CodeContentTooLong, code)
	assert.Equal(t, "error.content_too_long", key)

	code, _ = errorCode(assert.AnError)
	assert.Equal(t, CodeInternal, code)
}
