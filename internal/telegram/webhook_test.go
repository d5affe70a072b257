package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookDispatchesUpdate(t *testing.T) {
	var got []Update
	h := NewWebhookHandler("s3cret", func(ctx context.Context, upd Update) {
		got = append(got, upd)
	})

	body := `{"update_id":5,"message":{"message_id":1,"chat":{"id":42,"type":"private"},"text":"/menu"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "s3cret")
	w := httptest.NewRecorder()

	h.HandleIncoming(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].UpdateID)
	require.NotNil(t, got[0].Message)
	assert.Equal(t, "/menu", got[0].Message.Text)
}

func TestWebhookRejectsWrongSecret(t *testing.T) {
	called := false
	h := NewWebhookHandler("s3cret", func(ctx context.Context, upd Update) { called = true })

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"update_id":5}`))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "wrong")
	w := httptest.NewRecorder()

	h.HandleIncoming(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)
}

func TestWebhookRejectsMissingSecret(t *testing.T) {
	called := false
	h := NewWebhookHandler("s3cret", func(ctx context.Context, upd Update) { called = true })

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"update_id":5}`))
	w := httptest.NewRecorder()

	h.HandleIncoming(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)
}

func TestWebhookSwallowsMalformedPayload(t *testing.T) {
	called := false
	h := NewWebhookHandler("s3cret", func(ctx context.Context, upd Update) { called = true })

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"update_id":`))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "s3cret")
	w := httptest.NewRecorder()

	h.HandleIncoming(w, req)

	// 200 keeps Telegram from redelivering a payload that can never parse.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, called)
}
