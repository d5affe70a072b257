package telegram

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
)

// UpdateHandler is called for each incoming update.
type UpdateHandler func(ctx context.Context, upd Update)

// WebhookHandler receives update deliveries when the bot runs in webhook
// mode instead of long polling.
type WebhookHandler struct {
	secretToken string
	onUpdate    UpdateHandler
}

func NewWebhookHandler(secretToken string, onUpdate UpdateHandler) *WebhookHandler {
	return &WebhookHandler{
		secretToken: secretToken,
		onUpdate:    onUpdate,
	}
}

// HandleIncoming processes one webhook delivery from Telegram. Deliveries
// that fail the secret check are rejected; malformed payloads get 200 OK so
// Telegram drops them instead of redelivering.
// Reference: https://core.telegram.org/bots/api#setwebhook
func (h *WebhookHandler) HandleIncoming(w http.ResponseWriter, r *http.Request) {
	if h.secretToken != "" && r.Header.Get("X-Telegram-Bot-Api-Secret-Token") != h.secretToken {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var upd Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		log.Printf("webhook: failed to decode update: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	// Processing happens here synchronously; replies must not be tied to the
	// delivery connection, which Telegram may drop once we respond slowly.
	h.onUpdate(context.Background(), upd)

	w.WriteHeader(http.StatusOK)
}
