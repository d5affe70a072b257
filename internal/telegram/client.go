package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// APIError is a Bot API rejection (ok=false), carrying the upstream
// error code and description.
type APIError struct {
	Code        int
	Description string
	RetryAfter  int // seconds; set when the API asks to slow down
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error %d: %s", e.Code, e.Description)
}

// Client is a typed client for the Telegram Bot API.
// Reference: https://core.telegram.org/bots/api
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		// Must exceed the getUpdates long-poll wait (DefaultPollTimeout)
		// or every empty poll turns into a client-side timeout.
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetMe fetches the bot's own account, which also validates the token.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var u User
	if err := c.call(ctx, "getMe", struct{}{}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	return c.call(ctx, "sendMessage", SendMessageRequest{ChatID: chatID, Text: text}, nil)
}

// SendButtons sends a text message with an inline keyboard attached.
func (c *Client) SendButtons(ctx context.Context, chatID int64, text string, buttons [][]InlineKeyboardButton) error {
	return c.call(ctx, "sendMessage", SendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: &InlineKeyboardMarkup{InlineKeyboard: buttons},
	}, nil)
}

// SendPhotoURL sends a single photo that Telegram fetches from a public URL.
func (c *Client) SendPhotoURL(ctx context.Context, chatID int64, url, caption string) error {
	return c.call(ctx, "sendPhoto", SendPhotoRequest{ChatID: chatID, Photo: url, Caption: caption}, nil)
}

// SendPhotoFile uploads a local image file as a photo message.
func (c *Client) SendPhotoFile(ctx context.Context, chatID int64, path, caption string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening photo %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return err
	}
	if caption != "" {
		if err := w.WriteField("caption", caption); err != nil {
			return err
		}
	}
	part, err := w.CreateFormFile("photo", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading photo %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendPhoto", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("uploading photo: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, "sendPhoto", nil)
}

// SendMediaGroup sends an album of photos. The Bot API requires 2-10 items;
// out-of-range groups come back as an *APIError.
func (c *Client) SendMediaGroup(ctx context.Context, chatID int64, media []InputMediaPhoto) error {
	return c.call(ctx, "sendMediaGroup", SendMediaGroupRequest{ChatID: chatID, Media: media}, nil)
}

// AnswerCallback acknowledges a callback query so the client stops showing
// the progress spinner on the pressed button.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", AnswerCallbackRequest{CallbackQueryID: callbackID}, nil)
}

// SetMyCommands registers the bot's command menu.
func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	return c.call(ctx, "setMyCommands", SetMyCommandsRequest{Commands: commands}, nil)
}

// GetUpdates long-polls for updates with update_id >= offset, waiting up to
// timeout seconds server-side when nothing is pending.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", GetUpdatesRequest{
		Offset:         offset,
		Timeout:        timeout,
		AllowedUpdates: []string{"message", "callback_query"},
	}, &updates)
	if err != nil {
		return nil, err
	}
	return updates, nil
}

// SetWebhook points Telegram at url for update delivery. The secret is
// echoed back on every delivery in X-Telegram-Bot-Api-Secret-Token.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	return c.call(ctx, "setWebhook", SetWebhookRequest{
		URL:            url,
		SecretToken:    secret,
		AllowedUpdates: []string{"message", "callback_query"},
	}, nil)
}

// DeleteWebhook removes any registered webhook; getUpdates is rejected
// while one is active.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", struct{}{}, nil)
}

func (c *Client) call(ctx context.Context, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, method, result)
}

// decodeResponse unwraps the {ok, result, error_code, description} envelope,
// turning ok=false into an *APIError.
func decodeResponse(resp *http.Response, method string, result any) error {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", method, err)
	}

	var env apiResponse
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("decoding %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !env.OK {
		apiErr := &APIError{Code: env.ErrorCode, Description: env.Description}
		if env.Parameters != nil {
			apiErr.RetryAfter = env.Parameters.RetryAfter
		}
		return apiErr
	}
	if result != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, result); err != nil {
			return fmt.Errorf("decoding %s result: %w", method, err)
		}
	}
	return nil
}
