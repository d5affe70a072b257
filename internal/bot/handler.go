// Package bot routes incoming commands and button clicks to the fixed
// three-option menu flow: agent profile, property listings, WhatsApp link.
package bot

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/HellRyder43/AziziTGBot/internal/listing"
	"github.com/HellRyder43/AziziTGBot/internal/sheets"
	"github.com/HellRyder43/AziziTGBot/internal/telegram"
)

// Callback data for the three fixed menu actions.
const (
	callbackProfile    = "profile"
	callbackProperties = "properties"
	callbackWhatsApp   = "whatsapp"
)

const (
	greetingText     = "Welcome to Property Azizi Bot! How can I assist you today?"
	chooseOptionText = "Please choose an option:"
	whatElseText     = "What else would you like to do?"
	noPropertiesText = "No properties found."
	fetchErrorText   = "An error occurred while fetching properties. Please try again later."
)

// Chat is the slice of the Telegram client the dispatcher sends through.
type Chat interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendButtons(ctx context.Context, chatID int64, text string, buttons [][]telegram.InlineKeyboardButton) error
	SendPhotoURL(ctx context.Context, chatID int64, url, caption string) error
	SendPhotoFile(ctx context.Context, chatID int64, path, caption string) error
	SendMediaGroup(ctx context.Context, chatID int64, media []telegram.InputMediaPhoto) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// RowSource returns spreadsheet rows for one listings request.
type RowSource interface {
	Values(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
}

// Config carries the fixed values the dispatcher embeds in its replies.
type Config struct {
	SpreadsheetID  string
	SheetsRange    string
	WhatsAppNumber string
	WelcomeImage   string
	AgentProfile   string
}

// Handler dispatches one update at a time. It holds no mutable state;
// every interaction is independent.
type Handler struct {
	tg   Chat
	rows RowSource
	cfg  Config
}

func NewHandler(tg Chat, rows RowSource, cfg Config) *Handler {
	return &Handler{tg: tg, rows: rows, cfg: cfg}
}

// HandleUpdate routes one incoming update. It satisfies telegram.UpdateHandler.
func (h *Handler) HandleUpdate(ctx context.Context, upd telegram.Update) {
	switch {
	case upd.Message != nil && upd.Message.Text != "":
		h.handleCommand(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		h.handleCallback(ctx, upd.CallbackQuery)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *telegram.Message) {
	switch command(msg.Text) {
	case "start":
		h.sendWelcome(ctx, msg.Chat.ID)
		h.showMenu(ctx, msg.Chat.ID, chooseOptionText)
	case "menu":
		h.showMenu(ctx, msg.Chat.ID, chooseOptionText)
	}
}

func (h *Handler) handleCallback(ctx context.Context, q *telegram.CallbackQuery) {
	if err := h.tg.AnswerCallback(ctx, q.ID); err != nil {
		log.Printf("bot: failed to answer callback %s: %v", q.ID, err)
	}
	if q.Message == nil {
		return // no chat to reply into
	}
	chatID := q.Message.Chat.ID

	switch q.Data {
	case callbackProfile:
		h.reply(ctx, chatID, h.cfg.AgentProfile)
	case callbackProperties:
		h.listProperties(ctx, chatID)
	case callbackWhatsApp:
		h.reply(ctx, chatID, "Click here to chat on WhatsApp: "+h.whatsAppLink())
	}

	// Show the main menu again after handling the button click.
	h.showMenu(ctx, chatID, whatElseText)
}

// sendWelcome sends the welcome image with the greeting as its caption,
// downgrading to a plain text greeting when the image is missing or the
// upload is rejected.
func (h *Handler) sendWelcome(ctx context.Context, chatID int64) {
	if err := h.tg.SendPhotoFile(ctx, chatID, h.cfg.WelcomeImage, greetingText); err != nil {
		log.Printf("bot: welcome photo not sent, falling back to text: %v", err)
		h.reply(ctx, chatID, greetingText)
	}
}

// listProperties renders every well-formed spreadsheet row into the chat,
// then closes with the agent's WhatsApp link.
func (h *Handler) listProperties(ctx context.Context, chatID int64) {
	rows, err := h.rows.Values(ctx, h.cfg.SpreadsheetID, h.cfg.SheetsRange)
	if err != nil {
		if errors.Is(err, sheets.ErrAuth) {
			log.Printf("bot: sheets credentials rejected: %v", err)
		} else {
			log.Printf("bot: failed to fetch properties: %v", err)
		}
		h.reply(ctx, chatID, fetchErrorText)
		return
	}

	log.Printf("bot: fetched %d rows from spreadsheet", len(rows))

	if len(rows) == 0 {
		h.reply(ctx, chatID, noPropertiesText)
		return
	}

	for _, row := range rows {
		l, ok := listing.FromRow(row)
		if !ok {
			log.Printf("bot: skipping row with insufficient data: %v", row)
			continue
		}
		h.sendListing(ctx, chatID, l)
	}

	h.reply(ctx, chatID, "These are all the available properties. Contact the agent for more information: "+h.whatsAppLink())
}

// sendListing attempts the image-rich rendering first and falls back to a
// single text message with the URLs inline when sending images fails.
func (h *Handler) sendListing(ctx context.Context, chatID int64, l listing.Listing) {
	var err error
	switch len(l.ImageURLs) {
	case 0:
		h.reply(ctx, chatID, l.Caption())
		return
	case 1:
		err = h.tg.SendPhotoURL(ctx, chatID, l.ImageURLs[0], l.Caption())
	default:
		err = h.tg.SendMediaGroup(ctx, chatID, mediaGroup(l))
	}
	if err != nil {
		log.Printf("bot: error sending images: %v", err)
		h.reply(ctx, chatID, l.FallbackText())
	}
}

// mediaGroup builds the album payload with the caption on the first photo.
func mediaGroup(l listing.Listing) []telegram.InputMediaPhoto {
	media := make([]telegram.InputMediaPhoto, len(l.ImageURLs))
	for i, url := range l.ImageURLs {
		media[i] = telegram.InputMediaPhoto{Type: "photo", Media: url}
	}
	media[0].Caption = l.Caption()
	return media
}

func (h *Handler) showMenu(ctx context.Context, chatID int64, text string) {
	if err := h.tg.SendButtons(ctx, chatID, text, mainMenuKeyboard()); err != nil {
		log.Printf("bot: failed to send menu: %v", err)
	}
}

// reply sends plain text, logging rather than propagating failures; the
// interaction is over either way.
func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.tg.SendText(ctx, chatID, text); err != nil {
		log.Printf("bot: failed to send reply: %v", err)
	}
}

func (h *Handler) whatsAppLink() string {
	return "https://wa.me/" + h.cfg.WhatsAppNumber
}

// mainMenuKeyboard is the fixed three-option menu, one button per row.
func mainMenuKeyboard() [][]telegram.InlineKeyboardButton {
	return [][]telegram.InlineKeyboardButton{
		{{Text: "Property Agent Profile", CallbackData: callbackProfile}},
		{{Text: "List of Properties", CallbackData: callbackProperties}},
		{{Text: "Link to WhatsApp", CallbackData: callbackWhatsApp}},
	}
}

// command extracts the bot command name from a message text, accepting the
// /cmd@BotName form used in group chats. Non-command text yields "".
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0][1:]
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd
}
