package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/HellRyder43/AziziTGBot/internal/bot"
	"github.com/HellRyder43/AziziTGBot/internal/config"
	"github.com/HellRyder43/AziziTGBot/internal/sheets"
	"github.com/HellRyder43/AziziTGBot/internal/store"
	"github.com/HellRyder43/AziziTGBot/internal/telegram"
)

const webhookPath = "/webhook"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewBoltStore(cfg.DataDir + "/azizibot.db")
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer db.Close()

	sheetsClient, err := sheets.NewClient(ctx, cfg.CredentialsFile)
	if err != nil {
		log.Fatalf("sheets: %v", err)
	}
	log.Printf("azizibot: sheets client ready (spreadsheet %s, range %s)", cfg.SpreadsheetID, cfg.SheetsRange)

	tg := telegram.NewClient(cfg.BotToken)

	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Fatalf("telegram: getMe: %v", err)
	}
	log.Printf("azizibot: authorized as @%s", me.Username)

	if err := tg.SetMyCommands(ctx, []telegram.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "menu", Description: "Show the main menu"},
	}); err != nil {
		log.Printf("azizibot: failed to register commands: %v", err)
	}

	handler := bot.NewHandler(tg, sheetsClient, bot.Config{
		SpreadsheetID:  cfg.SpreadsheetID,
		SheetsRange:    cfg.SheetsRange,
		WhatsAppNumber: cfg.WhatsAppNumber,
		WelcomeImage:   cfg.WelcomeImage,
		AgentProfile:   cfg.AgentProfile,
	})

	switch cfg.Mode {
	case config.ModeWebhook:
		runWebhook(ctx, cfg, tg, handler)
	default:
		runPolling(ctx, tg, db, handler)
	}

	log.Println("azizibot: stopped")
}

// runPolling receives updates through getUpdates long polling, the
// transport that needs no public endpoint.
func runPolling(ctx context.Context, tg *telegram.Client, db store.Store, handler *bot.Handler) {
	// A leftover webhook registration blocks getUpdates.
	if err := tg.DeleteWebhook(ctx); err != nil {
		log.Printf("azizibot: failed to delete webhook: %v", err)
	}

	poller := telegram.NewPoller(tg, db, handler.HandleUpdate)
	log.Println("azizibot: polling for updates")
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("poller: %v", err)
	}
	log.Println("azizibot: shutting down...")
}

// runWebhook registers a webhook and serves update deliveries over HTTP.
func runWebhook(ctx context.Context, cfg *config.Config, tg *telegram.Client, handler *bot.Handler) {
	if err := tg.SetWebhook(ctx, cfg.PublicURL+webhookPath, cfg.WebhookSecret); err != nil {
		log.Fatalf("telegram: setWebhook: %v", err)
	}

	webhook := telegram.NewWebhookHandler(cfg.WebhookSecret, handler.HandleUpdate)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post(webhookPath, webhook.HandleIncoming)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("azizibot: listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("azizibot: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
