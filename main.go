// anna — personal secretary bot.
//
// Telegram frontend over a content-acquisition pipeline: article
// extraction cascade, YouTube transcript cascade, and an LLM client
// with API key rotation. Clipped pages land as markdown notes.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/joho/godotenv"

	"github.com/anna-secretary/anna/internal/bot"
	"github.com/anna-secretary/anna/internal/engine"
	"github.com/anna-secretary/anna/internal/engine/video"
	"github.com/anna-secretary/anna/internal/llm"
	"github.com/anna-secretary/anna/internal/notes"
	"github.com/anna-secretary/anna/internal/storage"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(env.Str("LOG_LEVEL", "info")),
	})))

	slog.Info("starting anna", slog.String("version", version))

	initEngine()

	llmClient := llm.NewClient(llm.Config{
		Keys:        env.List("LLM_API_KEYS", env.Str("LLM_API_KEY", "")),
		BaseURL:     env.Str("LLM_API_BASE", "https://openrouter.ai/api/v1"),
		Model:       env.Str("LLM_MODEL", "google/gemini-2.5-flash"),
		MaxTokens:   int64(env.Int("LLM_MAX_TOKENS", 8192)),
		Temperature: env.Float("LLM_TEMPERATURE", 0.7),
	})

	noteStore, err := notes.NewStore(env.Str("NOTES_DIR", "./notes"))
	if err != nil {
		slog.Error("notes dir unavailable", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.Open(env.Str("DB_PATH", "./anna.db"))
	if err != nil {
		slog.Error("database unavailable", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	b, err := bot.New(bot.Options{
		Token:       env.Str("TELEGRAM_TOKEN", ""),
		AdminID:     int64(env.Int("ADMIN_ID", 0)),
		HistorySize: env.Int("CONTEXT_SIZE", 20),
		LLM:         llmClient,
		Notes:       noteStore,
		Store:       db,
	})
	if err != nil {
		slog.Error("telegram unavailable", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("bot stopped", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func initEngine() {
	engine.Init(engine.Config{
		TavilyAPIKey:    env.Str("TAVILY_API_KEY", ""),
		MaxContentChars: env.Int("MAX_CONTENT_CHARS", 45000),
		MinContentLen:   env.Int("MIN_CONTENT_LEN", 200),
		FetchTimeout:    env.Duration("FETCH_TIMEOUT", 20*time.Second),

		CacheTTL:             env.Duration("CACHE_TTL", 30*time.Minute),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 500),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),

		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Transcripts: video.New(
			env.Str("YOUTUBE_COOKIES", ""),
			env.List("SUB_LANGS", "ru,en"),
		),
	})
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
