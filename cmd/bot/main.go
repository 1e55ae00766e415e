package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"eilbot/internal/bot"
	"eilbot/internal/config"
	"eilbot/internal/feed"
	"eilbot/internal/notify"
	"eilbot/internal/poller"
	"eilbot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	var b *bot.Bot
	var p *poller.Poller

	b, err = bot.New(cfg.TelegramBotToken, store, cfg, checkerFunc(func(ctx context.Context) { p.Check(ctx) }), log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	dispatcher := notify.NewDispatcher(store, b, log)
	feedClient := feed.New(http.DefaultClient, cfg.FeedURL)
	p = poller.New(feedClient, notify.NewDedup(store), dispatcher, log, cfg.PollInterval)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting bot", "feed_url", cfg.FeedURL, "poll_interval", cfg.PollInterval)

	go p.Run(ctx)

	b.Run(ctx)

	log.Info("bot stopped")
}

// checkerFunc adapts a function to the bot.Checker interface, breaking
// the construction cycle between the bot and the poller.
type checkerFunc func(ctx context.Context)

func (f checkerFunc) Check(ctx context.Context) { f(ctx) }

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
