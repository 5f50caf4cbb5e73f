package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"kinobot/internal/bootstrap"
	"kinobot/internal/bot"
	"kinobot/internal/broadcast"
	"kinobot/internal/catalog"
	"kinobot/internal/channel"
	"kinobot/internal/config"
	cronpkg "kinobot/internal/cron"
	"kinobot/internal/gate"
	"kinobot/internal/logger"
	"kinobot/internal/middleware"
	"kinobot/internal/pkg/telegram"
	"kinobot/internal/repository"
	"kinobot/internal/router"
	"kinobot/internal/storage"
	"kinobot/internal/wizard"
)

func main() {
	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(cfg.Server.Env, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if hasArg("--bootstrap-db") {
		if err := runDBBootstrap(cfg, log); err != nil {
			log.Fatal("Database bootstrap failed", zap.Error(err))
		}
		log.Info("Database bootstrap completed")
		return
	}
	if hasArg("--import-json") {
		if err := runJSONImport(cfg, log); err != nil {
			log.Fatal("JSON import failed", zap.Error(err))
		}
		return
	}

	// --- Storage ---
	repos, err := openRepos(cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}

	// --- Telegram Bot API (direct HTTP client) ---
	botAPI := telegram.NewBotAPI(cfg.Bot.Token, cfg.Bot.APIURL, log)

	// --- Domain services ---
	registry := channel.NewRegistry(repos.Channel, repos.InviteLink, botAPI, log)
	svc := &bot.Services{
		Users:     repos.User,
		Catalog:   catalog.New(repos.Movie),
		Channels:  registry,
		Gate:      gate.New(repos.Channel, botAPI, cfg.Gate.AcceptPending, log),
		Wizard:    wizard.NewManager(),
		Broadcast: broadcast.New(repos.User, botAPI, cfg.Broadcast.RatePerSecond, log),
	}

	// --- Bot ---
	teleBot, err := bot.New(cfg, svc, log)
	if err != nil {
		log.Fatal("Failed to create bot", zap.Error(err))
	}

	// --- Webhook Deduper (Redis with in-memory fallback) ---
	updateDeduper, dedupeErr := middleware.NewUpdateDeduper(cfg.Redis.Addr, cfg.Redis.Pass, cfg.Redis.DB, 10*time.Minute)
	if dedupeErr != nil {
		log.Warn("Redis unavailable for webhook dedup, using in-memory fallback", zap.Error(dedupeErr))
	}
	defer updateDeduper.Close()

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true
	router.Setup(e, router.Options{
		Logger:         log,
		BotToken:       cfg.Bot.Token,
		WebhookIPCheck: cfg.Bot.WebhookIPCheck,
		Deduper:        updateDeduper,
		Webhook:        teleBot.WebhookHandler(),
	})

	// --- Cron Scheduler ---
	scheduler := cronpkg.New(cfg, botAPI, teleBot, registry, log)
	if err := scheduler.Start(); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Start bot first so the webhook handler has somewhere to deliver updates.
	go teleBot.Start()

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		log.Info("Starting kinobot server", zap.String("addr", addr), zap.String("storage", cfg.Storage.Driver))
		if err := e.Start(addr); err != nil {
			log.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	teleBot.Stop()

	ctx := scheduler.Stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

func hasArg(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}

// openRepos returns the repositories for the configured storage driver.
func openRepos(cfg *config.Config, log *zap.Logger) (*repository.Repos, error) {
	switch cfg.Storage.Driver {
	case "", "json":
		return openJSONRepos(cfg.Storage.DataDir, log)
	case "mysql", "sqlite":
		db, err := config.NewDatabase(&cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := bootstrap.Migrate(db); err != nil {
			return nil, err
		}
		return repository.NewGormRepos(db), nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
}

func openJSONRepos(dir string, log *zap.Logger) (*repository.Repos, error) {
	store, err := storage.New(dir)
	if err != nil {
		return nil, err
	}
	repos, err := repository.NewJSONRepos(store)
	if err != nil {
		return nil, err
	}
	if channels, ok := repos.Channel.(*repository.JSONChannelStore); ok && channels.ImportedFrom().Legacy() {
		log.Info("Converted legacy channels file", zap.Stringer("from", channels.ImportedFrom()))
	}
	return repos, nil
}

func runDBBootstrap(cfg *config.Config, log *zap.Logger) error {
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		return err
	}
	if err := bootstrap.Migrate(db); err != nil {
		return err
	}
	log.Info("Schema migration completed", zap.String("driver", cfg.Database.Driver))
	return nil
}

// runJSONImport copies the JSON files in DATA_DIR into the configured database.
func runJSONImport(cfg *config.Config, log *zap.Logger) error {
	src, err := openJSONRepos(cfg.Storage.DataDir, log)
	if err != nil {
		return err
	}
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		return err
	}
	if err := bootstrap.Migrate(db); err != nil {
		return err
	}

	stats, err := bootstrap.ImportRepos(src, repository.NewGormRepos(db))
	if err != nil {
		return err
	}
	log.Info("JSON import completed",
		zap.Int("users", stats.Users),
		zap.Int("movies", stats.Movies),
		zap.Int("channels", stats.Channels),
		zap.Int("invite_links", stats.InviteLinks),
	)
	return nil
}
