package bot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"kinobot/internal/broadcast"
	"kinobot/internal/catalog"
	"kinobot/internal/channel"
	"kinobot/internal/config"
	"kinobot/internal/gate"
	"kinobot/internal/repository"
	"kinobot/internal/wizard"
)

const requestTimeout = 20 * time.Second

// Bot wraps the telebot instance and handlers.
type Bot struct {
	tb         *tele.Bot
	webhook    *tele.Webhook
	useWebhook bool
	cfg        *config.Config
	svc        *Services
	logger     *zap.Logger
}

// Services bundles everything the handlers work with.
type Services struct {
	Users     repository.UserStore
	Catalog   *catalog.Catalog
	Channels  *channel.Registry
	Gate      *gate.Gate
	Wizard    *wizard.Manager
	Broadcast *broadcast.Dispatcher
}

// New creates and configures a new Bot instance.
func New(cfg *config.Config, svc *Services, logger *zap.Logger) (*Bot, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Bot.UpdateMode))
	if mode == "" {
		mode = "auto"
	}

	useWebhook := true
	switch mode {
	case "polling":
		useWebhook = false
	case "webhook":
		useWebhook = true
	default: // auto
		useWebhook = strings.TrimSpace(cfg.Bot.WebhookURL) != ""
	}

	var poller tele.Poller
	var webhook *tele.Webhook
	if useWebhook {
		if strings.TrimSpace(cfg.Bot.WebhookURL) == "" {
			return nil, fmt.Errorf("BOT_WEBHOOK_URL is required when BOT_UPDATE_MODE=webhook")
		}
		webhook = &tele.Webhook{
			Listen:      "", // mounted on echo
			SecretToken: cfg.Bot.WebhookSecret,
			Endpoint:    &tele.WebhookEndpoint{PublicURL: cfg.Bot.WebhookURL},
		}
		poller = webhook
	} else {
		poller = &tele.LongPoller{Timeout: 10 * time.Second}
	}

	pref := tele.Settings{
		URL:    cfg.Bot.APIURL,
		Token:  cfg.Bot.Token,
		Poller: poller,
		OnError: func(err error, c tele.Context) {
			fields := []zap.Field{zap.Error(err)}
			if c != nil && c.Chat() != nil {
				fields = append(fields, zap.Int64("chat_id", c.Chat().ID))
			}
			logger.Error("telebot error", fields...)
		},
	}

	tb, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telebot: %w", err)
	}

	b := &Bot{
		tb:         tb,
		webhook:    webhook,
		useWebhook: useWebhook,
		cfg:        cfg,
		svc:        svc,
		logger:     logger,
	}

	b.registerHandlers()

	return b, nil
}

// WebhookHandler returns the webhook handler for mounting on Echo.
// Returns nil when running in long-polling mode.
func (b *Bot) WebhookHandler() http.Handler {
	if b.webhook == nil {
		return nil
	}
	return b.webhook
}

// Start begins polling/webhook processing. It blocks until Stop.
func (b *Bot) Start() {
	if b.useWebhook {
		b.logger.Info("Starting Telegram bot", zap.String("mode", "webhook"), zap.String("webhook_url", b.cfg.Bot.WebhookURL))
	} else {
		// Long polling requires webhook to be removed first.
		if err := b.tb.RemoveWebhook(false); err != nil {
			b.logger.Warn("Failed to remove webhook before long polling", zap.Error(err))
		}
		b.logger.Info("Starting Telegram bot", zap.String("mode", "polling"))
	}
	b.tb.Start()
}

// Stop gracefully shuts down the bot.
func (b *Bot) Stop() {
	b.tb.Stop()
}

func (b *Bot) registerHandlers() {
	b.tb.Handle("/start", b.handleStart)
	b.tb.Handle("/admin", b.handleAdmin)
	b.tb.Handle("/cancel", b.handleCancel)
	b.tb.Handle(tele.OnText, b.handleText)
	b.tb.Handle(tele.OnVideo, b.handleVideo)
	b.tb.Handle(tele.OnCallback, b.handleCallback)
}

func (b *Bot) isAdmin(c tele.Context) bool {
	return c.Sender() != nil && b.cfg.Bot.IsAdmin(c.Sender().ID)
}

func (b *Bot) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// ── /start ────────────────────────────────────────────────────────────

func (b *Bot) handleStart(c tele.Context) error {
	userID := c.Sender().ID
	if added, err := b.svc.Users.Add(userID); err != nil {
		b.logger.Error("Failed to register user", zap.Int64("user_id", userID), zap.Error(err))
	} else if added {
		b.logger.Info("New user", zap.Int64("user_id", userID))
	}

	admin := b.isAdmin(c)
	if admin {
		b.svc.Wizard.Cancel(c.Chat().ID)
	}

	ctx, cancel := b.requestContext()
	defer cancel()

	res := b.svc.Gate.Check(ctx, userID)
	if !res.Subscribed {
		return c.Send(textJoinPrompt, b.joinKeyboard(ctx, res.Missing))
	}

	if admin {
		return b.sendAdminPanel(c)
	}
	return c.Send(textWelcome)
}

func (b *Bot) handleAdmin(c tele.Context) error {
	if !b.isAdmin(c) {
		return c.Send(textNotAdmin)
	}
	b.svc.Wizard.Cancel(c.Chat().ID)
	return b.sendAdminPanel(c)
}

func (b *Bot) handleCancel(c tele.Context) error {
	if !b.isAdmin(c) {
		return nil
	}
	if !b.svc.Wizard.Cancel(c.Chat().ID) {
		return c.Send(textNothingToStop, adminPanelKeyboard())
	}
	return c.Send(textCancelled, adminPanelKeyboard())
}

// ── Text routing ──────────────────────────────────────────────────────

func (b *Bot) handleText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())

	if b.isAdmin(c) {
		if action, ok := wizard.ActionByLabel(text); ok {
			return b.runAction(c, action)
		}
		if _, ok := b.svc.Wizard.Active(c.Chat().ID); ok {
			return b.feedWizard(c, wizard.Input{Text: text})
		}
	}

	if catalog.IsLookupCode(text) {
		return b.handleLookup(c, text)
	}
	if b.isAdmin(c) {
		return c.Send(textUseMenu, adminPanelKeyboard())
	}
	return c.Send(textSendCode)
}

func (b *Bot) handleVideo(c tele.Context) error {
	if !b.isAdmin(c) {
		return nil
	}
	if _, ok := b.svc.Wizard.Active(c.Chat().ID); !ok {
		return c.Send(fmt.Sprintf("ℹ️ Avval «%s» tugmasini bosing.", wizard.ActionAddMovie.Label()))
	}
	video := c.Message().Video
	if video == nil {
		return nil
	}
	return b.feedWizard(c, wizard.Input{VideoFileID: video.FileID})
}

// handleLookup answers a movie code once the sender passes the gate.
func (b *Bot) handleLookup(c tele.Context, code string) error {
	ctx, cancel := b.requestContext()
	defer cancel()

	if !b.svc.Gate.IsSubscribed(ctx, c.Sender().ID) {
		channels, err := b.svc.Channels.List()
		if err != nil {
			b.logger.Error("Failed to list channels", zap.Error(err))
		}
		return c.Send(textJoinPrompt, b.joinKeyboard(ctx, channels))
	}

	movie, found, err := b.svc.Catalog.Get(code)
	if err != nil {
		b.logger.Error("Movie lookup failed", zap.String("code", code), zap.Error(err))
		return c.Send(textMovieNotFound)
	}
	if !found {
		return c.Send(textMovieNotFound)
	}

	return c.Send(&tele.Video{
		File:    tele.File{FileID: movie.FileID},
		Caption: catalog.Caption(movie),
	})
}

// ── Callbacks ─────────────────────────────────────────────────────────

func (b *Bot) handleCallback(c tele.Context) error {
	data := strings.TrimPrefix(c.Callback().Data, "\f")

	switch {
	case data == callbackCheckSub:
		return b.handleCheckSub(c)

	case strings.HasPrefix(data, wizard.CallbackPrefix):
		if !b.isAdmin(c) {
			return c.Respond(&tele.CallbackResponse{Text: textNotAdmin})
		}
		_ = c.Respond()
		action, ok := wizard.ActionByCallback(data)
		if !ok {
			return nil
		}
		return b.runAction(c, action)

	case strings.HasPrefix(data, callbackRemoveChannel):
		if !b.isAdmin(c) {
			return c.Respond(&tele.CallbackResponse{Text: textNotAdmin})
		}
		_ = c.Respond()
		b.svc.Wizard.Cancel(c.Chat().ID)
		return b.removeChannel(c, strings.TrimPrefix(data, callbackRemoveChannel))
	}

	return c.Respond()
}

func (b *Bot) handleCheckSub(c tele.Context) error {
	ctx, cancel := b.requestContext()
	defer cancel()

	res := b.svc.Gate.Check(ctx, c.Sender().ID)
	if !res.Subscribed {
		return c.Respond(&tele.CallbackResponse{Text: textJoinStill, ShowAlert: true})
	}

	_ = c.Respond(&tele.CallbackResponse{Text: textJoinOK})
	if b.isAdmin(c) {
		return b.sendAdminPanel(c)
	}
	return c.Send(textWelcome)
}
