package router

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"kinobot/internal/middleware"
)

// Options carries what the routes need from the rest of the process.
type Options struct {
	Logger *zap.Logger
	// BotToken guards the POST /<token> webhook route.
	BotToken       string
	WebhookIPCheck bool
	Deduper        middleware.UpdateDeduper
	// Webhook receives Telegram updates. Nil in long-polling mode.
	Webhook http.Handler
}

// Setup configures all routes for the Echo server.
func Setup(e *echo.Echo, opts Options) {
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(opts.Logger))

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Bot is running")
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if opts.Webhook == nil {
		opts.Logger.Info("Telegram webhook routes disabled (bot update mode is polling)")
		return
	}

	guards := []echo.MiddlewareFunc{}
	if opts.WebhookIPCheck {
		guards = append(guards, middleware.TelegramIPCheck())
	}
	guards = append(guards, middleware.TelegramUpdateDedup(opts.Deduper, opts.Logger))

	hook := webhookHandler(opts.Webhook)
	e.POST("/bot/webhook", hook, guards...)

	tokenGuards := append([]echo.MiddlewareFunc{requireToken(opts.BotToken)}, guards...)
	e.POST("/:token", hook, tokenGuards...)
	// Older deployments registered this path.
	e.POST("/webhook/:token", hook, tokenGuards...)
}

func requireToken(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token == "" || subtle.ConstantTimeCompare([]byte(c.Param("token")), []byte(token)) != 1 {
				return echo.ErrNotFound
			}
			return next(c)
		}
	}
}

// webhookHandler hands the update to telebot and acknowledges with "ok".
func webhookHandler(h http.Handler) echo.HandlerFunc {
	return func(c echo.Context) error {
		h.ServeHTTP(c.Response(), c.Request())
		if c.Response().Committed {
			return nil
		}
		return c.String(http.StatusOK, "ok")
	}
}
