// Package channel manages the list of channels users must join before the
// catalog opens up to them.
package channel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"kinobot/internal/models"
	"kinobot/internal/repository"
)

// FallbackURL is used for join buttons whose invite link cannot be resolved.
const FallbackURL = "https://t.me/"

// ErrInvalidID is returned for text that is neither an @username nor a -100… chat id.
var ErrInvalidID = errors.New("channel must be an @username or a -100… id")

// LinkExporter resolves an invite link for a private chat.
type LinkExporter interface {
	ExportChatInviteLink(ctx context.Context, chatID string) (string, error)
}

// Registry is the ordered channel list plus the invite link cache.
type Registry struct {
	channels repository.ChannelStore
	links    repository.InviteLinkStore
	exporter LinkExporter
	logger   *zap.Logger
}

func NewRegistry(channels repository.ChannelStore, links repository.InviteLinkStore, exporter LinkExporter, logger *zap.Logger) *Registry {
	return &Registry{
		channels: channels,
		links:    links,
		exporter: exporter,
		logger:   logger,
	}
}

// ParseID validates admin input and returns the normalized channel id.
func ParseID(text string) (string, error) {
	id := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(id, "@"):
		name := id[1:]
		if name == "" || strings.ContainsAny(name, " \t\n/@") {
			return "", ErrInvalidID
		}
		return id, nil
	case strings.HasPrefix(id, "-100"):
		rest := id[4:]
		if rest == "" {
			return "", ErrInvalidID
		}
		for _, r := range rest {
			if r < '0' || r > '9' {
				return "", ErrInvalidID
			}
		}
		return id, nil
	}
	return "", ErrInvalidID
}

// Add registers a channel. It reports false when the id is already present.
func (r *Registry) Add(text string) (models.Channel, bool, error) {
	id, err := ParseID(text)
	if err != nil {
		return models.Channel{}, false, err
	}
	ch := models.Channel{ID: id, Kind: models.InferChannelKind(id)}
	added, err := r.channels.Add(&ch)
	if err != nil {
		return ch, false, fmt.Errorf("add channel %s: %w", id, err)
	}
	return ch, added, nil
}

// Remove drops a channel and reports whether it was registered.
func (r *Registry) Remove(id string) (bool, error) {
	return r.channels.Remove(strings.TrimSpace(id))
}

func (r *Registry) List() ([]models.Channel, error) {
	return r.channels.List()
}

// JoinURL returns the link a user follows to join ch. Private channel links
// are resolved once and cached; a failed resolution yields FallbackURL and
// is retried on the next call.
func (r *Registry) JoinURL(ctx context.Context, ch models.Channel) string {
	if url := ch.PublicURL(); url != "" {
		return url
	}

	url, err := r.links.Get(ch.ID)
	if err == nil {
		return url
	}
	if !errors.Is(err, repository.ErrNotFound) {
		r.logger.Warn("Failed to read cached invite link", zap.String("channel", ch.ID), zap.Error(err))
	}

	url, err = r.resolve(ctx, ch.ID)
	if err != nil {
		r.logger.Warn("Failed to resolve invite link", zap.String("channel", ch.ID), zap.Error(err))
		return FallbackURL
	}
	return url
}

// WarmInviteLinks resolves every private channel that has no cached link yet.
func (r *Registry) WarmInviteLinks(ctx context.Context) (int, error) {
	channels, err := r.channels.List()
	if err != nil {
		return 0, err
	}
	resolved := 0
	for _, ch := range channels {
		if ch.PublicURL() != "" {
			continue
		}
		if _, err := r.links.Get(ch.ID); err == nil {
			continue
		}
		if _, err := r.resolve(ctx, ch.ID); err != nil {
			r.logger.Debug("Invite link still unresolved", zap.String("channel", ch.ID), zap.Error(err))
			continue
		}
		resolved++
	}
	return resolved, nil
}

func (r *Registry) resolve(ctx context.Context, channelID string) (string, error) {
	if r.exporter == nil {
		return "", errors.New("no invite link exporter configured")
	}
	url, err := r.exporter.ExportChatInviteLink(ctx, channelID)
	if err != nil {
		return "", err
	}
	if url == "" {
		return "", errors.New("empty invite link")
	}
	if err := r.links.Put(channelID, url); err != nil {
		r.logger.Warn("Failed to cache invite link", zap.String("channel", channelID), zap.Error(err))
	}
	return url, nil
}
