// Package gate decides whether a user has joined every mandatory channel.
package gate

import (
	"context"

	"go.uber.org/zap"

	"kinobot/internal/models"
	"kinobot/internal/pkg/telegram"
)

// Member statuses reported by getChatMember.
const (
	StatusCreator       = "creator"
	StatusAdministrator = "administrator"
	StatusMember        = "member"
	StatusRestricted    = "restricted"
	StatusLeft          = "left"
	StatusKicked        = "kicked"
	StatusPending       = "pending"
)

// MemberChecker queries one user's membership in one chat.
type MemberChecker interface {
	GetChatMember(ctx context.Context, chatID string, userID int64) (*telegram.ChatMember, error)
}

// ChannelLister returns the configured mandatory channels.
type ChannelLister interface {
	List() ([]models.Channel, error)
}

// Result is the outcome of a full check.
type Result struct {
	Subscribed bool
	// Missing lists channels the user is not (or could not be confirmed) a member of.
	Missing []models.Channel
}

// Gate checks membership on every call; statuses are never cached.
type Gate struct {
	channels      ChannelLister
	checker       MemberChecker
	acceptPending bool
	logger        *zap.Logger
}

func New(channels ChannelLister, checker MemberChecker, acceptPending bool, logger *zap.Logger) *Gate {
	return &Gate{
		channels:      channels,
		checker:       checker,
		acceptPending: acceptPending,
		logger:        logger,
	}
}

// IsSubscribed reports whether userID is a member of every channel. It stops
// at the first channel that fails and treats query errors as not subscribed.
func (g *Gate) IsSubscribed(ctx context.Context, userID int64) bool {
	channels, err := g.channels.List()
	if err != nil {
		g.logger.Error("Failed to list channels for gate", zap.Error(err))
		return false
	}
	for _, ch := range channels {
		if !g.memberOf(ctx, ch, userID) {
			return false
		}
	}
	return true
}

// Check queries every channel and collects the ones still to join.
func (g *Gate) Check(ctx context.Context, userID int64) Result {
	channels, err := g.channels.List()
	if err != nil {
		g.logger.Error("Failed to list channels for gate", zap.Error(err))
		return Result{}
	}
	res := Result{Subscribed: true}
	for _, ch := range channels {
		if !g.memberOf(ctx, ch, userID) {
			res.Subscribed = false
			res.Missing = append(res.Missing, ch)
		}
	}
	return res
}

func (g *Gate) memberOf(ctx context.Context, ch models.Channel, userID int64) bool {
	member, err := g.checker.GetChatMember(ctx, ch.ID, userID)
	if err != nil {
		g.logger.Debug("Membership query failed",
			zap.String("channel", ch.ID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return false
	}
	return Accepts(member, g.acceptPending)
}

// Accepts reports whether a member record counts as subscribed.
func Accepts(member *telegram.ChatMember, acceptPending bool) bool {
	if member == nil {
		return false
	}
	switch member.Status {
	case StatusCreator, StatusAdministrator, StatusMember:
		return true
	case StatusRestricted:
		return member.IsMember
	case StatusPending:
		return acceptPending
	default:
		return false
	}
}
