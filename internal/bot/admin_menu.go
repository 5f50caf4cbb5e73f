package bot

import (
	"context"
	"errors"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"kinobot/internal/wizard"
)

func (b *Bot) sendAdminPanel(c tele.Context) error {
	return c.Send(textAdminPanel, adminPanelKeyboard())
}

// sendLong sends text in as many messages as Telegram's length limit needs.
// Options such as keyboards go with the last message only.
func (b *Bot) sendLong(c tele.Context, text string, opts ...interface{}) error {
	chunks := splitMessage(text, maxMessageRunes)
	for i, chunk := range chunks {
		if i == len(chunks)-1 {
			return c.Send(chunk, opts...)
		}
		if err := c.Send(chunk); err != nil {
			return err
		}
	}
	return nil
}

// runAction executes one panel action for the admin in c.
func (b *Bot) runAction(c tele.Context, action wizard.Action) error {
	chatID := c.Chat().ID

	switch action {
	case wizard.ActionAddMovie, wizard.ActionDeleteMovie, wizard.ActionAddChannel, wizard.ActionBroadcast:
		s := b.svc.Wizard.Begin(chatID, action)
		return c.Send(promptText(s.Step()))

	case wizard.ActionRemoveChannel:
		channels, err := b.svc.Channels.List()
		if err != nil {
			b.logger.Error("Failed to list channels", zap.Error(err))
			return c.Send(textSaveFailed)
		}
		if len(channels) == 0 {
			b.svc.Wizard.Cancel(chatID)
			return c.Send(textNoChannels)
		}
		b.svc.Wizard.Begin(chatID, action)
		return b.sendLong(c, removeChannelPromptText(channels), channelRemoveKeyboard(channels))

	case wizard.ActionListMovies:
		b.svc.Wizard.Cancel(chatID)
		entries, err := b.svc.Catalog.List()
		if err != nil {
			b.logger.Error("Failed to list movies", zap.Error(err))
			return c.Send(textSaveFailed)
		}
		return b.sendLong(c, movieListText(entries), actionsKeyboard(wizard.ActionAddMovie, wizard.ActionDeleteMovie))

	case wizard.ActionListChannels:
		b.svc.Wizard.Cancel(chatID)
		channels, err := b.svc.Channels.List()
		if err != nil {
			b.logger.Error("Failed to list channels", zap.Error(err))
			return c.Send(textSaveFailed)
		}
		return b.sendLong(c, channelListText(channels), actionsKeyboard(wizard.ActionAddChannel, wizard.ActionRemoveChannel))

	case wizard.ActionStats:
		b.svc.Wizard.Cancel(chatID)
		return b.sendStats(c)

	case wizard.ActionCancel:
		if !b.svc.Wizard.Cancel(chatID) {
			return c.Send(textNothingToStop, adminPanelKeyboard())
		}
		return c.Send(textCancelled, adminPanelKeyboard())

	case wizard.ActionNone:
		return nil
	}

	b.logger.Warn("Unhandled admin action", zap.Stringer("action", action))
	return nil
}

func (b *Bot) feedWizard(c tele.Context, in wizard.Input) error {
	out := b.svc.Wizard.Feed(c.Chat().ID, in)

	switch {
	case out.Problem == wizard.ProblemNoSession:
		return c.Send(textUseMenu, adminPanelKeyboard())
	case out.Problem != wizard.ProblemNone:
		return c.Send(problemText(out.Problem))
	case out.Commit != nil:
		return b.applyCommit(c, out.Commit)
	default:
		return c.Send(promptText(out.Next.Step()))
	}
}

// applyCommit stores the record a finished form produced. The session is
// already closed, so failures are reported and the admin starts over.
func (b *Bot) applyCommit(c tele.Context, commit wizard.Commit) error {
	switch cm := commit.(type) {
	case wizard.MovieCommit:
		movie, err := b.svc.Catalog.Add(cm.Code, cm.Title, cm.FileID)
		if err != nil {
			b.logger.Error("Failed to save movie", zap.String("code", cm.Code), zap.Error(err))
			return c.Send(textSaveFailed)
		}
		b.logger.Info("Movie saved", zap.String("code", movie.Code), zap.Int64("admin_id", c.Sender().ID))
		return c.Send(movieAddedText(movie), adminPanelKeyboard())

	case wizard.DeleteMovieCommit:
		found, err := b.svc.Catalog.Remove(cm.Code)
		if err != nil {
			b.logger.Error("Failed to delete movie", zap.String("code", cm.Code), zap.Error(err))
			return c.Send(textSaveFailed)
		}
		return c.Send(movieDeletedText(cm.Code, found), adminPanelKeyboard())

	case wizard.ChannelAddCommit:
		ch, added, err := b.svc.Channels.Add(cm.ID)
		if err != nil {
			b.logger.Error("Failed to add channel", zap.String("channel", cm.ID), zap.Error(err))
			return c.Send(textSaveFailed)
		}
		if !added {
			return c.Send(textChannelDup, adminPanelKeyboard())
		}
		if ch.PublicURL() == "" {
			// Resolve the invite link now so the first join prompt does not wait on it.
			ctx, cancel := b.requestContext()
			_ = b.svc.Channels.JoinURL(ctx, ch)
			cancel()
		}
		return c.Send(channelAddedText(ch.ID), adminPanelKeyboard())

	case wizard.ChannelRemoveCommit:
		return b.removeChannel(c, cm.ID)

	case wizard.BroadcastCommit:
		_ = c.Send(textBroadcastGo)
		res, err := b.svc.Broadcast.Send(context.Background(), cm.Text)
		if err != nil {
			b.logger.Error("Broadcast failed", zap.Error(err))
			return c.Send(textSaveFailed)
		}
		return c.Send(broadcastDoneText(res.Delivered), adminPanelKeyboard())
	}

	return errors.New("unknown wizard commit")
}

func (b *Bot) removeChannel(c tele.Context, id string) error {
	removed, err := b.svc.Channels.Remove(id)
	if err != nil {
		b.logger.Error("Failed to remove channel", zap.String("channel", id), zap.Error(err))
		return c.Send(textSaveFailed)
	}
	if !removed {
		return c.Send(textChannelGone, adminPanelKeyboard())
	}
	return c.Send(channelRemovedText(id), adminPanelKeyboard())
}

func (b *Bot) sendStats(c tele.Context) error {
	text, err := b.Stats()
	if err != nil {
		b.logger.Error("Failed to collect stats", zap.Error(err))
		return c.Send(textSaveFailed)
	}
	return c.Send(text)
}

// Stats renders the current user, movie and channel counts.
func (b *Bot) Stats() (string, error) {
	users, err := b.svc.Users.Count()
	if err != nil {
		return "", err
	}
	movies, err := b.svc.Catalog.Count()
	if err != nil {
		return "", err
	}
	channels, err := b.svc.Channels.List()
	if err != nil {
		return "", err
	}
	return StatsText(users, movies, len(channels)), nil
}
