package repository

import (
	"errors"

	"kinobot/internal/models"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// UserStore keeps the set of known chat ids.
type UserStore interface {
	// Add registers chatID and reports whether it was new.
	Add(chatID int64) (bool, error)
	IDs() ([]int64, error)
	Count() (int, error)
}

// MovieStore keeps movies keyed by code.
type MovieStore interface {
	// Put inserts or overwrites the movie with the same code.
	Put(movie *models.Movie) error
	Get(code string) (*models.Movie, error)
	// List returns movies in insertion order.
	List() ([]models.Movie, error)
	Delete(code string) (bool, error)
	Count() (int, error)
}

// ChannelStore keeps the ordered list of mandatory channels.
type ChannelStore interface {
	List() ([]models.Channel, error)
	// Add appends the channel and reports false when the id is already present.
	Add(ch *models.Channel) (bool, error)
	Remove(id string) (bool, error)
}

// InviteLinkStore caches resolved join links of private channels.
type InviteLinkStore interface {
	Get(channelID string) (string, error)
	Put(channelID, url string) error
}

// Repos bundles the stores used by the bot, the scheduler and the importer.
type Repos struct {
	User       UserStore
	Movie      MovieStore
	Channel    ChannelStore
	InviteLink InviteLinkStore
}
