package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"kinobot/internal/models"
	"kinobot/internal/repository"
)

// Migrate ensures required tables exist.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

func allModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Movie{},
		&models.Channel{},
		&models.InviteLink{},
	}
}

// ImportStats counts rows copied by ImportRepos.
type ImportStats struct {
	Users       int
	Movies      int
	Channels    int
	InviteLinks int
}

// ImportRepos copies every record of src into dst. Existing users and
// channels are kept, movies with the same code are overwritten.
func ImportRepos(src, dst *repository.Repos) (ImportStats, error) {
	var stats ImportStats

	ids, err := src.User.IDs()
	if err != nil {
		return stats, fmt.Errorf("read users: %w", err)
	}
	for _, id := range ids {
		added, err := dst.User.Add(id)
		if err != nil {
			return stats, fmt.Errorf("import user %d: %w", id, err)
		}
		if added {
			stats.Users++
		}
	}

	movies, err := src.Movie.List()
	if err != nil {
		return stats, fmt.Errorf("read movies: %w", err)
	}
	for i := range movies {
		m := models.Movie{Code: movies[i].Code, Title: movies[i].Title, FileID: movies[i].FileID}
		if err := dst.Movie.Put(&m); err != nil {
			return stats, fmt.Errorf("import movie %s: %w", m.Code, err)
		}
		stats.Movies++
	}

	channels, err := src.Channel.List()
	if err != nil {
		return stats, fmt.Errorf("read channels: %w", err)
	}
	for i := range channels {
		ch := models.Channel{ID: channels[i].ID, Kind: channels[i].Kind}
		added, err := dst.Channel.Add(&ch)
		if err != nil {
			return stats, fmt.Errorf("import channel %s: %w", ch.ID, err)
		}
		if added {
			stats.Channels++
		}
		url, err := src.InviteLink.Get(ch.ID)
		if err != nil {
			continue
		}
		if err := dst.InviteLink.Put(ch.ID, url); err != nil {
			return stats, fmt.Errorf("import invite link %s: %w", ch.ID, err)
		}
		stats.InviteLinks++
	}

	return stats, nil
}
