package bootstrap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinobot/internal/config"
	"kinobot/internal/models"
	"kinobot/internal/repository"
	"kinobot/internal/storage"
)

func TestImportReposFromJSON(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	src, err := repository.NewJSONRepos(store)
	require.NoError(t, err)

	for _, id := range []int64{3, 1, 2} {
		_, err := src.User.Add(id)
		require.NoError(t, err)
	}
	require.NoError(t, src.Movie.Put(&models.Movie{Code: "9", Title: "Matrix", FileID: "m"}))
	require.NoError(t, src.Movie.Put(&models.Movie{Code: "1", Title: "Up", FileID: "u"}))
	_, err = src.Channel.Add(&models.Channel{ID: "@kino", Kind: models.ChannelPublic})
	require.NoError(t, err)
	_, err = src.Channel.Add(&models.Channel{ID: "-1001", Kind: models.ChannelPrivate})
	require.NoError(t, err)
	require.NoError(t, src.InviteLink.Put("-1001", "https://t.me/+x"))

	db, err := config.NewDatabase(&config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "kinobot.db"),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	dst := repository.NewGormRepos(db)
	_, err = dst.User.Add(2)
	require.NoError(t, err)

	stats, err := ImportRepos(src, dst)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Users: 2, Movies: 2, Channels: 2, InviteLinks: 1}, stats)

	ids, err := dst.User.IDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	movies, err := dst.Movie.List()
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "9", movies[0].Code)
	assert.Equal(t, "1", movies[1].Code)

	channels, err := dst.Channel.List()
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "@kino", channels[0].ID)
	assert.Equal(t, models.ChannelPrivate, channels[1].Kind)

	url, err := dst.InviteLink.Get("-1001")
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/+x", url)

	// A second import is idempotent for users and channels.
	stats, err = ImportRepos(src, dst)
	require.NoError(t, err)
	assert.Zero(t, stats.Users)
	assert.Zero(t, stats.Channels)
}

func TestMigrateIsRepeatable(t *testing.T) {
	db, err := config.NewDatabase(&config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "kinobot.db"),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&models.Movie{}))
}
