package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kinobot/internal/models"
	"kinobot/internal/storage"
)

func newJSONRepos(t *testing.T, dir string) *Repos {
	t.Helper()
	store, err := storage.New(dir)
	require.NoError(t, err)
	repos, err := NewJSONRepos(store)
	require.NoError(t, err)
	return repos
}

func newGormRepos(t *testing.T) *Repos {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "kinobot.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Movie{}, &models.Channel{}, &models.InviteLink{}))
	return NewGormRepos(db)
}

// eachBackend runs fn against every storage implementation.
func eachBackend(t *testing.T, fn func(t *testing.T, repos *Repos)) {
	t.Run("json", func(t *testing.T) { fn(t, newJSONRepos(t, t.TempDir())) })
	t.Run("gorm", func(t *testing.T) { fn(t, newGormRepos(t)) })
}

func TestUserStore(t *testing.T) {
	eachBackend(t, func(t *testing.T, repos *Repos) {
		added, err := repos.User.Add(30)
		require.NoError(t, err)
		assert.True(t, added)

		added, err = repos.User.Add(30)
		require.NoError(t, err)
		assert.False(t, added)

		_, err = repos.User.Add(10)
		require.NoError(t, err)

		ids, err := repos.User.IDs()
		require.NoError(t, err)
		assert.Equal(t, []int64{10, 30}, ids)

		n, err := repos.User.Count()
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestMovieStore(t *testing.T) {
	eachBackend(t, func(t *testing.T, repos *Repos) {
		_, err := repos.Movie.Get("7")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, repos.Movie.Put(&models.Movie{Code: "7", Title: "Inception", FileID: "a"}))
		require.NoError(t, repos.Movie.Put(&models.Movie{Code: "07", Title: "Up", FileID: "b"}))
		require.NoError(t, repos.Movie.Put(&models.Movie{Code: "7", Title: "Inception (2010)", FileID: "c"}))

		m, err := repos.Movie.Get("7")
		require.NoError(t, err)
		assert.Equal(t, "Inception (2010)", m.Title)
		assert.Equal(t, "c", m.FileID)

		list, err := repos.Movie.List()
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "7", list[0].Code)
		assert.Equal(t, "07", list[1].Code)

		deleted, err := repos.Movie.Delete("07")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repos.Movie.Delete("07")
		require.NoError(t, err)
		assert.False(t, deleted)

		n, err := repos.Movie.Count()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestChannelStore(t *testing.T) {
	eachBackend(t, func(t *testing.T, repos *Repos) {
		added, err := repos.Channel.Add(&models.Channel{ID: "@kino", Kind: models.ChannelPublic})
		require.NoError(t, err)
		assert.True(t, added)

		added, err = repos.Channel.Add(&models.Channel{ID: "@kino", Kind: models.ChannelPublic})
		require.NoError(t, err)
		assert.False(t, added)

		_, err = repos.Channel.Add(&models.Channel{ID: "-1001", Kind: models.ChannelPrivate})
		require.NoError(t, err)

		list, err := repos.Channel.List()
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "@kino", list[0].ID)
		assert.Equal(t, models.ChannelPrivate, list[1].Kind)

		removed, err := repos.Channel.Remove("@kino")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repos.Channel.Remove("@kino")
		require.NoError(t, err)
		assert.False(t, removed)
	})
}

func TestInviteLinkStore(t *testing.T) {
	eachBackend(t, func(t *testing.T, repos *Repos) {
		_, err := repos.InviteLink.Get("-1001")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, repos.InviteLink.Put("-1001", "https://t.me/+a"))
		require.NoError(t, repos.InviteLink.Put("-1001", "https://t.me/+b"))

		url, err := repos.InviteLink.Get("-1001")
		require.NoError(t, err)
		assert.Equal(t, "https://t.me/+b", url)
	})
}

func TestJSONStoresSurviveRestart(t *testing.T) {
	dir := t.TempDir()
	repos := newJSONRepos(t, dir)

	_, err := repos.User.Add(42)
	require.NoError(t, err)
	require.NoError(t, repos.Movie.Put(&models.Movie{Code: "9", Title: "Matrix", FileID: "m"}))
	require.NoError(t, repos.Movie.Put(&models.Movie{Code: "1", Title: "Up", FileID: "u"}))
	_, err = repos.Channel.Add(&models.Channel{ID: "@kino", Kind: models.ChannelPublic})
	require.NoError(t, err)
	require.NoError(t, repos.InviteLink.Put("-1001", "https://t.me/+x"))

	reopened := newJSONRepos(t, dir)

	ids, err := reopened.User.IDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, ids)

	movies, err := reopened.Movie.List()
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "9", movies[0].Code)
	assert.Equal(t, "1", movies[1].Code)

	channels, err := reopened.Channel.List()
	require.NoError(t, err)
	assert.Equal(t, []models.Channel{{ID: "@kino", Kind: models.ChannelPublic}}, channels)

	url, err := reopened.InviteLink.Get("-1001")
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/+x", url)
}

func TestJSONUserStoreReadsLegacyList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, storage.UsersFile), []byte(`[5, 3]`), 0o644))

	repos := newJSONRepos(t, dir)
	ids, err := repos.User.IDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, ids)
}

func TestJSONChannelStoreRewritesLegacyLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, storage.ChannelsFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"public":["@kino"],"private":["-1001"]}`), 0o644))

	repos := newJSONRepos(t, dir)
	store, ok := repos.Channel.(*JSONChannelStore)
	require.True(t, ok)
	assert.Equal(t, storage.ShapeSplit, store.ImportedFrom())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"@kino","type":"public"},{"id":"-1001","type":"private"}]`, string(raw))

	again := newJSONRepos(t, dir)
	assert.Equal(t, storage.ShapeEmpty, again.Channel.(*JSONChannelStore).ImportedFrom())
}

func TestJSONStoresTreatNullDocumentsAsEmpty(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{storage.UsersFile, storage.MoviesFile, storage.ChannelsFile, storage.InviteLinksFile} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("null"), 0o644))
	}

	repos := newJSONRepos(t, dir)

	require.NotPanics(t, func() {
		require.NoError(t, repos.InviteLink.Put("-1001", "https://t.me/+a"))
	})
	url, err := repos.InviteLink.Get("-1001")
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/+a", url)

	added, err := repos.User.Add(1)
	require.NoError(t, err)
	assert.True(t, added)
	require.NoError(t, repos.Movie.Put(&models.Movie{Code: "1", Title: "Up", FileID: "u"}))
	_, err = repos.Channel.Add(&models.Channel{ID: "@kino", Kind: models.ChannelPublic})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, storage.InviteLinksFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"-1001":"https://t.me/+a"}`, string(raw))
}

func TestJSONInviteLinkStoreZeroValuePut(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	s := &JSONInviteLinkStore{store: store}
	require.NoError(t, s.Put("-1001", "https://t.me/+z"))
	url, err := s.Get("-1001")
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/+z", url)
}
