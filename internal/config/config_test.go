package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAdminIDs(t *testing.T) {
	tests := map[string][]int64{
		"":               nil,
		"123":            {123},
		" 1, 2 ,3":       {1, 2, 3},
		"1,,abc,-5":      {1, -5},
		"9999999999999,": {9999999999999},
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseAdminIDs(raw), "ParseAdminIDs(%q)", raw)
	}
}

func TestIsAdmin(t *testing.T) {
	b := BotConfig{AdminIDs: []int64{10, 20}}
	assert.True(t, b.IsAdmin(20))
	assert.False(t, b.IsAdmin(30))
	assert.False(t, (&BotConfig{}).IsAdmin(0))
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("BOT_ADMIN_ID", "5,6")
	t.Setenv("STORAGE_DRIVER", " SQLite ")
	t.Setenv("BROADCAST_RATE", "10")
	t.Setenv("BOT_WEBHOOK_IP_CHECK", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.Bot.Token)
	assert.Equal(t, []int64{5, 6}, cfg.Bot.AdminIDs)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 10.0, cfg.Broadcast.RatePerSecond)
	assert.True(t, cfg.Bot.WebhookIPCheck)
	assert.Equal(t, "https://api.telegram.org", cfg.Bot.APIURL)
	assert.Equal(t, "0 0 9 * * *", cfg.Cron.Report)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Pass: "p", Host: "db", Port: "3306", Name: "kino", Charset: "utf8mb4"}
	assert.Equal(t, "u:p@tcp(db:3306)/kino?charset=utf8mb4&parseTime=True&loc=Local", d.DSN())
}

func TestNewDatabaseSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kinobot.db")
	db, err := NewDatabase(&DatabaseConfig{Driver: "sqlite", SQLitePath: path})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())
	assert.FileExists(t, path)
	require.NoError(t, sqlDB.Close())
}

func TestNewDatabaseRejectsJSONDriver(t *testing.T) {
	_, err := NewDatabase(&DatabaseConfig{Driver: "json"})
	assert.Error(t, err)
}
