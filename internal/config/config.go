package config

import (
	"log"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Bot       BotConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Broadcast BroadcastConfig
	Gate      GateConfig
	Cron      CronConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type LogConfig struct {
	File string
}

type BotConfig struct {
	Token      string
	APIURL     string
	AdminIDs   []int64
	UpdateMode string // "polling", "webhook", "auto"
	WebhookURL string

	// WebhookSecret is registered with setWebhook and checked on every delivery.
	WebhookSecret string

	// WebhookIPCheck restricts webhook deliveries to Telegram's address ranges.
	WebhookIPCheck bool
}

type StorageConfig struct {
	Driver  string // "json", "mysql", "sqlite"
	DataDir string
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	Name       string
	User       string
	Pass       string
	Charset    string
	SQLitePath string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

type BroadcastConfig struct {
	RatePerSecond float64
}

type GateConfig struct {
	AcceptPending bool
}

type CronConfig struct {
	Report      string
	InviteLinks string
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("BOT_UPDATE_MODE", "auto")
	viper.SetDefault("BOT_API_URL", "https://api.telegram.org")
	viper.SetDefault("BOT_WEBHOOK_IP_CHECK", false)
	viper.SetDefault("STORAGE_DRIVER", "json")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("SQLITE_PATH", "data/kinobot.db")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("BROADCAST_RATE", 25)
	viper.SetDefault("GATE_ACCEPT_PENDING", false)
	viper.SetDefault("REPORT_CRON", "0 0 9 * * *")
	viper.SetDefault("INVITE_LINK_CRON", "0 */30 * * * *")

	driver := strings.ToLower(strings.TrimSpace(viper.GetString("STORAGE_DRIVER")))

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Log: LogConfig{
			File: viper.GetString("LOG_FILE"),
		},
		Bot: BotConfig{
			Token:      viper.GetString("BOT_TOKEN"),
			APIURL:     viper.GetString("BOT_API_URL"),
			AdminIDs:   ParseAdminIDs(viper.GetString("BOT_ADMIN_ID")),
			UpdateMode: viper.GetString("BOT_UPDATE_MODE"),
			WebhookURL: viper.GetString("BOT_WEBHOOK_URL"),

			WebhookSecret:  viper.GetString("BOT_WEBHOOK_SECRET"),
			WebhookIPCheck: viper.GetBool("BOT_WEBHOOK_IP_CHECK"),
		},
		Storage: StorageConfig{
			Driver:  driver,
			DataDir: viper.GetString("DATA_DIR"),
		},
		Database: DatabaseConfig{
			Driver:     driver,
			Host:       viper.GetString("DB_HOST"),
			Port:       viper.GetString("DB_PORT"),
			Name:       viper.GetString("DB_NAME"),
			User:       viper.GetString("DB_USER"),
			Pass:       viper.GetString("DB_PASS"),
			Charset:    viper.GetString("DB_CHARSET"),
			SQLitePath: viper.GetString("SQLITE_PATH"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		Broadcast: BroadcastConfig{
			RatePerSecond: viper.GetFloat64("BROADCAST_RATE"),
		},
		Gate: GateConfig{
			AcceptPending: viper.GetBool("GATE_ACCEPT_PENDING"),
		},
		Cron: CronConfig{
			Report:      viper.GetString("REPORT_CRON"),
			InviteLinks: viper.GetString("INVITE_LINK_CRON"),
		},
	}

	if cfg.Bot.Token == "" {
		log.Println("WARNING: BOT_TOKEN is not set")
	}
	if len(cfg.Bot.AdminIDs) == 0 {
		log.Println("WARNING: BOT_ADMIN_ID is not set, admin panel is disabled")
	}
	if cfg.Storage.Driver == "mysql" && cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}

	return cfg, nil
}

// ParseAdminIDs parses a comma separated list of chat ids, skipping junk.
func ParseAdminIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("WARNING: ignoring invalid admin id %q", part)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// IsAdmin reports whether chatID is one of the configured admins.
func (b *BotConfig) IsAdmin(chatID int64) bool {
	for _, id := range b.AdminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
