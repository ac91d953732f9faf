package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	Database  DatabaseConfig  `yaml:"database"`
	Guild     GuildConfig     `yaml:"guild"`
	Selection SelectionConfig `yaml:"selection"`
	Server    ServerConfig    `yaml:"server"`
	Admin     AdminConfig     `yaml:"admin"`
	Log       LogConfig       `yaml:"log"`
}

// Bot update delivery modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Tabular store backends for the auction sheet.
const (
	BackendPostgres = "postgres"
	BackendGoogle   = "google"
	BackendMemory   = "memory"
)

// TelegramConfig holds chat transport settings.
type TelegramConfig struct {
	Token           string        `yaml:"token"            env:"BOT_TOKEN"                 env-required:"true"`
	Mode            string        `yaml:"mode"             env:"TELEGRAM_MODE"             env-default:"polling"`
	WebhookURL      string        `yaml:"webhook_url"      env:"TELEGRAM_WEBHOOK_URL"`
	WebhookPath     string        `yaml:"webhook_path"     env:"TELEGRAM_WEBHOOK_PATH"     env-default:"/telegram/webhook"`
	WebhookSecret   string        `yaml:"webhook_secret"   env:"TELEGRAM_WEBHOOK_SECRET"`
	EphemeralTTL    time.Duration `yaml:"ephemeral_ttl"    env:"TELEGRAM_EPHEMERAL_TTL"    env-default:"30s"`
	StartupAnnounce bool          `yaml:"startup_announce" env:"STARTUP_ANNOUNCE"          env-default:"false"`
}

// SheetsConfig holds tabular store settings.
type SheetsConfig struct {
	Backend         string        `yaml:"backend"          env:"SHEETS_BACKEND"        env-default:"postgres"`
	SpreadsheetID   string        `yaml:"spreadsheet_id"   env:"GSHEET_ID"`
	CredentialsJSON string        `yaml:"credentials_json" env:"GOOGLE_CREDENTIALS"`
	AuctionSheet    string        `yaml:"auction_sheet"    env:"SHEETS_AUCTION_SHEET"  env-default:"Аукцион"`
	LogSheet        string        `yaml:"log_sheet"        env:"SHEETS_LOG_SHEET"      env-default:"Логи"`
	DefaultItemsRaw string        `yaml:"default_items"    env:"SHEETS_DEFAULT_ITEMS"  env-default:"Булла_Ред,Клеймо,Галун"`
	Timeout         time.Duration `yaml:"timeout"          env:"SHEETS_TIMEOUT"        env-default:"10s"`
}

// DefaultItems returns the items seeded into an empty auction sheet.
func (c SheetsConfig) DefaultItems() []string {
	return ParseList(c.DefaultItemsRaw)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// GuildConfig holds the static privilege configuration.
type GuildConfig struct {
	// LeaderID is either "@handle" or a numeric Telegram user id.
	LeaderID string `yaml:"leader_id" env:"LEADER_ID"`
	// OfficersRaw is a comma-separated list of "@handle" entries.
	OfficersRaw string `yaml:"officers" env:"OFFICERS"`
}

// Officers returns the configured officer handles.
func (c GuildConfig) Officers() []string {
	return ParseList(c.OfficersRaw)
}

// SelectionConfig holds multi-select session settings.
type SelectionConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"   env:"SELECTION_IDLE_TIMEOUT"   env-default:"15m"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SELECTION_SWEEP_INTERVAL" env-default:"1m"`
}

// ServerConfig holds HTTP server settings (health, metrics, admin, webhook).
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// AdminConfig holds admin API token settings. An empty secret disables
// the admin endpoints.
type AdminConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"ADMIN_JWT_SECRET"`
	JWTIssuer string        `yaml:"jwt_issuer" env:"ADMIN_JWT_ISSUER" env-default:"guildqueue"`
	TokenTTL  time.Duration `yaml:"token_ttl"  env:"ADMIN_TOKEN_TTL"  env-default:"24h"`
}

// Enabled reports whether the admin API is configured.
func (c AdminConfig) Enabled() bool {
	return c.JWTSecret != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// ParseList splits a comma-separated list, trimming blanks and dropping
// empty entries. An empty string returns a nil slice.
func ParseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
