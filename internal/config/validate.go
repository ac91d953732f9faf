package config

import (
	"fmt"
	"strconv"
	"strings"
)

const maxCallbackItemBytes = 48

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return fmt.Errorf("telegram.token is required")
	}

	if err := c.Telegram.validate(); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	if err := c.Sheets.validate(); err != nil {
		return fmt.Errorf("sheets: %w", err)
	}

	if err := c.Guild.validate(); err != nil {
		return fmt.Errorf("guild: %w", err)
	}

	if c.Selection.IdleTimeout <= 0 {
		return fmt.Errorf("selection.idle_timeout must be > 0 (got %v)", c.Selection.IdleTimeout)
	}
	if c.Selection.SweepInterval <= 0 {
		return fmt.Errorf("selection.sweep_interval must be > 0 (got %v)", c.Selection.SweepInterval)
	}

	if c.Admin.Enabled() && len(c.Admin.JWTSecret) < 32 {
		return fmt.Errorf("admin.jwt_secret must be at least 32 characters (got %d)", len(c.Admin.JWTSecret))
	}

	return nil
}

func (t *TelegramConfig) validate() error {
	switch t.Mode {
	case ModePolling:
	case ModeWebhook:
		if !strings.HasPrefix(t.WebhookURL, "https://") {
			return fmt.Errorf("webhook_url must be an https URL in webhook mode (got %q)", t.WebhookURL)
		}
		if !strings.HasPrefix(t.WebhookPath, "/") {
			return fmt.Errorf("webhook_path must start with / (got %q)", t.WebhookPath)
		}
	default:
		return fmt.Errorf("mode must be %q or %q (got %q)", ModePolling, ModeWebhook, t.Mode)
	}
	if t.EphemeralTTL < 0 {
		return fmt.Errorf("ephemeral_ttl must be >= 0 (got %v)", t.EphemeralTTL)
	}
	return nil
}

func (s *SheetsConfig) validate() error {
	switch s.Backend {
	case BackendPostgres, BackendMemory:
	case BackendGoogle:
		if s.SpreadsheetID == "" {
			return fmt.Errorf("spreadsheet_id is required for the google backend")
		}
		if s.CredentialsJSON == "" {
			return fmt.Errorf("credentials_json is required for the google backend")
		}
	default:
		return fmt.Errorf("backend must be one of %s, %s, %s (got %q)",
			BackendPostgres, BackendGoogle, BackendMemory, s.Backend)
	}
	if strings.TrimSpace(s.AuctionSheet) == "" {
		return fmt.Errorf("auction_sheet is required")
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", s.Timeout)
	}
	for _, item := range s.DefaultItems() {
		if len(item) > maxCallbackItemBytes {
			return fmt.Errorf("default item %q is longer than %d bytes", item, maxCallbackItemBytes)
		}
	}
	return nil
}

func (g *GuildConfig) validate() error {
	id := strings.TrimSpace(g.LeaderID)
	if id != "" && !strings.HasPrefix(id, "@") {
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			return fmt.Errorf("leader_id must be @handle or a numeric id (got %q)", g.LeaderID)
		}
	}
	for _, o := range g.Officers() {
		if !strings.HasPrefix(o, "@") || len(o) < 2 {
			return fmt.Errorf("officer %q must be an @handle", o)
		}
	}
	return nil
}
