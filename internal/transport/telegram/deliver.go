package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"

	"github.com/heartmarshall/guildqueue/internal/config"
)

// Deliver receives updates in the configured mode and blocks until ctx is
// done. In webhook mode updates arrive through b.WebhookHandler, which the
// HTTP server mounts at cfg.WebhookPath.
func Deliver(ctx context.Context, b *bot.Bot, cfg config.TelegramConfig, log *slog.Logger) error {
	log = log.With("service", "telegram")

	switch cfg.Mode {
	case config.ModeWebhook:
		if _, err := b.SetWebhook(ctx, &bot.SetWebhookParams{
			URL:         cfg.WebhookURL,
			SecretToken: cfg.WebhookSecret,
		}); err != nil {
			return fmt.Errorf("set webhook: %w", err)
		}
		log.InfoContext(ctx, "receiving updates via webhook", slog.String("path", cfg.WebhookPath))
		b.StartWebhook(ctx)
	default:
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			return fmt.Errorf("delete webhook: %w", err)
		}
		log.InfoContext(ctx, "receiving updates via long polling")
		b.Start(ctx)
	}
	return nil
}
