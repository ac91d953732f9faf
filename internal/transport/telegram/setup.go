package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/heartmarshall/guildqueue/internal/domain"
	"github.com/heartmarshall/guildqueue/internal/service/router"
)

// announceRoles are the topics that receive the startup message, in order.
var announceRoles = []struct {
	role  domain.ScopeRole
	label string
}{
	{domain.ScopeInfo, "инфо"},
	{domain.ScopeAuction, "аукцион"},
	{domain.ScopeNews, "новости"},
}

// RegisterCommands publishes the command menu for group chats.
func (t *Transport) RegisterCommands(ctx context.Context, api botAPI) error {
	menu := router.Menu()
	cmds := make([]models.BotCommand, 0, len(menu))
	for _, e := range menu {
		cmds = append(cmds, models.BotCommand{Command: e.Command, Description: e.Description})
	}

	if _, err := api.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: cmds,
		Scope:    &models.BotCommandScopeAllGroupChats{},
	}); err != nil {
		return fmt.Errorf("set my commands: %w", err)
	}
	t.log.InfoContext(ctx, "command menu registered", slog.Int("commands", len(cmds)))
	return nil
}

// Announce posts a startup message into every bound info, auction and news
// topic. Failures are logged and skipped. It returns the number of
// messages sent.
func (t *Transport) Announce(ctx context.Context, api botAPI, b domain.ScopeBinding) int {
	if b.ChatID == nil {
		return 0
	}

	sent := 0
	for _, r := range announceRoles {
		topic, ok := b.Topic(r.role)
		if !ok {
			continue
		}
		_, err := api.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:          *b.ChatID,
			MessageThreadID: topic,
			Text:            fmt.Sprintf("✅ Бот запущен (%s).", r.label),
		})
		if err != nil {
			t.log.WarnContext(ctx, "startup announce",
				slog.String("role", r.role.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		sent++
	}
	return sent
}
