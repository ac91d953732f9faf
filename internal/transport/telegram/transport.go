// Package telegram adapts Telegram Bot API updates to the command router.
package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/heartmarshall/guildqueue/internal/domain"
	"github.com/heartmarshall/guildqueue/internal/service/router"
	"github.com/heartmarshall/guildqueue/internal/service/scope"
	"github.com/heartmarshall/guildqueue/pkg/ctxutil"
)

// botAPI is the subset of the Bot API the transport calls.
type botAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	EditMessageReplyMarkup(ctx context.Context, params *bot.EditMessageReplyMarkupParams) (*models.Message, error)
	SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error)
}

var _ botAPI = (*bot.Bot)(nil)

type commandHandler interface {
	Handle(ctx context.Context, cmd router.Command) (router.Reply, bool)
	HandleButton(ctx context.Context, btn router.Button) router.ButtonAnswer
}

type recorder interface {
	Update(kind string)
	EphemeralDeleteFailed()
}

// Update kinds reported to the recorder.
const (
	kindMessage  = "message"
	kindCallback = "callback"
	kindOther    = "other"
)

const deleteTimeout = 10 * time.Second

// Transport turns updates into router calls and router replies into Bot API
// calls. It is safe for concurrent use.
type Transport struct {
	handler      commandHandler
	rec          recorder
	ephemeralTTL time.Duration
	log          *slog.Logger

	// afterFunc schedules ephemeral deletions.
	afterFunc func(d time.Duration, f func()) *time.Timer
}

// New creates a transport. A zero ephemeralTTL keeps ephemeral replies.
func New(log *slog.Logger, handler commandHandler, rec recorder, ephemeralTTL time.Duration) *Transport {
	return &Transport{
		handler:      handler,
		rec:          rec,
		ephemeralTTL: ephemeralTTL,
		log:          log.With("service", "telegram"),
		afterFunc:    time.AfterFunc,
	}
}

// OnUpdate is the bot.HandlerFunc for every incoming update.
func (t *Transport) OnUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	t.handle(ctx, b, update)
}

func (t *Transport) handle(ctx context.Context, api botAPI, update *models.Update) {
	ctx = ctxutil.WithRequestID(ctx, "tg-"+strconv.FormatInt(update.ID, 10))

	switch {
	case update.Message != nil:
		t.rec.Update(kindMessage)
		t.onMessage(ctx, api, update.Message)
	case update.CallbackQuery != nil:
		t.rec.Update(kindCallback)
		t.onCallback(ctx, api, update.CallbackQuery)
	default:
		t.rec.Update(kindOther)
	}
}

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

func (t *Transport) onMessage(ctx context.Context, api botAPI, msg *models.Message) {
	if msg.From == nil || msg.From.IsBot || msg.Text == "" {
		return
	}

	topic := topicID(msg)
	reply, ok := t.handler.Handle(ctx, router.Command{
		Caller:  caller(msg.From),
		Chat:    chat(msg.Chat),
		TopicID: topic,
		Text:    msg.Text,
	})
	if !ok || reply.Text == "" {
		return
	}

	params := &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		MessageThreadID: topic,
		Text:            reply.Text,
	}
	if reply.Keyboard != nil {
		params.ReplyMarkup = markup(reply.Keyboard)
	}

	sent, err := api.SendMessage(ctx, params)
	if err != nil {
		t.log.WarnContext(ctx, "send reply",
			slog.Int64("chat_id", msg.Chat.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	if reply.Ephemeral {
		t.expire(ctx, api, msg.Chat.ID, sent.ID)
	}
}

// expire deletes a sent message after the ephemeral TTL. The deletion runs
// detached from ctx; failures are only logged.
func (t *Transport) expire(ctx context.Context, api botAPI, chatID int64, messageID int) {
	if t.ephemeralTTL <= 0 {
		return
	}
	requestID := ctxutil.RequestIDFromCtx(ctx)

	t.afterFunc(t.ephemeralTTL, func() {
		ctx, cancel := context.WithTimeout(ctxutil.WithRequestID(context.Background(), requestID), deleteTimeout)
		defer cancel()

		if _, err := api.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: messageID}); err != nil {
			t.rec.EphemeralDeleteFailed()
			t.log.DebugContext(ctx, "delete ephemeral reply",
				slog.Int64("chat_id", chatID),
				slog.Int("message_id", messageID),
				slog.String("error", err.Error()),
			)
		}
	})
}

// ---------------------------------------------------------------------------
// Callback queries
// ---------------------------------------------------------------------------

func (t *Transport) onCallback(ctx context.Context, api botAPI, q *models.CallbackQuery) {
	var (
		c     models.Chat
		msgID int
		topic int
	)
	switch {
	case q.Message.Message != nil:
		c, msgID, topic = q.Message.Message.Chat, q.Message.Message.ID, topicID(q.Message.Message)
	case q.Message.InaccessibleMessage != nil:
		c = q.Message.InaccessibleMessage.Chat
	}

	ans := t.handler.HandleButton(ctx, router.Button{
		Caller:  caller(&q.From),
		Chat:    chat(c),
		TopicID: topic,
		Data:    q.Data,
	})

	if _, err := api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: q.ID,
		Text:            ans.Notice,
		ShowAlert:       ans.Alert,
	}); err != nil {
		t.log.DebugContext(ctx, "answer callback", slog.String("error", err.Error()))
	}

	if msgID == 0 {
		return
	}

	var err error
	switch {
	case ans.Text != "":
		params := &bot.EditMessageTextParams{ChatID: c.ID, MessageID: msgID, Text: ans.Text}
		if len(ans.Keyboard) > 0 {
			params.ReplyMarkup = markup(ans.Keyboard)
		}
		_, err = api.EditMessageText(ctx, params)
	case ans.Keyboard != nil:
		_, err = api.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
			ChatID:      c.ID,
			MessageID:   msgID,
			ReplyMarkup: markup(ans.Keyboard),
		})
	}
	if err != nil {
		level := slog.LevelWarn
		if strings.Contains(err.Error(), "message is not modified") {
			level = slog.LevelDebug
		}
		t.log.Log(ctx, level, "edit menu message",
			slog.Int64("chat_id", c.ID),
			slog.Int("message_id", msgID),
			slog.String("error", err.Error()),
		)
	}
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

func caller(u *models.User) domain.Caller {
	return domain.Caller{
		ID:          u.ID,
		Handle:      u.Username,
		DisplayName: strings.TrimSpace(u.FirstName + " " + u.LastName),
	}
}

func chat(c models.Chat) scope.Chat {
	return scope.Chat{
		ID:    c.ID,
		Group: c.Type == models.ChatTypeGroup || c.Type == models.ChatTypeSupergroup,
	}
}

// topicID is the forum topic of msg, 0 outside forum topics.
func topicID(msg *models.Message) int {
	if !msg.IsTopicMessage {
		return 0
	}
	return msg.MessageThreadID
}

func markup(rows [][]router.KeyButton) *models.InlineKeyboardMarkup {
	kb := make([][]models.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		out := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			out = append(out, models.InlineKeyboardButton{Text: b.Text, CallbackData: b.Data})
		}
		kb = append(kb, out)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: kb}
}
