// Package router turns chat commands and keyboard taps into calls on the
// identity, scope, selection and queue services and renders the replies.
package router

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/guildqueue/internal/domain"
	"github.com/heartmarshall/guildqueue/internal/service/identity"
	"github.com/heartmarshall/guildqueue/internal/service/scope"
	"github.com/heartmarshall/guildqueue/pkg/ctxutil"
)

type memberResolver interface {
	Resolve(ctx context.Context, caller domain.Caller) (*domain.Member, error)
	Actor(caller domain.Caller, m *domain.Member) domain.Actor
	ChangeNick(ctx context.Context, caller domain.Caller, nick string) (identity.NickChange, error)
}

type scopeGate interface {
	Allow(chatID int64, topicID int, role domain.ScopeRole) bool
	Bind(ctx context.Context, actor domain.Actor, chat scope.Chat, topicID int, role domain.ScopeRole) (domain.ScopeBinding, error)
	UnbindAll(ctx context.Context, actor domain.Actor, chat scope.Chat) error
}

type queueBoard interface {
	Join(ctx context.Context, item, nick string) (domain.JoinResult, error)
	JoinMany(ctx context.Context, items []string, nick string) []domain.BatchOutcome
	Leave(ctx context.Context, item, nick string) (domain.LeaveResult, error)
	LeaveAll(ctx context.Context, nick string) (domain.LeaveResult, error)
	LeaveMany(ctx context.Context, items []string, nick string) []domain.BatchOutcome
	Kick(ctx context.Context, actor domain.Actor, item, nick string) (domain.LeaveResult, error)
	Claim(ctx context.Context, actor domain.Actor, item, nick string) (domain.ClaimResult, error)
	ClaimMany(ctx context.Context, actor domain.Actor, items []string, nick string) []domain.BatchOutcome
	AddItem(ctx context.Context, actor domain.Actor, name string) (bool, error)
	RemoveItem(ctx context.Context, actor domain.Actor, name string) (bool, error)
	ListItems(ctx context.Context) ([]string, error)
	Queue(ctx context.Context, item string) ([]string, error)
	PositionsFor(ctx context.Context, nick string) ([]domain.ItemPosition, error)
}

type sessionManager interface {
	Start(memberID int64, flow domain.Flow, universe []string) uuid.UUID
	Toggle(memberID int64, flow domain.Flow, item string) (bool, error)
	Reset(memberID int64, flow domain.Flow) error
	View(memberID int64, flow domain.Flow) (domain.SelectionView, error)
	Confirm(memberID int64, flow domain.Flow) ([]string, error)
	Cancel(memberID int64, flow domain.Flow)
}

// Command is a text command received from a chat.
type Command struct {
	Caller  domain.Caller
	Chat    scope.Chat
	TopicID int // 0 outside forum topics
	Text    string
}

// Button is a tap on an inline keyboard button.
type Button struct {
	Caller  domain.Caller
	Chat    scope.Chat
	TopicID int
	Data    string
}

// KeyButton is one inline keyboard button.
type KeyButton struct {
	Text string
	Data string
}

// Reply is a message to send back to the chat the command came from.
// Ephemeral replies are deleted by the transport after a while.
type Reply struct {
	Text      string
	Keyboard  [][]KeyButton
	Ephemeral bool
}

// ButtonAnswer is the response to a button tap. Notice is shown as a toast
// (an alert when Alert is set). A non-empty Text replaces the message text
// and its keyboard with Keyboard; otherwise a non-nil Keyboard replaces
// only the keyboard.
type ButtonAnswer struct {
	Notice   string
	Alert    bool
	Text     string
	Keyboard [][]KeyButton
}

// Config holds router settings.
type Config struct {
	// BotUsername filters out commands addressed to other bots. Empty accepts any.
	BotUsername string
}

// Router dispatches chat events. It is safe for concurrent use.
type Router struct {
	members  memberResolver
	gate     scopeGate
	board    queueBoard
	sessions sessionManager
	cfg      Config
	log      *slog.Logger
}

// New creates a new router.
func New(log *slog.Logger, members memberResolver, gate scopeGate, board queueBoard, sessions sessionManager, cfg Config) *Router {
	return &Router{
		members:  members,
		gate:     gate,
		board:    board,
		sessions: sessions,
		cfg:      cfg,
		log:      log.With("service", "router"),
	}
}

// request is a resolved command being handled.
type request struct {
	Command
	args   string
	member *domain.Member
	actor  domain.Actor
}

// Handle runs a text command. ok is false when the event is ignored: not a
// command, addressed to another bot, or outside the command's scope.
func (r *Router) Handle(ctx context.Context, cmd Command) (Reply, bool) {
	spec, args, ok := parseCommand(cmd.Text, r.cfg.BotUsername)
	if !ok {
		return Reply{}, false
	}
	if spec.scope != "" && !r.gate.Allow(cmd.Chat.ID, cmd.TopicID, spec.scope) {
		r.log.DebugContext(ctx, "command out of scope",
			slog.String("command", string(spec.id)),
			slog.Int64("chat_id", cmd.Chat.ID),
			slog.Int("topic_id", cmd.TopicID),
		)
		return Reply{}, false
	}

	ctx = ctxutil.WithMemberID(ctx, cmd.Caller.ID)
	req := &request{Command: cmd, args: args}
	if spec.id != cmdHelp {
		m, err := r.members.Resolve(ctx, cmd.Caller)
		if err != nil {
			return r.failure(ctx, string(spec.id), err), true
		}
		req.member = m
		req.actor = r.members.Actor(cmd.Caller, m)
	}

	r.log.DebugContext(ctx, "command",
		slog.String("command", string(spec.id)),
		slog.Int64("member_id", cmd.Caller.ID),
		slog.String("role", req.actor.Role.String()),
	)
	return r.dispatch(ctx, spec, req), true
}

func (r *Router) dispatch(ctx context.Context, spec commandSpec, req *request) Reply {
	switch spec.id {
	case cmdHelp:
		return Reply{Text: txtHelp}
	case cmdNick:
		return r.nick(ctx, req)
	case cmdAuction:
		return r.startJoin(ctx, req)
	case cmdLeave:
		return r.leave(ctx, req)
	case cmdKick:
		return r.kick(ctx, req)
	case cmdClaim:
		return r.claim(ctx, req)
	case cmdAddItem:
		return r.addItem(ctx, req)
	case cmdRemoveItem:
		return r.removeItem(ctx, req)
	case cmdItems:
		return r.items(ctx, req)
	case cmdPositions:
		return r.positions(ctx, req)
	case cmdQueue:
		return r.queue(ctx, req)
	case cmdBindInfo, cmdBindAuk, cmdBindAbs, cmdBindNews:
		return r.bind(ctx, req, bindRoles[spec.id])
	case cmdUnbindAll:
		return r.unbindAll(ctx, req)
	}
	return Reply{Text: txtHelp}
}
