// Package scope confines commands to the bound guild chat and its topics.
package scope

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

var (
	// ErrGroupOnly is returned for bind commands sent outside a group chat.
	ErrGroupOnly = fmt.Errorf("%w: group chat required", domain.ErrWrongChat)
	// ErrTopicRequired is returned for bind commands sent outside a forum topic.
	ErrTopicRequired = fmt.Errorf("%w: forum topic required", domain.ErrWrongChat)
)

type bindingStore interface {
	Load(ctx context.Context) (domain.ScopeBinding, error)
	Save(ctx context.Context, b domain.ScopeBinding) error
}

// Chat is where a command was sent.
type Chat struct {
	ID    int64
	Group bool // group or supergroup
}

// Gate holds the current scope binding in memory.
type Gate struct {
	store bindingStore
	log   *slog.Logger

	mu      sync.RWMutex
	binding domain.ScopeBinding

	// wmu serializes Bind and UnbindAll.
	wmu sync.Mutex
}

// NewGate creates an unscoped gate. Call Reload to pick up the stored binding.
func NewGate(log *slog.Logger, store bindingStore) *Gate {
	return &Gate{
		store:   store,
		log:     log.With("service", "scope"),
		binding: domain.ScopeBinding{Topics: map[domain.ScopeRole]int{}},
	}
}

// Allow reports whether an event from chatID/topicID may run a command of
// the given role. Topic 0 means the event is outside any topic.
func (g *Gate) Allow(chatID int64, topicID int, role domain.ScopeRole) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.binding.ChatID == nil {
		return true
	}
	if *g.binding.ChatID != chatID {
		return false
	}
	want, ok := g.binding.Topic(role)
	if !ok {
		return true
	}
	return want == topicID
}

// Binding returns a copy of the current binding.
func (g *Gate) Binding() domain.ScopeBinding {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.binding.Clone()
}

// Reload replaces the in-memory binding with the stored one.
func (g *Gate) Reload(ctx context.Context) error {
	b, err := g.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("scope reload: %w", err)
	}

	g.mu.Lock()
	g.binding = b.Clone()
	g.mu.Unlock()
	return nil
}

// Bind pins the bot to chat and binds role to topicID. Binding a different
// chat drops the topics of the previous one.
func (g *Gate) Bind(ctx context.Context, actor domain.Actor, chat Chat, topicID int, role domain.ScopeRole) (domain.ScopeBinding, error) {
	if !role.IsValid() {
		return domain.ScopeBinding{}, domain.NewValidationError("role", "unknown scope role")
	}
	if err := check(actor, chat); err != nil {
		return domain.ScopeBinding{}, err
	}
	if topicID == 0 {
		return domain.ScopeBinding{}, ErrTopicRequired
	}

	g.wmu.Lock()
	defer g.wmu.Unlock()

	next := g.Binding()
	if next.ChatID == nil || *next.ChatID != chat.ID {
		next = domain.ScopeBinding{ChatID: &chat.ID, Topics: map[domain.ScopeRole]int{}}
	}
	next.Topics[role] = topicID

	if err := g.save(ctx, next); err != nil {
		return domain.ScopeBinding{}, err
	}
	g.log.InfoContext(ctx, "scope bound",
		slog.Int64("actor_id", actor.MemberID),
		slog.Int64("chat_id", chat.ID),
		slog.Int("topic_id", topicID),
		slog.String("role", role.String()),
	)
	return next.Clone(), nil
}

// UnbindAll clears every topic binding and keeps the chat binding.
func (g *Gate) UnbindAll(ctx context.Context, actor domain.Actor, chat Chat) error {
	if err := check(actor, chat); err != nil {
		return err
	}

	g.wmu.Lock()
	defer g.wmu.Unlock()

	next := g.Binding()
	next.Topics = map[domain.ScopeRole]int{}
	if err := g.save(ctx, next); err != nil {
		return err
	}
	g.log.InfoContext(ctx, "scope topics unbound", slog.Int64("actor_id", actor.MemberID))
	return nil
}

func (g *Gate) save(ctx context.Context, b domain.ScopeBinding) error {
	if err := g.store.Save(ctx, b); err != nil {
		return fmt.Errorf("scope save: %w", err)
	}
	g.mu.Lock()
	g.binding = b.Clone()
	g.mu.Unlock()
	return nil
}

func check(actor domain.Actor, chat Chat) error {
	if !chat.Group {
		return ErrGroupOnly
	}
	if !actor.Role.IsPrivileged() {
		return fmt.Errorf("scope bind as %s: %w", actor.Role, domain.ErrForbidden)
	}
	return nil
}
