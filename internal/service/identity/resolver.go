// Package identity maps chat users to guild members and their roles.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

// MaxNickRunes bounds the length of a nick.
const MaxNickRunes = 32

type memberRepo interface {
	Upsert(ctx context.Context, id int64, handle string) (*domain.Member, error)
	UpdateNick(ctx context.Context, id int64, nick string, previous []string) (*domain.Member, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type queueBoard interface {
	Exclusive(ctx context.Context, fn func(ctx context.Context) error) error
	RenamePropagate(ctx context.Context, oldNick, newNick string) (int, error)
}

// Config lists the privileged members.
type Config struct {
	// LeaderID is either "@handle" or a numeric Telegram user id.
	LeaderID string
	// Officers are "@handle" entries.
	Officers []string
}

// Resolver resolves callers to members and roles.
type Resolver struct {
	members memberRepo
	tx      txManager
	board   queueBoard
	log     *slog.Logger

	leaderHandle string
	leaderID     int64
	officers     map[string]struct{}
}

// NewResolver creates a new identity resolver.
func NewResolver(log *slog.Logger, members memberRepo, tx txManager, board queueBoard, cfg Config) *Resolver {
	r := &Resolver{
		members:  members,
		tx:       tx,
		board:    board,
		log:      log.With("service", "identity"),
		officers: make(map[string]struct{}, len(cfg.Officers)),
	}

	leader := strings.TrimSpace(cfg.LeaderID)
	if strings.HasPrefix(leader, "@") {
		r.leaderHandle = strings.ToLower(leader)
	} else if id, err := strconv.ParseInt(leader, 10, 64); err == nil {
		r.leaderID = id
	}
	for _, o := range cfg.Officers {
		if o = strings.ToLower(strings.TrimSpace(o)); o != "" {
			r.officers[o] = struct{}{}
		}
	}
	return r
}

// NickChange is the result of ChangeNick.
type NickChange struct {
	Member    *domain.Member
	Old       string
	Rewritten int // queue entries renamed
}

// Changed reports whether the nick actually changed.
func (c NickChange) Changed() bool {
	return c.Member != nil && c.Old != c.Member.Nick
}

// Resolve returns the member for caller, recording it on first contact and
// refreshing its handle.
func (r *Resolver) Resolve(ctx context.Context, caller domain.Caller) (*domain.Member, error) {
	m, err := r.members.Upsert(ctx, caller.ID, caller.Handle)
	if err != nil {
		return nil, fmt.Errorf("resolve member %d: %w", caller.ID, err)
	}
	return m, nil
}

// RequireNick returns the member's nick or ErrNotRegistered.
func RequireNick(m *domain.Member) (string, error) {
	if !m.IsRegistered() {
		return "", domain.ErrNotRegistered
	}
	return m.Nick, nil
}

// Role derives the caller's role from configuration.
func (r *Resolver) Role(caller domain.Caller) domain.Role {
	handle := ""
	if caller.Handle != "" {
		handle = "@" + strings.ToLower(caller.Handle)
	}
	if r.leaderHandle != "" && handle == r.leaderHandle {
		return domain.RoleLeader
	}
	if r.leaderID != 0 && caller.ID == r.leaderID {
		return domain.RoleLeader
	}
	if _, ok := r.officers[handle]; ok && handle != "" {
		return domain.RoleOfficer
	}
	return domain.RoleMember
}

// Actor builds the actor for a resolved member.
func (r *Resolver) Actor(caller domain.Caller, m *domain.Member) domain.Actor {
	a := domain.Actor{MemberID: caller.ID, Role: r.Role(caller)}
	if m != nil {
		a.Nick = m.Nick
	}
	return a
}

// ChangeNick registers or renames the caller. The profile update and the
// rename of the caller's queue entries share one transaction, and the queue
// board stays locked until it commits.
func (r *Resolver) ChangeNick(ctx context.Context, caller domain.Caller, nick string) (NickChange, error) {
	nick, err := ValidateNick(nick)
	if err != nil {
		return NickChange{}, err
	}

	var out NickChange
	err = r.board.Exclusive(ctx, func(ctx context.Context) error {
		return r.tx.RunInTx(ctx, func(ctx context.Context) error {
			m, err := r.members.Upsert(ctx, caller.ID, caller.Handle)
			if err != nil {
				return fmt.Errorf("change nick: load member: %w", err)
			}
			out = NickChange{Member: m, Old: m.Nick}
			if m.Nick == nick {
				return nil
			}

			previous := append([]string{}, m.PreviousNicks...)
			if m.Nick != "" {
				previous = append(previous, m.Nick)
			}
			updated, err := r.members.UpdateNick(ctx, caller.ID, nick, previous)
			if err != nil {
				return fmt.Errorf("change nick: update member: %w", err)
			}
			out.Member = updated

			if m.Nick != "" {
				n, err := r.board.RenamePropagate(ctx, m.Nick, nick)
				if err != nil {
					return fmt.Errorf("change nick: rename queue entries: %w", err)
				}
				out.Rewritten = n
			}
			return nil
		})
	})
	if err != nil {
		return NickChange{}, err
	}

	if out.Changed() {
		r.log.InfoContext(ctx, "nick changed",
			slog.Int64("member_id", caller.ID),
			slog.String("old", out.Old),
			slog.String("new", nick),
			slog.Int("rewritten", out.Rewritten),
		)
	}
	return out, nil
}

// ValidateNick normalizes a nick and checks its length.
func ValidateNick(nick string) (string, error) {
	nick = domain.NormalizeName(nick)
	if nick == "" {
		return "", domain.NewValidationError("nick", "required")
	}
	if utf8.RuneCountInString(nick) > MaxNickRunes {
		return "", domain.NewValidationError("nick", fmt.Sprintf("max %d characters", MaxNickRunes))
	}
	return nick, nil
}
