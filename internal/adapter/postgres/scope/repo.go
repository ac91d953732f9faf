// Package scope persists the chat/topic scope binding in the settings table.
package scope

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/guildqueue/internal/adapter/postgres"
	"github.com/heartmarshall/guildqueue/internal/domain"
)

const (
	table       = "settings"
	keyChatID   = "scope_chat_id"
	topicPrefix = "scope_topic_"
)

// Repo stores the scope binding as key/value settings rows.
type Repo struct {
	db postgres.Querier
}

// New creates a new scope repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type setting struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// Load reads the binding. Missing or empty keys are unbound.
func (r *Repo) Load(ctx context.Context) (domain.ScopeBinding, error) {
	query, args, err := postgres.Builder().
		Select("key", "value").
		From(table).
		Where(sq.Like{"key": "scope_%"}).
		ToSql()
	if err != nil {
		return domain.ScopeBinding{}, fmt.Errorf("scope build query: %w", err)
	}

	var rows []setting
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return domain.ScopeBinding{}, postgres.MapError(err, "settings", "scope")
	}

	b := domain.ScopeBinding{Topics: map[domain.ScopeRole]int{}}
	for _, s := range rows {
		v := strings.TrimSpace(s.Value)
		if v == "" {
			continue
		}
		switch {
		case s.Key == keyChatID:
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return domain.ScopeBinding{}, fmt.Errorf("settings %s: parse %q: %w", s.Key, v, err)
			}
			b.ChatID = &id
		case strings.HasPrefix(s.Key, topicPrefix):
			role := domain.ScopeRole(strings.TrimPrefix(s.Key, topicPrefix))
			if !role.IsValid() {
				continue
			}
			id, err := strconv.Atoi(v)
			if err != nil {
				return domain.ScopeBinding{}, fmt.Errorf("settings %s: parse %q: %w", s.Key, v, err)
			}
			b.Topics[role] = id
		}
	}
	return b, nil
}

// Save writes every scope key. Unbound roles are stored as empty values.
func (r *Repo) Save(ctx context.Context, b domain.ScopeBinding) error {
	chat := ""
	if b.ChatID != nil {
		chat = strconv.FormatInt(*b.ChatID, 10)
	}

	insert := postgres.Builder().
		Insert(table).
		Columns("key", "value").
		Values(keyChatID, chat)
	for _, role := range domain.ScopeRoles {
		v := ""
		if id, ok := b.Topic(role); ok {
			v = strconv.Itoa(id)
		}
		insert = insert.Values(topicPrefix+role.String(), v)
	}

	query, args, err := insert.
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("scope build upsert: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "settings", "scope")
	}
	return nil
}
