// Package member persists guild member profiles in PostgreSQL.
package member

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/guildqueue/internal/adapter/postgres"
	"github.com/heartmarshall/guildqueue/internal/domain"
)

const table = "members"

var columns = []string{"id", "handle", "nick", "previous_nicks", "created_at", "updated_at"}

// Repo provides member persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new member repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID            int64     `db:"id"`
	Handle        string    `db:"handle"`
	Nick          string    `db:"nick"`
	PreviousNicks []string  `db:"previous_nicks"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r row) toDomain() *domain.Member {
	prev := r.PreviousNicks
	if prev == nil {
		prev = []string{}
	}
	return &domain.Member{
		ID:            r.ID,
		Handle:        r.Handle,
		Nick:          r.Nick,
		PreviousNicks: prev,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns the member with the given Telegram user id.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	query, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("member build query: %w", err)
	}

	var out row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, query, args...); err != nil {
		return nil, postgres.MapError(err, "member", id)
	}
	return out.toDomain(), nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Upsert inserts a member without a nick on first contact, or refreshes the
// stored handle of an existing one. It returns the current row.
func (r *Repo) Upsert(ctx context.Context, id int64, handle string) (*domain.Member, error) {
	query, args, err := postgres.Builder().
		Insert(table).
		Columns("id", "handle").
		Values(id, handle).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			handle = EXCLUDED.handle,
			updated_at = CASE WHEN members.handle = EXCLUDED.handle THEN members.updated_at ELSE now() END
			RETURNING id, handle, nick, previous_nicks, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("member build upsert: %w", err)
	}

	var out row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, query, args...); err != nil {
		return nil, postgres.MapError(err, "member", id)
	}
	return out.toDomain(), nil
}

// UpdateNick stores a new nick together with the full nick history.
func (r *Repo) UpdateNick(ctx context.Context, id int64, nick string, previous []string) (*domain.Member, error) {
	if previous == nil {
		previous = []string{}
	}

	query, args, err := postgres.Builder().
		Update(table).
		Set("nick", nick).
		Set("previous_nicks", previous).
		Set("updated_at", sq.Expr("now()")).
		Where("id = ?", id).
		Suffix("RETURNING id, handle, nick, previous_nicks, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("member build update: %w", err)
	}

	var out row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, query, args...); err != nil {
		return nil, postgres.MapError(err, "member", id)
	}
	return out.toDomain(), nil
}
