// Package audit implements the append-only queue log using PostgreSQL.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/guildqueue/internal/adapter/postgres"
	"github.com/heartmarshall/guildqueue/internal/domain"
)

const table = "logs"

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	db  postgres.Querier
	now func() time.Time
}

// New creates a new audit repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db, now: time.Now}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Log appends one record. A zero At is stamped with the current time.
func (r *Repo) Log(ctx context.Context, rec domain.AuditRecord) error {
	if rec.At.IsZero() {
		rec.At = r.now().UTC()
	}

	query, args, err := postgres.Builder().
		Insert(table).
		Columns("at", "member_id", "nick", "action", "details").
		Values(rec.At, rec.MemberID, rec.Nick, string(rec.Action), rec.Details).
		ToSql()
	if err != nil {
		return fmt.Errorf("audit build insert: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "audit_record", rec.Action)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

type row struct {
	At       time.Time `db:"at"`
	MemberID int64     `db:"member_id"`
	Nick     string    `db:"nick"`
	Action   string    `db:"action"`
	Details  string    `db:"details"`
}

// Recent returns the newest records first, at most limit of them.
func (r *Repo) Recent(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query, args, err := postgres.Builder().
		Select("at", "member_id", "nick", "action", "details").
		From(table).
		OrderBy("at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("audit build query: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, "audit_record", "recent")
	}

	out := make([]domain.AuditRecord, 0, len(rows))
	for _, rw := range rows {
		out = append(out, domain.AuditRecord{
			At:       rw.At,
			MemberID: rw.MemberID,
			Nick:     rw.Nick,
			Action:   domain.AuditAction(rw.Action),
			Details:  rw.Details,
		})
	}
	return out, nil
}
