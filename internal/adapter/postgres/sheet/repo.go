// Package sheet is a tabular store that keeps each sheet as a JSONB matrix
// row in PostgreSQL.
package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/guildqueue/internal/adapter/postgres"
	"github.com/heartmarshall/guildqueue/internal/domain"
)

const table = "sheets"

// Repo implements the tabular store over the sheets table.
type Repo struct {
	db postgres.Querier
}

// New creates a new sheet repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ReadMatrix returns the stored cells of sheet. It returns domain.ErrNotFound
// when the sheet does not exist.
func (r *Repo) ReadMatrix(ctx context.Context, sheet string) ([][]string, error) {
	query, args, err := postgres.Builder().
		Select("cells").
		From(table).
		Where("name = ?", sheet).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sheet build query: %w", err)
	}

	var raw []byte
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		return nil, postgres.MapError(err, "sheet", sheet)
	}

	var rows [][]string
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("sheet %s: decode cells: %w", sheet, err)
	}
	return rows, nil
}

// WriteMatrix replaces the whole content of sheet, creating it when absent.
func (r *Repo) WriteMatrix(ctx context.Context, sheet string, rows [][]string) error {
	if rows == nil {
		rows = [][]string{}
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("sheet %s: encode cells: %w", sheet, err)
	}

	query, args, err := postgres.Builder().
		Insert(table).
		Columns("name", "cells").
		Values(sheet, raw).
		Suffix("ON CONFLICT (name) DO UPDATE SET cells = EXCLUDED.cells, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("sheet build upsert: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "sheet", sheet)
	}
	return nil
}

// ListSheets returns sheet names in alphabetical order.
func (r *Repo) ListSheets(ctx context.Context) ([]string, error) {
	query, args, err := postgres.Builder().
		Select("name").
		From(table).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sheet build query: %w", err)
	}

	var names []string
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &names, query, args...); err != nil {
		return nil, postgres.MapError(err, "sheet", "*")
	}
	return names, nil
}

// CreateSheet adds an empty sheet. It returns domain.ErrAlreadyExists when
// the name is taken.
func (r *Repo) CreateSheet(ctx context.Context, sheet string) error {
	query, args, err := postgres.Builder().
		Insert(table).
		Columns("name").
		Values(sheet).
		Suffix("ON CONFLICT (name) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("sheet build insert: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "sheet", sheet)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sheet %s: %w", sheet, domain.ErrAlreadyExists)
	}
	return nil
}

// Ping checks that the sheets table is reachable.
func (r *Repo) Ping(ctx context.Context) error {
	var one int
	err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, "SELECT 1 FROM sheets LIMIT 1").Scan(&one)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return postgres.MapError(err, "sheet", "ping")
	}
	return nil
}
