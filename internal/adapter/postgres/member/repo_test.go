package member

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

func newRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(mock), mock
}

func memberRows(now time.Time, nick string, prev []string) *pgxmock.Rows {
	return pgxmock.NewRows(columns).AddRow(int64(100), "rune_tg", nick, prev, now, now)
}

func TestRepo_GetByID(t *testing.T) {
	t.Parallel()
	now := time.Now()

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
		check   func(t *testing.T, m *domain.Member)
	}{
		{
			name: "found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, handle, nick, previous_nicks, created_at, updated_at FROM members WHERE id = \$1`).
					WithArgs(int64(100)).
					WillReturnRows(memberRows(now, "Rune", []string{"Runa"}))
			},
			check: func(t *testing.T, m *domain.Member) {
				assert.Equal(t, int64(100), m.ID)
				assert.Equal(t, "Rune", m.Nick)
				assert.Equal(t, []string{"Runa"}, m.PreviousNicks)
			},
		},
		{
			name: "not found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT`).WithArgs(int64(100)).WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo, mock := newRepo(t)
			tt.setup(mock)

			got, err := repo.GetByID(context.Background(), 100)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepo_Upsert(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO members \(id,handle\) VALUES \(\$1,\$2\) ON CONFLICT \(id\) DO UPDATE`).
		WithArgs(int64(100), "rune_tg").
		WillReturnRows(memberRows(now, "", []string{}))

	got, err := repo.Upsert(context.Background(), 100, "rune_tg")
	require.NoError(t, err)
	assert.Equal(t, "rune_tg", got.Handle)
	assert.False(t, got.IsRegistered())
	assert.NotNil(t, got.PreviousNicks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_UpdateNick(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`UPDATE members SET nick = \$1, previous_nicks = \$2, updated_at = now\(\) WHERE id = \$3 RETURNING`).
		WithArgs("Rune", []string{"Runa"}, int64(100)).
		WillReturnRows(memberRows(now, "Rune", []string{"Runa"}))

	got, err := repo.UpdateNick(context.Background(), 100, "Rune", []string{"Runa"})
	require.NoError(t, err)
	assert.Equal(t, "Rune", got.Nick)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_UpdateNick_DBError(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`UPDATE members`).WillReturnError(boom)

	_, err := repo.UpdateNick(context.Background(), 100, "Rune", nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "member 100")
}
