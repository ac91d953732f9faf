package sheet

import (
	"context"
	"errors"
	"testing"

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

func TestRepo_ReadMatrix(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT cells FROM sheets WHERE name = \$1`).
		WithArgs("Аукцион").
		WillReturnRows(pgxmock.NewRows([]string{"cells"}).
			AddRow([]byte(`[["Клеймо","Галун"],["Rune",""]]`)))

	got, err := repo.ReadMatrix(context.Background(), "Аукцион")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Клеймо", "Галун"}, {"Rune", ""}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_ReadMatrix_NotFound(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT cells FROM sheets`).WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	_, err := repo.ReadMatrix(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_WriteMatrix(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)

	mock.ExpectExec(`INSERT INTO sheets \(name,cells\) VALUES \(\$1,\$2\) ON CONFLICT \(name\) DO UPDATE`).
		WithArgs("Аукцион", []byte(`[["Клеймо"],["Rune"]]`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.WriteMatrix(context.Background(), "Аукцион", [][]string{{"Клеймо"}, {"Rune"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_WriteMatrix_Error(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)
	boom := errors.New("timeout")

	mock.ExpectExec(`INSERT INTO sheets`).WillReturnError(boom)

	err := repo.WriteMatrix(context.Background(), "Аукцион", nil)
	require.ErrorIs(t, err, boom)
}

func TestRepo_ListSheets(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT name FROM sheets ORDER BY name`).
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("Аукцион").AddRow("Логи"))

	got, err := repo.ListSheets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Аукцион", "Логи"}, got)
}

func TestRepo_CreateSheet(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()
		repo, mock := newRepo(t)
		mock.ExpectExec(`INSERT INTO sheets \(name\) VALUES \(\$1\) ON CONFLICT \(name\) DO NOTHING`).
			WithArgs("Аукцион").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.CreateSheet(context.Background(), "Аукцион"))
	})

	t.Run("exists", func(t *testing.T) {
		t.Parallel()
		repo, mock := newRepo(t)
		mock.ExpectExec(`INSERT INTO sheets`).
			WithArgs("Аукцион").
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		err := repo.CreateSheet(context.Background(), "Аукцион")
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
	})
}
