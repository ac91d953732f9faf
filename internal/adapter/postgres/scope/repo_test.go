package scope

import (
	"context"
	"errors"
	"testing"

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

func TestRepo_Load(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT key, value FROM settings WHERE key LIKE \$1`).
		WithArgs("scope_%").
		WillReturnRows(pgxmock.NewRows([]string{"key", "value"}).
			AddRow("scope_chat_id", "-1001").
			AddRow("scope_topic_auction", "42").
			AddRow("scope_topic_info", "").
			AddRow("scope_topic_unknown", "9"))

	b, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, b.ChatID)
	assert.Equal(t, int64(-1001), *b.ChatID)

	topic, ok := b.Topic(domain.ScopeAuction)
	assert.True(t, ok)
	assert.Equal(t, 42, topic)

	_, ok = b.Topic(domain.ScopeInfo)
	assert.False(t, ok)
	assert.Len(t, b.Topics, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Load_Empty(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT key, value FROM settings`).
		WithArgs("scope_%").
		WillReturnRows(pgxmock.NewRows([]string{"key", "value"}))

	b, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, b.ChatID)
	assert.Empty(t, b.Topics)
}

func TestRepo_Load_CorruptValue(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT key, value FROM settings`).
		WithArgs("scope_%").
		WillReturnRows(pgxmock.NewRows([]string{"key", "value"}).AddRow("scope_chat_id", "abc"))

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scope_chat_id")
}

func TestRepo_Save(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)

	chat := int64(-1001)
	b := domain.ScopeBinding{ChatID: &chat, Topics: map[domain.ScopeRole]int{domain.ScopeAuction: 42}}

	mock.ExpectExec(`INSERT INTO settings \(key,value\) VALUES .* ON CONFLICT \(key\) DO UPDATE`).
		WithArgs(
			"scope_chat_id", "-1001",
			"scope_topic_info", "",
			"scope_topic_auction", "42",
			"scope_topic_absence", "",
			"scope_topic_news", "",
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 5))

	require.NoError(t, repo.Save(context.Background(), b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Save_Error(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)
	boom := errors.New("db down")

	mock.ExpectExec(`INSERT INTO settings`).WillReturnError(boom)

	err := repo.Save(context.Background(), domain.ScopeBinding{})
	require.ErrorIs(t, err, boom)
}
