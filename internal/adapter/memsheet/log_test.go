package memsheet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

func TestLogSheet_AppendsRows(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	log := s.LogSheet("Логи")

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, log.Log(ctx, domain.AuditRecord{At: at, MemberID: 42, Nick: "Rune", Action: domain.AuditJoin, Details: "Клеймо #1"}))
	require.NoError(t, log.Log(ctx, domain.AuditRecord{At: at, MemberID: 42, Nick: "Rune", Action: domain.AuditLeave, Details: "Клеймо"}))

	got, err := s.ReadMatrix(ctx, "Логи")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"2026-03-01T12:00:00Z", "42", "Rune", "join", "Клеймо #1"},
		{"2026-03-01T12:00:00Z", "42", "Rune", "leave", "Клеймо"},
	}, got)
}
