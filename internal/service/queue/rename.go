package queue

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

// RenamePropagate rewrites every queue cell holding oldNick to newNick,
// keeping positions. If a list then holds newNick twice, the earliest entry
// wins. Calling it again with the same arguments writes nothing.
func (s *Service) RenamePropagate(ctx context.Context, oldNick, newNick string) (int, error) {
	oldNick = domain.NormalizeName(oldNick)
	newNick = domain.NormalizeName(newNick)
	if oldNick == "" || newNick == "" || oldNick == newNick {
		return 0, nil
	}

	rewritten := 0
	err := s.mutate(ctx, "rename", func(b *board) (bool, []domain.AuditRecord, error) {
		n, changed := b.rename(oldNick, newNick)
		rewritten = n
		return changed, []domain.AuditRecord{auditRecord(domain.AuditRename, newNick, oldNick+" -> "+newNick)}, nil
	})
	if err != nil {
		return 0, err
	}

	if rewritten > 0 {
		s.log.InfoContext(ctx, "nick propagated",
			slog.String("old", oldNick),
			slog.String("new", newNick),
			slog.Int("cells", rewritten),
		)
	}
	return rewritten, nil
}
