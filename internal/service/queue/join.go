package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

// Join appends nick to the tail of item's queue. A nick that is already
// queued is moved to the tail (Requeued=true).
func (s *Service) Join(ctx context.Context, item, nick string) (domain.JoinResult, error) {
	nick, err := requireNick(nick)
	if err != nil {
		return domain.JoinResult{}, err
	}

	var res domain.JoinResult
	err = s.mutate(ctx, "join", func(b *board) (bool, []domain.AuditRecord, error) {
		j, err := lookup(b, item)
		if err != nil {
			return false, nil, err
		}
		pos, requeued := b.enqueue(j, nick)
		res = domain.JoinResult{Item: b.items[j], Position: pos, Requeued: requeued}
		return true, []domain.AuditRecord{auditRecord(domain.AuditJoin, nick, fmt.Sprintf("%s #%d", b.items[j], pos))}, nil
	})
	if err != nil {
		return domain.JoinResult{}, err
	}

	s.log.InfoContext(ctx, "queue joined",
		slog.String("item", res.Item),
		slog.String("nick", nick),
		slog.Int("position", res.Position),
		slog.Bool("requeued", res.Requeued),
	)
	return res, nil
}

// JoinMany joins nick to every item in one read-modify-write. Items that
// no longer exist get ErrUnknownItem in their outcome; the rest are applied.
func (s *Service) JoinMany(ctx context.Context, items []string, nick string) []domain.BatchOutcome {
	nick, err := requireNick(nick)
	if err != nil {
		return failAll(items, err)
	}

	var out []domain.BatchOutcome
	err = s.mutate(ctx, "join_many", func(b *board) (bool, []domain.AuditRecord, error) {
		out = make([]domain.BatchOutcome, 0, len(items))
		var records []domain.AuditRecord
		for _, item := range items {
			j, err := lookup(b, item)
			if err != nil {
				out = append(out, domain.BatchOutcome{Item: item, Err: err})
				continue
			}
			pos, requeued := b.enqueue(j, nick)
			out = append(out, domain.BatchOutcome{Item: b.items[j], Position: pos, Requeued: requeued, Queued: true})
			records = append(records, auditRecord(domain.AuditJoin, nick, fmt.Sprintf("%s #%d", b.items[j], pos)))
		}
		return len(records) > 0, records, nil
	})
	if err != nil {
		return failAll(items, err)
	}
	return out
}

func failAll(items []string, err error) []domain.BatchOutcome {
	out := make([]domain.BatchOutcome, len(items))
	for i, item := range items {
		out[i] = domain.BatchOutcome{Item: item, Err: err}
	}
	return out
}
