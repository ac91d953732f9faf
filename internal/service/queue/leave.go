package queue

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

// Leave removes nick from item's queue. It is a no-op when nick is not
// queued there.
func (s *Service) Leave(ctx context.Context, item, nick string) (domain.LeaveResult, error) {
	return s.leave(ctx, "leave", domain.AuditLeave, item, nick)
}

// Kick removes another member from item's queue. Officers and the leader
// only; the store is not touched otherwise.
func (s *Service) Kick(ctx context.Context, actor domain.Actor, item, nick string) (domain.LeaveResult, error) {
	if err := requirePrivileged(actor); err != nil {
		s.rec.QueueOp("kick", outcomeRejected)
		return domain.LeaveResult{}, err
	}

	res, err := s.leave(ctx, "kick", domain.AuditKick, item, nick)
	if err != nil {
		return res, err
	}
	if len(res.Removed) > 0 {
		s.log.InfoContext(ctx, "queue kick",
			slog.Int64("actor_id", actor.MemberID),
			slog.String("item", res.Removed[0]),
			slog.String("nick", nick),
		)
	}
	return res, nil
}

func (s *Service) leave(ctx context.Context, op string, action domain.AuditAction, item, nick string) (domain.LeaveResult, error) {
	nick, err := requireNick(nick)
	if err != nil {
		return domain.LeaveResult{}, err
	}

	res := domain.LeaveResult{Removed: []string{}}
	err = s.mutate(ctx, op, func(b *board) (bool, []domain.AuditRecord, error) {
		j, err := lookup(b, item)
		if err != nil {
			return false, nil, err
		}
		if !b.remove(j, nick) {
			return false, nil, nil
		}
		res.Removed = append(res.Removed, b.items[j])
		return true, []domain.AuditRecord{auditRecord(action, nick, b.items[j])}, nil
	})
	if err != nil {
		return domain.LeaveResult{}, err
	}
	return res, nil
}

// LeaveAll removes nick from every queue. Removed lists the items nick was in.
func (s *Service) LeaveAll(ctx context.Context, nick string) (domain.LeaveResult, error) {
	nick, err := requireNick(nick)
	if err != nil {
		return domain.LeaveResult{}, err
	}

	res := domain.LeaveResult{Removed: []string{}}
	err = s.mutate(ctx, "leave_all", func(b *board) (bool, []domain.AuditRecord, error) {
		var records []domain.AuditRecord
		for j := range b.items {
			if b.addressable(j) && b.remove(j, nick) {
				res.Removed = append(res.Removed, b.items[j])
				records = append(records, auditRecord(domain.AuditLeave, nick, b.items[j]))
			}
		}
		return len(records) > 0, records, nil
	})
	if err != nil {
		return domain.LeaveResult{}, err
	}
	return res, nil
}

// LeaveMany removes nick from each of items in one read-modify-write.
func (s *Service) LeaveMany(ctx context.Context, items []string, nick string) []domain.BatchOutcome {
	nick, err := requireNick(nick)
	if err != nil {
		return failAll(items, err)
	}

	var out []domain.BatchOutcome
	err = s.mutate(ctx, "leave_many", func(b *board) (bool, []domain.AuditRecord, error) {
		out = make([]domain.BatchOutcome, 0, len(items))
		var records []domain.AuditRecord
		for _, item := range items {
			j, err := lookup(b, item)
			if err != nil {
				out = append(out, domain.BatchOutcome{Item: item, Err: err})
				continue
			}
			removed := b.remove(j, nick)
			out = append(out, domain.BatchOutcome{Item: b.items[j], Removed: removed})
			if removed {
				records = append(records, auditRecord(domain.AuditLeave, nick, b.items[j]))
			}
		}
		return len(records) > 0, records, nil
	})
	if err != nil {
		return failAll(items, err)
	}
	return out
}
