package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

// Claim marks that nick received item: a queued nick goes back to the tail.
// An empty nick claims for the actor. Claiming for someone else needs
// officer or leader rights. A nick that is not queued yields Queued=false
// and leaves the board untouched.
func (s *Service) Claim(ctx context.Context, actor domain.Actor, item, nick string) (domain.ClaimResult, error) {
	nick, err := claimant(actor, nick)
	if err != nil {
		s.rec.QueueOp("claim", outcomeRejected)
		return domain.ClaimResult{}, err
	}

	res := domain.ClaimResult{Item: item}
	err = s.mutate(ctx, "claim", func(b *board) (bool, []domain.AuditRecord, error) {
		j, err := lookup(b, item)
		if err != nil {
			return false, nil, err
		}
		res.Item = b.items[j]
		if b.position(j, nick) == 0 {
			return false, nil, nil
		}
		res.Position, _ = b.enqueue(j, nick)
		res.Queued = true
		return true, []domain.AuditRecord{claimRecord(actor, nick, b.items[j], res.Position)}, nil
	})
	if err != nil {
		return domain.ClaimResult{}, err
	}

	if res.Queued {
		s.log.InfoContext(ctx, "queue claim",
			slog.Int64("actor_id", actor.MemberID),
			slog.String("item", res.Item),
			slog.String("nick", nick),
			slog.Int("position", res.Position),
		)
	}
	return res, nil
}

// ClaimMany claims each of items for nick in one read-modify-write.
func (s *Service) ClaimMany(ctx context.Context, actor domain.Actor, items []string, nick string) []domain.BatchOutcome {
	nick, err := claimant(actor, nick)
	if err != nil {
		s.rec.QueueOp("claim_many", outcomeRejected)
		return failAll(items, err)
	}

	var out []domain.BatchOutcome
	err = s.mutate(ctx, "claim_many", func(b *board) (bool, []domain.AuditRecord, error) {
		out = make([]domain.BatchOutcome, 0, len(items))
		var records []domain.AuditRecord
		for _, item := range items {
			j, err := lookup(b, item)
			if err != nil {
				out = append(out, domain.BatchOutcome{Item: item, Err: err})
				continue
			}
			if b.position(j, nick) == 0 {
				out = append(out, domain.BatchOutcome{Item: b.items[j]})
				continue
			}
			pos, _ := b.enqueue(j, nick)
			out = append(out, domain.BatchOutcome{Item: b.items[j], Position: pos, Queued: true, Requeued: true})
			records = append(records, claimRecord(actor, nick, b.items[j], pos))
		}
		return len(records) > 0, records, nil
	})
	if err != nil {
		return failAll(items, err)
	}
	return out
}

func claimant(actor domain.Actor, nick string) (string, error) {
	self := domain.NormalizeName(actor.Nick)
	nick = domain.NormalizeName(nick)
	if nick == "" {
		nick = self
	}
	if nick == "" {
		return "", fmt.Errorf("claim: %w", domain.ErrNotRegistered)
	}
	if nick != self && !actor.Role.IsPrivileged() {
		return "", fmt.Errorf("claim for %q as %s: %w", nick, actor.Role, domain.ErrForbidden)
	}
	return nick, nil
}

func claimRecord(actor domain.Actor, nick, item string, pos int) domain.AuditRecord {
	r := auditRecord(domain.AuditClaim, nick, fmt.Sprintf("%s #%d", item, pos))
	r.MemberID = actor.MemberID
	return r
}
