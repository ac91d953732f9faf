package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

// AddItem appends a new item column. created is false when the name already
// exists.
func (s *Service) AddItem(ctx context.Context, actor domain.Actor, name string) (bool, error) {
	if err := requirePrivileged(actor); err != nil {
		s.rec.QueueOp("add_item", outcomeRejected)
		return false, err
	}
	name, err := ValidateItemName(name)
	if err != nil {
		s.rec.QueueOp("add_item", outcomeRejected)
		return false, err
	}

	created := false
	err = s.mutate(ctx, "add_item", func(b *board) (bool, []domain.AuditRecord, error) {
		if b.index(name) >= 0 {
			return false, nil, nil
		}
		b.addItem(name)
		created = true
		return true, []domain.AuditRecord{actorRecord(actor, domain.AuditAddItem, name)}, nil
	})
	if err != nil {
		return false, err
	}

	if created {
		s.log.InfoContext(ctx, "item added", slog.String("item", name), slog.Int64("actor_id", actor.MemberID))
	}
	return created, nil
}

// RemoveItem drops an item column together with its queue. removed is false
// when the item does not exist.
func (s *Service) RemoveItem(ctx context.Context, actor domain.Actor, name string) (bool, error) {
	if err := requirePrivileged(actor); err != nil {
		s.rec.QueueOp("remove_item", outcomeRejected)
		return false, err
	}
	name = domain.NormalizeName(name)

	removed := false
	err := s.mutate(ctx, "remove_item", func(b *board) (bool, []domain.AuditRecord, error) {
		j := b.index(name)
		if j < 0 {
			return false, nil, nil
		}
		dropped := len(b.lists[j])
		b.removeItem(j)
		removed = true
		return true, []domain.AuditRecord{actorRecord(actor, domain.AuditRemoveItem, fmt.Sprintf("%s (%d queued)", name, dropped))}, nil
	})
	if err != nil {
		return false, err
	}

	if removed {
		s.log.InfoContext(ctx, "item removed", slog.String("item", name), slog.Int64("actor_id", actor.MemberID))
	}
	return removed, nil
}

// Ensure creates the auction sheet when it is missing and seeds an empty
// header with the default items.
func (s *Service) Ensure(ctx context.Context) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	sheets, err := s.store.ListSheets(ctx)
	if err != nil {
		return domain.NewStoreError("list", err)
	}
	exists := false
	for _, name := range sheets {
		if name == s.cfg.Sheet {
			exists = true
			break
		}
	}
	if !exists {
		if err := s.store.CreateSheet(ctx, s.cfg.Sheet); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
			return domain.NewStoreError("create", err)
		}
		s.log.InfoContext(ctx, "auction sheet created", slog.String("sheet", s.cfg.Sheet))
	}

	b, err := s.load(ctx)
	if err != nil {
		return err
	}
	if len(b.names()) > 0 || len(s.cfg.DefaultItems) == 0 {
		return nil
	}

	for _, item := range s.cfg.DefaultItems {
		name, err := ValidateItemName(item)
		if err != nil {
			return fmt.Errorf("default item: %w", err)
		}
		if b.index(name) < 0 {
			b.addItem(name)
		}
	}
	if err := s.save(ctx, b); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "auction sheet seeded", slog.Any("items", b.names()))
	return nil
}

// ValidateItemName normalizes an item name and checks its length.
func ValidateItemName(name string) (string, error) {
	name = domain.NormalizeName(name)
	if name == "" {
		return "", domain.NewValidationError("item", "required")
	}
	if len(name) > MaxItemNameBytes {
		return "", domain.NewValidationError("item", fmt.Sprintf("max %d bytes", MaxItemNameBytes))
	}
	return name, nil
}

func actorRecord(actor domain.Actor, action domain.AuditAction, details string) domain.AuditRecord {
	return domain.AuditRecord{MemberID: actor.MemberID, Nick: actor.Nick, Action: action, Details: details}
}
