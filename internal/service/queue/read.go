package queue

import (
	"context"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

// ListItems returns the item names in header order.
func (s *Service) ListItems(ctx context.Context) ([]string, error) {
	b, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return b.names(), nil
}

// Queue returns the ordered members waiting for item.
func (s *Service) Queue(ctx context.Context, item string) ([]string, error) {
	b, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	j, err := lookup(b, item)
	if err != nil {
		return nil, err
	}
	return append([]string{}, b.lists[j]...), nil
}

// Snapshot returns every item with its queue, in header order.
func (s *Service) Snapshot(ctx context.Context) ([]domain.ItemQueue, error) {
	b, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ItemQueue, 0, len(b.items))
	for j, name := range b.items {
		if name == "" || b.index(name) != j {
			continue
		}
		out = append(out, domain.ItemQueue{Item: name, Members: append([]string{}, b.lists[j]...)})
	}
	return out, nil
}

// PositionsFor returns nick's place in every item queue, in header order.
// Items where nick is absent have Queued=false.
func (s *Service) PositionsFor(ctx context.Context, nick string) ([]domain.ItemPosition, error) {
	nick, err := requireNick(nick)
	if err != nil {
		return nil, err
	}
	b, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ItemPosition, 0, len(b.items))
	for j, name := range b.items {
		if name == "" || b.index(name) != j {
			continue
		}
		pos := b.position(j, nick)
		out = append(out, domain.ItemPosition{Item: name, Position: pos, Queued: pos > 0})
	}
	return out, nil
}
