// Package selection keeps the per-member multi-select sessions that build a
// batch of queue operations before it is committed.
package selection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

type gauge interface {
	SelectionSessions(open int)
}

type key struct {
	member int64
	flow   domain.Flow
}

type session struct {
	id       uuid.UUID
	universe []string
	selected map[string]bool
	touched  time.Time
}

// Manager owns every open selection session. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[key]*session

	idle  time.Duration
	now   func() time.Time
	gauge gauge
	log   *slog.Logger
}

// NewManager creates a session manager. Sessions untouched for longer than
// idle are treated as absent. gauge may be nil.
func NewManager(log *slog.Logger, gauge gauge, idle time.Duration) *Manager {
	if idle <= 0 {
		idle = 15 * time.Minute
	}
	return &Manager{
		sessions: make(map[key]*session),
		idle:     idle,
		now:      time.Now,
		gauge:    gauge,
		log:      log.With("service", "selection"),
	}
}

// Start opens a session over a copy of universe, replacing any earlier
// session of the same member and flow.
func (m *Manager) Start(memberID int64, flow domain.Flow, universe []string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &session{
		id:       uuid.New(),
		universe: append([]string(nil), universe...),
		selected: make(map[string]bool),
		touched:  m.now(),
	}
	m.sessions[key{memberID, flow}] = s
	m.report()
	return s.id
}

// Toggle flips item in the session and reports whether it is now selected.
func (m *Manager) Toggle(memberID int64, flow domain.Flow, item string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.get(memberID, flow)
	if err != nil {
		return false, err
	}
	if !contains(s.universe, item) {
		return false, fmt.Errorf("toggle %q: %w", item, domain.ErrItemNotInUniverse)
	}
	if s.selected[item] {
		delete(s.selected, item)
	} else {
		s.selected[item] = true
	}
	s.touched = m.now()
	return s.selected[item], nil
}

// Reset clears the selection and keeps the session open.
func (m *Manager) Reset(memberID int64, flow domain.Flow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.get(memberID, flow)
	if err != nil {
		return err
	}
	clear(s.selected)
	s.touched = m.now()
	return nil
}

// View returns a snapshot of the session.
func (m *Manager) View(memberID int64, flow domain.Flow) (domain.SelectionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.get(memberID, flow)
	if err != nil {
		return domain.SelectionView{}, err
	}
	return domain.SelectionView{
		ID:       s.id,
		Flow:     flow,
		Universe: append([]string(nil), s.universe...),
		Selected: s.ordered(),
	}, nil
}

// Confirm returns the selected items in universe order and closes the
// session. With nothing selected it returns ErrEmptySelection and the
// session stays open.
func (m *Manager) Confirm(memberID int64, flow domain.Flow) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.get(memberID, flow)
	if err != nil {
		return nil, err
	}
	if len(s.selected) == 0 {
		s.touched = m.now()
		return nil, domain.ErrEmptySelection
	}
	delete(m.sessions, key{memberID, flow})
	m.report()
	return s.ordered(), nil
}

// Cancel closes the session if there is one.
func (m *Manager) Cancel(memberID int64, flow domain.Flow) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[key{memberID, flow}]; ok {
		delete(m.sessions, key{memberID, flow})
		m.report()
	}
}

// Open returns the number of live sessions.
func (m *Manager) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops idle sessions and returns how many it dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for k, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, k)
			n++
		}
	}
	if n > 0 {
		m.report()
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.log.DebugContext(ctx, "selection sessions expired", slog.Int("count", n))
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Helpers (caller holds mu)
// ---------------------------------------------------------------------------

func (m *Manager) get(memberID int64, flow domain.Flow) (*session, error) {
	k := key{memberID, flow}
	s, ok := m.sessions[k]
	if !ok {
		return nil, domain.ErrNoSession
	}
	if m.expired(s, m.now()) {
		delete(m.sessions, k)
		m.report()
		return nil, domain.ErrNoSession
	}
	return s, nil
}

func (m *Manager) expired(s *session, now time.Time) bool {
	return now.Sub(s.touched) > m.idle
}

func (m *Manager) report() {
	if m.gauge != nil {
		m.gauge.SelectionSessions(len(m.sessions))
	}
}

func (s *session) ordered() []string {
	out := make([]string, 0, len(s.selected))
	for _, item := range s.universe {
		if s.selected[item] {
			out = append(out, item)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
