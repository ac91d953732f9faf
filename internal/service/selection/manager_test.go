package selection

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type gaugeSpy struct {
	mu   sync.Mutex
	last int
}

func (g *gaugeSpy) SelectionSessions(n int) {
	g.mu.Lock()
	g.last = n
	g.mu.Unlock()
}

func (g *gaugeSpy) value() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

func newTestManager(idle time.Duration) (*Manager, *fakeClock, *gaugeSpy) {
	clk := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	g := &gaugeSpy{}
	m := NewManager(slog.New(slog.NewTextHandler(io.Discard, nil)), g, idle)
	m.now = clk.Now
	return m, clk, g
}

var universe = []string{"Булла_Ред", "Клеймо", "Галун"}

func TestManager_ToggleConfirmUniverseOrder(t *testing.T) {
	t.Parallel()
	m, _, g := newTestManager(time.Minute)

	m.Start(7, domain.FlowJoin, universe)
	assert.Equal(t, 1, g.value())

	on, err := m.Toggle(7, domain.FlowJoin, "Галун")
	require.NoError(t, err)
	assert.True(t, on)
	_, err = m.Toggle(7, domain.FlowJoin, "Булла_Ред")
	require.NoError(t, err)

	got, err := m.Confirm(7, domain.FlowJoin)
	require.NoError(t, err)
	assert.Equal(t, []string{"Булла_Ред", "Галун"}, got)
	assert.Equal(t, 0, g.value())

	_, err = m.View(7, domain.FlowJoin)
	require.ErrorIs(t, err, domain.ErrNoSession)
}

func TestManager_ToggleTwiceDeselects(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager(time.Minute)
	m.Start(7, domain.FlowLeave, universe)

	_, err := m.Toggle(7, domain.FlowLeave, "Клеймо")
	require.NoError(t, err)
	on, err := m.Toggle(7, domain.FlowLeave, "Клеймо")
	require.NoError(t, err)
	assert.False(t, on)

	v, err := m.View(7, domain.FlowLeave)
	require.NoError(t, err)
	assert.Empty(t, v.Selected)
}

func TestManager_ToggleOutsideUniverse(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager(time.Minute)
	m.Start(7, domain.FlowJoin, universe)

	_, err := m.Toggle(7, domain.FlowJoin, "Новое")
	require.ErrorIs(t, err, domain.ErrItemNotInUniverse)
}

func TestManager_UniverseIsFrozen(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager(time.Minute)
	items := []string{"A", "B"}
	m.Start(7, domain.FlowJoin, items)
	items[0] = "Z"

	v, err := m.View(7, domain.FlowJoin)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, v.Universe)
}

func TestManager_ConfirmEmptyKeepsSession(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager(time.Minute)
	id := m.Start(7, domain.FlowClaim, universe)

	_, err := m.Confirm(7, domain.FlowClaim)
	require.ErrorIs(t, err, domain.ErrEmptySelection)

	v, err := m.View(7, domain.FlowClaim)
	require.NoError(t, err)
	assert.Equal(t, id, v.ID)
}

func TestManager_ResetKeepsSession(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager(time.Minute)
	m.Start(7, domain.FlowJoin, universe)
	_, err := m.Toggle(7, domain.FlowJoin, "Клеймо")
	require.NoError(t, err)

	require.NoError(t, m.Reset(7, domain.FlowJoin))
	v, err := m.View(7, domain.FlowJoin)
	require.NoError(t, err)
	assert.Empty(t, v.Selected)
	assert.Len(t, v.Universe, 3)
}

func TestManager_StartReplacesSession(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager(time.Minute)
	first := m.Start(7, domain.FlowJoin, universe)
	_, err := m.Toggle(7, domain.FlowJoin, "Клеймо")
	require.NoError(t, err)

	second := m.Start(7, domain.FlowJoin, universe)
	assert.NotEqual(t, first, second)

	v, err := m.View(7, domain.FlowJoin)
	require.NoError(t, err)
	assert.Equal(t, second, v.ID)
	assert.Empty(t, v.Selected)
	assert.Equal(t, 1, m.Open())
}

func TestManager_SessionsAreKeyedByMemberAndFlow(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager(time.Minute)
	m.Start(7, domain.FlowJoin, universe)
	m.Start(7, domain.FlowLeave, universe)
	m.Start(8, domain.FlowJoin, universe)

	_, err := m.Toggle(7, domain.FlowJoin, "Галун")
	require.NoError(t, err)

	for _, k := range []struct {
		id   int64
		flow domain.Flow
	}{{7, domain.FlowLeave}, {8, domain.FlowJoin}} {
		v, err := m.View(k.id, k.flow)
		require.NoError(t, err)
		assert.Empty(t, v.Selected)
	}
	assert.Equal(t, 3, m.Open())
}

func TestManager_Cancel(t *testing.T) {
	t.Parallel()
	m, _, g := newTestManager(time.Minute)
	m.Start(7, domain.FlowView, universe)

	m.Cancel(7, domain.FlowView)
	m.Cancel(7, domain.FlowView)

	_, err := m.Toggle(7, domain.FlowView, "Галун")
	require.ErrorIs(t, err, domain.ErrNoSession)
	assert.Equal(t, 0, g.value())
}

func TestManager_IdleSessionExpires(t *testing.T) {
	t.Parallel()
	m, clk, _ := newTestManager(time.Minute)
	m.Start(7, domain.FlowJoin, universe)

	clk.Advance(50 * time.Second)
	_, err := m.Toggle(7, domain.FlowJoin, "Галун")
	require.NoError(t, err, "toggle refreshes the session")

	clk.Advance(50 * time.Second)
	_, err = m.View(7, domain.FlowJoin)
	require.NoError(t, err)

	clk.Advance(61 * time.Second)
	_, err = m.Confirm(7, domain.FlowJoin)
	require.ErrorIs(t, err, domain.ErrNoSession)
	assert.Equal(t, 0, m.Open())
}

func TestManager_Sweep(t *testing.T) {
	t.Parallel()
	m, clk, g := newTestManager(time.Minute)
	m.Start(1, domain.FlowJoin, universe)
	clk.Advance(45 * time.Second)
	m.Start(2, domain.FlowJoin, universe)
	clk.Advance(30 * time.Second)

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Open())
	assert.Equal(t, 1, g.value())
	assert.Zero(t, m.Sweep())
}

func TestManager_ConcurrentTogglesAreNotLost(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager(time.Minute)
	items := make([]string, 40)
	for i := range items {
		items[i] = string(rune('A' + i))
	}
	m.Start(7, domain.FlowJoin, items)

	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func(item string) {
			defer wg.Done()
			_, err := m.Toggle(7, domain.FlowJoin, item)
			assert.NoError(t, err)
		}(item)
	}
	wg.Wait()

	got, err := m.Confirm(7, domain.FlowJoin)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestManager_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	m, clk, _ := newTestManager(time.Minute)
	m.Start(7, domain.FlowJoin, universe)
	clk.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return m.Open() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
