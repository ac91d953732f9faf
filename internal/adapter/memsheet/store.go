// Package memsheet is an in-memory tabular store for development and tests.
package memsheet

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

// Store keeps sheets as string matrices.
// Uses sync.RWMutex for thread-safe concurrent access.
type Store struct {
	mu     sync.RWMutex
	sheets map[string][][]string
	writes int
}

// New creates an empty store.
func New() *Store {
	return &Store{sheets: make(map[string][][]string)}
}

// ReadMatrix returns a copy of the sheet content.
// Returns domain.ErrNotFound if the sheet doesn't exist.
func (s *Store) ReadMatrix(_ context.Context, sheet string) ([][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("sheet %s: %w", sheet, domain.ErrNotFound)
	}
	return clone(rows), nil
}

// WriteMatrix replaces the sheet content, creating the sheet when absent.
func (s *Store) WriteMatrix(_ context.Context, sheet string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sheets[sheet] = clone(rows)
	s.writes++
	return nil
}

// ListSheets returns sheet names in alphabetical order.
func (s *Store) ListSheets(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.sheets))
	for name := range s.sheets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CreateSheet adds an empty sheet.
// Returns domain.ErrAlreadyExists if the name is taken.
func (s *Store) CreateSheet(_ context.Context, sheet string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sheets[sheet]; ok {
		return fmt.Errorf("sheet %s: %w", sheet, domain.ErrAlreadyExists)
	}
	s.sheets[sheet] = [][]string{}
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Writes returns how many WriteMatrix calls succeeded.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Append adds rows to the end of sheet, creating it when absent.
func (s *Store) Append(_ context.Context, sheet string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sheets[sheet] = append(s.sheets[sheet], clone(rows)...)
	return nil
}

func clone(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
