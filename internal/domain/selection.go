package domain

import "github.com/google/uuid"

// SelectionView is a snapshot of an open selection session, used to render
// the item keyboard.
type SelectionView struct {
	ID       uuid.UUID
	Flow     Flow
	Universe []string
	Selected []string
}

// IsSelected reports whether item is currently toggled on.
func (v SelectionView) IsSelected(item string) bool {
	for _, s := range v.Selected {
		if s == item {
			return true
		}
	}
	return false
}
