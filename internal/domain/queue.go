package domain

// JoinResult is the outcome of joining (or re-joining) an item queue.
type JoinResult struct {
	Item     string
	Position int
	Requeued bool
}

// LeaveResult lists the items a nick was removed from.
type LeaveResult struct {
	Removed []string
}

// ClaimResult is the outcome of a claim. Queued is false when the nick
// was not in the item's queue; nothing changes in that case.
type ClaimResult struct {
	Item     string
	Position int
	Queued   bool
}

// ItemPosition is a nick's place in one item queue.
// Position is 0 when Queued is false.
type ItemPosition struct {
	Item     string
	Position int
	Queued   bool
}

// ItemQueue is a read-only view of one item and its ordered members.
type ItemQueue struct {
	Item    string
	Members []string
}

// BatchOutcome is the per-item result of a batch commit. Err is set when
// the operation failed for this item only (for example ErrUnknownItem when
// the item was removed while the member was still selecting).
type BatchOutcome struct {
	Item     string
	Position int
	Requeued bool
	Queued   bool
	Removed  bool
	Members  []string
	Err      error
}

// Flow is the kind of multi-select interaction a selection session drives.
type Flow string

const (
	FlowJoin  Flow = "join"
	FlowLeave Flow = "leave"
	FlowClaim Flow = "claim"
	FlowView  Flow = "view"
)

func (f Flow) String() string { return string(f) }

func (f Flow) IsValid() bool {
	switch f {
	case FlowJoin, FlowLeave, FlowClaim, FlowView:
		return true
	}
	return false
}
