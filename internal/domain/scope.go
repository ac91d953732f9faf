package domain

// ScopeRole is a logical kind of topic a command family is bound to.
type ScopeRole string

const (
	ScopeInfo    ScopeRole = "info"
	ScopeAuction ScopeRole = "auction"
	ScopeAbsence ScopeRole = "absence"
	ScopeNews    ScopeRole = "news"
)

// ScopeRoles lists every scope role in display order.
var ScopeRoles = []ScopeRole{ScopeInfo, ScopeAuction, ScopeAbsence, ScopeNews}

func (r ScopeRole) String() string { return string(r) }

func (r ScopeRole) IsValid() bool {
	switch r {
	case ScopeInfo, ScopeAuction, ScopeAbsence, ScopeNews:
		return true
	}
	return false
}

// ScopeBinding pins the bot to one chat and, optionally, each scope role
// to one forum topic of that chat. A nil ChatID means unscoped mode.
type ScopeBinding struct {
	ChatID *int64
	Topics map[ScopeRole]int
}

// Topic returns the topic bound to role, if any.
func (b ScopeBinding) Topic(role ScopeRole) (int, bool) {
	id, ok := b.Topics[role]
	return id, ok
}

// Clone returns a deep copy of the binding.
func (b ScopeBinding) Clone() ScopeBinding {
	out := ScopeBinding{Topics: make(map[ScopeRole]int, len(b.Topics))}
	if b.ChatID != nil {
		id := *b.ChatID
		out.ChatID = &id
	}
	for k, v := range b.Topics {
		out.Topics[k] = v
	}
	return out
}
