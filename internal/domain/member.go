package domain

import (
	"strings"
	"time"
)

// Member is a guild member known to the bot. ID is the Telegram user id.
type Member struct {
	ID            int64
	Handle        string
	Nick          string
	PreviousNicks []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsRegistered reports whether the member has picked a nick yet.
func (m *Member) IsRegistered() bool {
	return m != nil && strings.TrimSpace(m.Nick) != ""
}

// Caller identifies who sent a command or pressed a button.
type Caller struct {
	ID          int64
	Handle      string // Telegram username without "@", may be empty
	DisplayName string
}

// Role is the privilege level of a caller. It is derived from static
// configuration and never stored.
type Role string

const (
	RoleMember  Role = "member"
	RoleOfficer Role = "officer"
	RoleLeader  Role = "leader"
)

func (r Role) String() string { return string(r) }

// IsPrivileged reports whether the role may run officer-only commands.
func (r Role) IsPrivileged() bool {
	return r == RoleLeader || r == RoleOfficer
}

// Actor is the caller as seen by queue operations that check privilege.
type Actor struct {
	MemberID int64
	Nick     string
	Role     Role
}
