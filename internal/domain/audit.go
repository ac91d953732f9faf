package domain

import "time"

// AuditAction names a queue mutation written to the append-only log.
type AuditAction string

const (
	AuditJoin       AuditAction = "join"
	AuditLeave      AuditAction = "leave"
	AuditKick       AuditAction = "kick"
	AuditClaim      AuditAction = "claim"
	AuditAddItem    AuditAction = "add_item"
	AuditRemoveItem AuditAction = "remove_item"
	AuditRename     AuditAction = "rename"
	AuditBind       AuditAction = "bind"
)

func (a AuditAction) String() string { return string(a) }

// AuditRecord is one line of the append-only queue log.
type AuditRecord struct {
	At       time.Time
	MemberID int64
	Nick     string
	Action   AuditAction
	Details  string
}
