package memsheet

import (
	"context"
	"fmt"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

// LogSheet appends audit records as rows of a sheet, mirroring the Google
// Sheets log sheet.
type LogSheet struct {
	store *Store
	sheet string
}

// LogSheet returns an audit sink writing to the named sheet.
func (s *Store) LogSheet(sheet string) *LogSheet {
	return &LogSheet{store: s, sheet: sheet}
}

// Log appends one record: timestamp, member id, nick, action, details.
func (l *LogSheet) Log(ctx context.Context, rec domain.AuditRecord) error {
	return l.store.Append(ctx, l.sheet, [][]string{{
		rec.At.UTC().Format("2006-01-02T15:04:05Z"),
		fmt.Sprint(rec.MemberID),
		rec.Nick,
		rec.Action.String(),
		rec.Details,
	}})
}
