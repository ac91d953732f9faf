package app

import (
	"context"
	"errors"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

type auditSink interface {
	Log(ctx context.Context, rec domain.AuditRecord) error
}

// fanout writes each audit record to every sink and joins their errors.
type fanout []auditSink

func (f fanout) Log(ctx context.Context, rec domain.AuditRecord) error {
	var errs []error
	for _, s := range f {
		if err := s.Log(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
