package queue

import (
	"context"
	"sync"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

var _ auditSink = &auditSinkMock{}

type auditSinkMock struct {
	LogFunc func(ctx context.Context, record domain.AuditRecord) error

	calls struct {
		Log []struct {
			Record domain.AuditRecord
		}
	}
	lockLog sync.RWMutex
}

func (mock *auditSinkMock) Log(ctx context.Context, record domain.AuditRecord) error {
	if mock.LogFunc == nil {
		panic("auditSinkMock.LogFunc: method is nil but auditSink.Log was just called")
	}
	mock.lockLog.Lock()
	mock.calls.Log = append(mock.calls.Log, struct{ Record domain.AuditRecord }{Record: record})
	mock.lockLog.Unlock()
	return mock.LogFunc(ctx, record)
}

func (mock *auditSinkMock) LogCalls() []struct{ Record domain.AuditRecord } {
	mock.lockLog.RLock()
	defer mock.lockLog.RUnlock()
	return mock.calls.Log
}
