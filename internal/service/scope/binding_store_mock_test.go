package scope

import (
	"context"
	"sync"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

var _ bindingStore = &bindingStoreMock{}

type bindingStoreMock struct {
	LoadFunc func(ctx context.Context) (domain.ScopeBinding, error)
	SaveFunc func(ctx context.Context, b domain.ScopeBinding) error

	calls struct {
		Load []struct{}
		Save []struct {
			B domain.ScopeBinding
		}
	}
	lockLoad sync.RWMutex
	lockSave sync.RWMutex
}

func (mock *bindingStoreMock) Load(ctx context.Context) (domain.ScopeBinding, error) {
	if mock.LoadFunc == nil {
		panic("bindingStoreMock.LoadFunc: method is nil but bindingStore.Load was just called")
	}
	mock.lockLoad.Lock()
	mock.calls.Load = append(mock.calls.Load, struct{}{})
	mock.lockLoad.Unlock()
	return mock.LoadFunc(ctx)
}

func (mock *bindingStoreMock) LoadCalls() []struct{} {
	mock.lockLoad.RLock()
	defer mock.lockLoad.RUnlock()
	return mock.calls.Load
}

func (mock *bindingStoreMock) Save(ctx context.Context, b domain.ScopeBinding) error {
	if mock.SaveFunc == nil {
		panic("bindingStoreMock.SaveFunc: method is nil but bindingStore.Save was just called")
	}
	mock.lockSave.Lock()
	mock.calls.Save = append(mock.calls.Save, struct {
		B domain.ScopeBinding
	}{B: b.Clone()})
	mock.lockSave.Unlock()
	return mock.SaveFunc(ctx, b)
}

func (mock *bindingStoreMock) SaveCalls() []struct {
	B domain.ScopeBinding
} {
	mock.lockSave.RLock()
	defer mock.lockSave.RUnlock()
	return mock.calls.Save
}
