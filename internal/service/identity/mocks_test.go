package identity

import (
	"context"
	"sync"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

// ---------------------------------------------------------------------------
// memberRepo
// ---------------------------------------------------------------------------

var _ memberRepo = &memberRepoMock{}

type memberRepoMock struct {
	UpsertFunc     func(ctx context.Context, id int64, handle string) (*domain.Member, error)
	UpdateNickFunc func(ctx context.Context, id int64, nick string, previous []string) (*domain.Member, error)

	calls struct {
		Upsert []struct {
			ID     int64
			Handle string
		}
		UpdateNick []struct {
			ID       int64
			Nick     string
			Previous []string
		}
	}
	lockUpsert     sync.RWMutex
	lockUpdateNick sync.RWMutex
}

func (mock *memberRepoMock) Upsert(ctx context.Context, id int64, handle string) (*domain.Member, error) {
	if mock.UpsertFunc == nil {
		panic("memberRepoMock.UpsertFunc: method is nil but memberRepo.Upsert was just called")
	}
	mock.lockUpsert.Lock()
	mock.calls.Upsert = append(mock.calls.Upsert, struct {
		ID     int64
		Handle string
	}{ID: id, Handle: handle})
	mock.lockUpsert.Unlock()
	return mock.UpsertFunc(ctx, id, handle)
}

func (mock *memberRepoMock) UpsertCalls() []struct {
	ID     int64
	Handle string
} {
	mock.lockUpsert.RLock()
	defer mock.lockUpsert.RUnlock()
	return mock.calls.Upsert
}

func (mock *memberRepoMock) UpdateNick(ctx context.Context, id int64, nick string, previous []string) (*domain.Member, error) {
	if mock.UpdateNickFunc == nil {
		panic("memberRepoMock.UpdateNickFunc: method is nil but memberRepo.UpdateNick was just called")
	}
	mock.lockUpdateNick.Lock()
	mock.calls.UpdateNick = append(mock.calls.UpdateNick, struct {
		ID       int64
		Nick     string
		Previous []string
	}{ID: id, Nick: nick, Previous: previous})
	mock.lockUpdateNick.Unlock()
	return mock.UpdateNickFunc(ctx, id, nick, previous)
}

func (mock *memberRepoMock) UpdateNickCalls() []struct {
	ID       int64
	Nick     string
	Previous []string
} {
	mock.lockUpdateNick.RLock()
	defer mock.lockUpdateNick.RUnlock()
	return mock.calls.UpdateNick
}

// ---------------------------------------------------------------------------
// txManager
// ---------------------------------------------------------------------------

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	calls struct {
		RunInTx []struct{}
	}
	lockRunInTx sync.RWMutex
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mock.RunInTxFunc == nil {
		panic("txManagerMock.RunInTxFunc: method is nil but txManager.RunInTx was just called")
	}
	mock.lockRunInTx.Lock()
	mock.calls.RunInTx = append(mock.calls.RunInTx, struct{}{})
	mock.lockRunInTx.Unlock()
	return mock.RunInTxFunc(ctx, fn)
}

func (mock *txManagerMock) RunInTxCalls() []struct{} {
	mock.lockRunInTx.RLock()
	defer mock.lockRunInTx.RUnlock()
	return mock.calls.RunInTx
}

// ---------------------------------------------------------------------------
// queueBoard
// ---------------------------------------------------------------------------

var _ queueBoard = &queueBoardMock{}

type queueBoardMock struct {
	ExclusiveFunc       func(ctx context.Context, fn func(ctx context.Context) error) error
	RenamePropagateFunc func(ctx context.Context, oldNick, newNick string) (int, error)

	calls struct {
		Exclusive       []struct{}
		RenamePropagate []struct {
			OldNick string
			NewNick string
		}
	}
	lockExclusive       sync.RWMutex
	lockRenamePropagate sync.RWMutex
}

func (mock *queueBoardMock) Exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	if mock.ExclusiveFunc == nil {
		panic("queueBoardMock.ExclusiveFunc: method is nil but queueBoard.Exclusive was just called")
	}
	mock.lockExclusive.Lock()
	mock.calls.Exclusive = append(mock.calls.Exclusive, struct{}{})
	mock.lockExclusive.Unlock()
	return mock.ExclusiveFunc(ctx, fn)
}

func (mock *queueBoardMock) ExclusiveCalls() []struct{} {
	mock.lockExclusive.RLock()
	defer mock.lockExclusive.RUnlock()
	return mock.calls.Exclusive
}

func (mock *queueBoardMock) RenamePropagate(ctx context.Context, oldNick, newNick string) (int, error) {
	if mock.RenamePropagateFunc == nil {
		panic("queueBoardMock.RenamePropagateFunc: method is nil but queueBoard.RenamePropagate was just called")
	}
	mock.lockRenamePropagate.Lock()
	mock.calls.RenamePropagate = append(mock.calls.RenamePropagate, struct {
		OldNick string
		NewNick string
	}{OldNick: oldNick, NewNick: newNick})
	mock.lockRenamePropagate.Unlock()
	return mock.RenamePropagateFunc(ctx, oldNick, newNick)
}

func (mock *queueBoardMock) RenamePropagateCalls() []struct {
	OldNick string
	NewNick string
} {
	mock.lockRenamePropagate.RLock()
	defer mock.lockRenamePropagate.RUnlock()
	return mock.calls.RenamePropagate
}
