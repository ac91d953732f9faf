package queue

import (
	"context"
	"sync"
)

var _ tabularStore = &tabularStoreMock{}

type tabularStoreMock struct {
	ReadMatrixFunc  func(ctx context.Context, sheet string) ([][]string, error)
	WriteMatrixFunc func(ctx context.Context, sheet string, rows [][]string) error
	ListSheetsFunc  func(ctx context.Context) ([]string, error)
	CreateSheetFunc func(ctx context.Context, sheet string) error

	calls struct {
		ReadMatrix []struct {
			Sheet string
		}
		WriteMatrix []struct {
			Sheet string
			Rows  [][]string
		}
		ListSheets  []struct{}
		CreateSheet []struct {
			Sheet string
		}
	}
	lockReadMatrix  sync.RWMutex
	lockWriteMatrix sync.RWMutex
	lockListSheets  sync.RWMutex
	lockCreateSheet sync.RWMutex
}

func (mock *tabularStoreMock) ReadMatrix(ctx context.Context, sheet string) ([][]string, error) {
	if mock.ReadMatrixFunc == nil {
		panic("tabularStoreMock.ReadMatrixFunc: method is nil but tabularStore.ReadMatrix was just called")
	}
	mock.lockReadMatrix.Lock()
	mock.calls.ReadMatrix = append(mock.calls.ReadMatrix, struct{ Sheet string }{Sheet: sheet})
	mock.lockReadMatrix.Unlock()
	return mock.ReadMatrixFunc(ctx, sheet)
}

func (mock *tabularStoreMock) ReadMatrixCalls() []struct{ Sheet string } {
	mock.lockReadMatrix.RLock()
	defer mock.lockReadMatrix.RUnlock()
	return mock.calls.ReadMatrix
}

func (mock *tabularStoreMock) WriteMatrix(ctx context.Context, sheet string, rows [][]string) error {
	if mock.WriteMatrixFunc == nil {
		panic("tabularStoreMock.WriteMatrixFunc: method is nil but tabularStore.WriteMatrix was just called")
	}
	mock.lockWriteMatrix.Lock()
	mock.calls.WriteMatrix = append(mock.calls.WriteMatrix, struct {
		Sheet string
		Rows  [][]string
	}{Sheet: sheet, Rows: rows})
	mock.lockWriteMatrix.Unlock()
	return mock.WriteMatrixFunc(ctx, sheet, rows)
}

func (mock *tabularStoreMock) WriteMatrixCalls() []struct {
	Sheet string
	Rows  [][]string
} {
	mock.lockWriteMatrix.RLock()
	defer mock.lockWriteMatrix.RUnlock()
	return mock.calls.WriteMatrix
}

func (mock *tabularStoreMock) ListSheets(ctx context.Context) ([]string, error) {
	if mock.ListSheetsFunc == nil {
		panic("tabularStoreMock.ListSheetsFunc: method is nil but tabularStore.ListSheets was just called")
	}
	mock.lockListSheets.Lock()
	mock.calls.ListSheets = append(mock.calls.ListSheets, struct{}{})
	mock.lockListSheets.Unlock()
	return mock.ListSheetsFunc(ctx)
}

func (mock *tabularStoreMock) CreateSheet(ctx context.Context, sheet string) error {
	if mock.CreateSheetFunc == nil {
		panic("tabularStoreMock.CreateSheetFunc: method is nil but tabularStore.CreateSheet was just called")
	}
	mock.lockCreateSheet.Lock()
	mock.calls.CreateSheet = append(mock.calls.CreateSheet, struct{ Sheet string }{Sheet: sheet})
	mock.lockCreateSheet.Unlock()
	return mock.CreateSheetFunc(ctx, sheet)
}

func (mock *tabularStoreMock) CreateSheetCalls() []struct{ Sheet string } {
	mock.lockCreateSheet.RLock()
	defer mock.lockCreateSheet.RUnlock()
	return mock.calls.CreateSheet
}
