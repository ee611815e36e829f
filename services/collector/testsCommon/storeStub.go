package testsCommon

import (
	"context"

	"github.com/iulianpascalau/snapshot-agent/services/collector/common"
)

// StoreStub -
type StoreStub struct {
	SaveSnapshotsHandler func(ctx context.Context, payload common.SnapshotsPayload, receivedAt int64) (int, error)
	GetMachinesHandler   func(ctx context.Context) ([]common.Machine, error)
	GetSnapshotsHandler  func(ctx context.Context, guid string, device string, limit int) (*common.SnapshotHistory, error)
	GetSymbolsHandler    func(ctx context.Context) ([]string, error)
	SetSymbolsHandler    func(ctx context.Context, symbols []string) error
	DeleteSymbolHandler  func(ctx context.Context, symbol string) error
	CloseHandler         func() error
}

// SaveSnapshots -
func (stub *StoreStub) SaveSnapshots(ctx context.Context, payload common.SnapshotsPayload, receivedAt int64) (int, error) {
	if stub.SaveSnapshotsHandler != nil {
		return stub.SaveSnapshotsHandler(ctx, payload, receivedAt)
	}

	return 0, nil
}

// GetMachines -
func (stub *StoreStub) GetMachines(ctx context.Context) ([]common.Machine, error) {
	if stub.GetMachinesHandler != nil {
		return stub.GetMachinesHandler(ctx)
	}

	return make([]common.Machine, 0), nil
}

// GetSnapshots -
func (stub *StoreStub) GetSnapshots(ctx context.Context, guid string, device string, limit int) (*common.SnapshotHistory, error) {
	if stub.GetSnapshotsHandler != nil {
		return stub.GetSnapshotsHandler(ctx, guid, device, limit)
	}

	return &common.SnapshotHistory{}, nil
}

// GetSymbols -
func (stub *StoreStub) GetSymbols(ctx context.Context) ([]string, error) {
	if stub.GetSymbolsHandler != nil {
		return stub.GetSymbolsHandler(ctx)
	}

	return make([]string, 0), nil
}

// SetSymbols -
func (stub *StoreStub) SetSymbols(ctx context.Context, symbols []string) error {
	if stub.SetSymbolsHandler != nil {
		return stub.SetSymbolsHandler(ctx, symbols)
	}

	return nil
}

// DeleteSymbol -
func (stub *StoreStub) DeleteSymbol(ctx context.Context, symbol string) error {
	if stub.DeleteSymbolHandler != nil {
		return stub.DeleteSymbolHandler(ctx, symbol)
	}

	return nil
}

// Close -
func (stub *StoreStub) Close() error {
	if stub.CloseHandler != nil {
		return stub.CloseHandler()
	}

	return nil
}

// IsInterfaceNil -
func (stub *StoreStub) IsInterfaceNil() bool {
	return stub == nil
}
