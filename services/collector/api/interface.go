package api

import (
	"context"

	"github.com/iulianpascalau/snapshot-agent/services/collector/common"
)

// Storage defines the interface for persisting and querying the delivered snapshots and the tracked symbols
type Storage interface {
	// SaveSnapshots upserts the machine and stores every snapshot of the payload. Returns the number of new snapshots
	SaveSnapshots(ctx context.Context, payload common.SnapshotsPayload, receivedAt int64) (int, error)

	// GetMachines returns all known machines with the names of their devices
	GetMachines(ctx context.Context) ([]common.Machine, error)

	// GetSnapshots returns up to limit most recent snapshots of a machine's device, oldest first
	GetSnapshots(ctx context.Context, guid string, device string, limit int) (*common.SnapshotHistory, error)

	// GetSymbols returns the tracked symbols in their configured order
	GetSymbols(ctx context.Context) ([]string, error)

	// SetSymbols replaces the tracked symbols
	SetSymbols(ctx context.Context, symbols []string) error

	// DeleteSymbol removes one tracked symbol
	DeleteSymbol(ctx context.Context, symbol string) error

	// Close shuts down the database connection
	Close() error

	IsInterfaceNil() bool
}
