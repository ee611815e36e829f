package factory

import (
	"context"

	"github.com/google/uuid"
	"github.com/iulianpascalau/snapshot-agent/services/agent/aggregator"
	"github.com/iulianpascalau/snapshot-agent/services/agent/engine"
)

type aggregatorWithDevices interface {
	AddDevice(name string) (aggregator.Device, error)
}

// Engine defines the agent's operations
type Engine interface {
	Process(ctx context.Context)
	IsInterfaceNil() bool
}

// Aggregator defines the aggregator operations exposed by the components handler
type Aggregator interface {
	engine.Aggregator
	MachineID() uuid.UUID
	MachineName() string
	Device(name string) (aggregator.Device, bool)
}
