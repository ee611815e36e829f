package engine

import (
	"context"

	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
)

// Aggregator defines the capture and delivery operations driven by the engine
type Aggregator interface {
	// Capture captures every registered device and queues the produced snapshots
	Capture(ctx context.Context) int
	// Deliver drains the pending queue against the endpoint. Failures are handled internally
	Deliver(ctx context.Context, endpoint string) common.DeliveryReport
	PendingLen() int
	IsInterfaceNil() bool
}

// Reconciler defines the component keeping server-driven sources in sync
type Reconciler interface {
	Reconcile(ctx context.Context)
	IsInterfaceNil() bool
}
