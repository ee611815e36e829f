package testsCommon

import (
	"context"

	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
)

// AggregatorStub -
type AggregatorStub struct {
	CaptureHandler    func(ctx context.Context) int
	DeliverHandler    func(ctx context.Context, endpoint string) common.DeliveryReport
	PendingLenHandler func() int
}

// Capture -
func (stub *AggregatorStub) Capture(ctx context.Context) int {
	if stub.CaptureHandler != nil {
		return stub.CaptureHandler(ctx)
	}

	return 0
}

// Deliver -
func (stub *AggregatorStub) Deliver(ctx context.Context, endpoint string) common.DeliveryReport {
	if stub.DeliverHandler != nil {
		return stub.DeliverHandler(ctx, endpoint)
	}

	return common.DeliveryReport{}
}

// PendingLen -
func (stub *AggregatorStub) PendingLen() int {
	if stub.PendingLenHandler != nil {
		return stub.PendingLenHandler()
	}

	return 0
}

// IsInterfaceNil -
func (stub *AggregatorStub) IsInterfaceNil() bool {
	return stub == nil
}
