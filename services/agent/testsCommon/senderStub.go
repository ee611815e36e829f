package testsCommon

import (
	"context"

	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
)

// SenderStub -
type SenderStub struct {
	SendHandler func(ctx context.Context, endpoint string, payload common.AggregatorPayload) (int, error)
}

// Send -
func (stub *SenderStub) Send(ctx context.Context, endpoint string, payload common.AggregatorPayload) (int, error) {
	if stub.SendHandler != nil {
		return stub.SendHandler(ctx, endpoint, payload)
	}

	return 200, nil
}

// IsInterfaceNil -
func (stub *SenderStub) IsInterfaceNil() bool {
	return stub == nil
}
