package aggregator

import (
	"context"

	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
)

// Device defines a logical metric producing entity owning its sources and its snapshot history
type Device interface {
	Name() string
	RegisterSource(source common.MetricSource) error
	DeregisterSource(id common.SourceID) bool
	SourceIDs() []common.SourceID
	Capture(ctx context.Context) (common.Snapshot, bool)
	History() []common.SnapshotID
	RemoveSnapshot(id common.SnapshotID) bool
	IsInterfaceNil() bool
}

// Sender defines the transport used to deliver one payload to the collector.
// A non-nil error means no response was received, otherwise the response status code is returned.
// An error wrapping common.ErrPayloadNotSendable means the payload can never be sent.
type Sender interface {
	Send(ctx context.Context, endpoint string, payload common.AggregatorPayload) (int, error)
	IsInterfaceNil() bool
}
