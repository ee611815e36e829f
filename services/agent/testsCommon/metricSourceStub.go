package testsCommon

import (
	"context"

	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
)

// MetricSourceStub -
type MetricSourceStub struct {
	SourceID    common.SourceID
	ReadHandler func(ctx context.Context) (common.Metric, error)
}

// NewValueSourceStub returns a stub always reading the provided value
func NewValueSourceStub(name string, value float64) *MetricSourceStub {
	return &MetricSourceStub{
		SourceID: common.SourceID{Kind: "stub", Param: name},
		ReadHandler: func(ctx context.Context) (common.Metric, error) {
			return common.Metric{Name: name, Value: value}, nil
		},
	}
}

// NewUnavailableSourceStub returns a stub that always fails
func NewUnavailableSourceStub(name string) *MetricSourceStub {
	return &MetricSourceStub{
		SourceID: common.SourceID{Kind: "stub", Param: name},
		ReadHandler: func(ctx context.Context) (common.Metric, error) {
			return common.Metric{}, common.ErrSourceUnavailable
		},
	}
}

// ID -
func (stub *MetricSourceStub) ID() common.SourceID {
	return stub.SourceID
}

// Read -
func (stub *MetricSourceStub) Read(ctx context.Context) (common.Metric, error) {
	if stub.ReadHandler != nil {
		return stub.ReadHandler(ctx)
	}

	return common.Metric{}, common.ErrSourceUnavailable
}

// IsInterfaceNil -
func (stub *MetricSourceStub) IsInterfaceNil() bool {
	return stub == nil
}
