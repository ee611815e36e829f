package common

import "context"

// MetricSource is a named capability that produces a numeric reading or signals unavailability by returning an error
type MetricSource interface {
	ID() SourceID
	Read(ctx context.Context) (Metric, error)
	IsInterfaceNil() bool
}
