package reconciler

import (
	"context"

	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
	"github.com/tidwall/gjson"
)

// Device defines the source registry the reconciler operates on
type Device interface {
	Name() string
	RegisterSource(source common.MetricSource) error
	DeregisterSource(id common.SourceID) bool
	SourceIDs() []common.SourceID
	IsInterfaceNil() bool
}

// SymbolsFetcher defines the component able to provide the desired set of symbols
type SymbolsFetcher interface {
	FetchSymbols(ctx context.Context) ([]string, error)
	IsInterfaceNil() bool
}

// Poller defines the component able to fetch a JSON value from an HTTP endpoint
type Poller interface {
	Poll(ctx context.Context, url string, path string) (gjson.Result, error)
	IsInterfaceNil() bool
}

// SourceFactory builds the metric source for the provided identity parameter
type SourceFactory func(param string) (common.MetricSource, error)
