package reconciler

import (
	"context"
	"fmt"

	"github.com/multiversx/mx-chain-core-go/core/check"
	"github.com/tidwall/gjson"
)

const symbolsPath = "symbols"

type httpSymbolsFetcher struct {
	endpoint string
	poller   Poller
}

// NewHTTPSymbolsFetcher creates a fetcher reading {"symbols": [...]} from the provided endpoint
func NewHTTPSymbolsFetcher(endpoint string, poller Poller) (*httpSymbolsFetcher, error) {
	if len(endpoint) == 0 {
		return nil, errEmptyEndpoint
	}
	if check.IfNil(poller) {
		return nil, errNilPoller
	}

	return &httpSymbolsFetcher{
		endpoint: endpoint,
		poller:   poller,
	}, nil
}

// FetchSymbols returns the symbols served by the endpoint
func (f *httpSymbolsFetcher) FetchSymbols(ctx context.Context) ([]string, error) {
	result, err := f.poller.Poll(ctx, f.endpoint, symbolsPath)
	if err != nil {
		return nil, err
	}
	if result.Type == gjson.Null {
		return make([]string, 0), nil
	}
	if !result.IsArray() {
		return nil, errSymbolsNotArray
	}

	items := result.Array()
	symbols := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type != gjson.String {
			return nil, fmt.Errorf("%w: %s", errInvalidSymbol, item.Raw)
		}

		symbols = append(symbols, item.String())
	}

	return symbols, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (f *httpSymbolsFetcher) IsInterfaceNil() bool {
	return f == nil
}

type staticSymbolsFetcher struct {
	symbols []string
}

// NewStaticSymbolsFetcher creates a fetcher always returning the provided symbols
func NewStaticSymbolsFetcher(symbols []string) *staticSymbolsFetcher {
	copied := make([]string, len(symbols))
	copy(copied, symbols)

	return &staticSymbolsFetcher{
		symbols: copied,
	}
}

// FetchSymbols returns the configured symbols
func (f *staticSymbolsFetcher) FetchSymbols(_ context.Context) ([]string, error) {
	symbols := make([]string, len(f.symbols))
	copy(symbols, f.symbols)

	return symbols, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (f *staticSymbolsFetcher) IsInterfaceNil() bool {
	return f == nil
}
