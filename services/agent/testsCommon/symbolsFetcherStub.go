package testsCommon

import "context"

// SymbolsFetcherStub -
type SymbolsFetcherStub struct {
	FetchSymbolsHandler func(ctx context.Context) ([]string, error)
}

// FetchSymbols -
func (stub *SymbolsFetcherStub) FetchSymbols(ctx context.Context) ([]string, error) {
	if stub.FetchSymbolsHandler != nil {
		return stub.FetchSymbolsHandler(ctx)
	}

	return make([]string, 0), nil
}

// IsInterfaceNil -
func (stub *SymbolsFetcherStub) IsInterfaceNil() bool {
	return stub == nil
}
