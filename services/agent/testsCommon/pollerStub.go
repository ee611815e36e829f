package testsCommon

import (
	"context"

	"github.com/tidwall/gjson"
)

// PollerStub -
type PollerStub struct {
	PollHandler func(ctx context.Context, url string, path string) (gjson.Result, error)
}

// Poll -
func (stub *PollerStub) Poll(ctx context.Context, url string, path string) (gjson.Result, error) {
	if stub.PollHandler != nil {
		return stub.PollHandler(ctx, url, path)
	}

	return gjson.Result{}, nil
}

// IsInterfaceNil -
func (stub *PollerStub) IsInterfaceNil() bool {
	return stub == nil
}
