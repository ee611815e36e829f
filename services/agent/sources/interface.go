package sources

import (
	"context"

	"github.com/tidwall/gjson"
)

// Poller defines the component able to fetch a JSON value from an HTTP endpoint
type Poller interface {
	Poll(ctx context.Context, url string, path string) (gjson.Result, error)
	IsInterfaceNil() bool
}
