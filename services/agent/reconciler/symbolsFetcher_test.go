package reconciler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iulianpascalau/snapshot-agent/services/agent/poller"
	"github.com/iulianpascalau/snapshot-agent/services/agent/testsCommon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPSymbolsFetcher(t *testing.T) {
	t.Parallel()

	t.Run("empty endpoint should error", func(t *testing.T) {
		f, err := NewHTTPSymbolsFetcher("", &testsCommon.PollerStub{})

		assert.Nil(t, f)
		assert.True(t, f.IsInterfaceNil())
		assert.Equal(t, errEmptyEndpoint, err)
	})
	t.Run("nil poller should error", func(t *testing.T) {
		f, err := NewHTTPSymbolsFetcher("http://collector/api/symbols", nil)

		assert.Nil(t, f)
		assert.Equal(t, errNilPoller, err)
	})
	t.Run("should work", func(t *testing.T) {
		f, err := NewHTTPSymbolsFetcher("http://collector/api/symbols", &testsCommon.PollerStub{})

		assert.NotNil(t, f)
		assert.False(t, f.IsInterfaceNil())
		assert.Nil(t, err)
	})
}

func TestHTTPSymbolsFetcher_FetchSymbols(t *testing.T) {
	t.Parallel()

	responses := map[string]string{
		"/ok":         `{"symbols": ["AAPL", "MSFT"]}`,
		"/empty":      `{"symbols": []}`,
		"/null":       `{"symbols": null}`,
		"/not-array":  `{"symbols": "AAPL"}`,
		"/bad-item":   `{"symbols": ["AAPL", 42]}`,
		"/no-symbols": `{"tickers": ["AAPL"]}`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response, found := responses[r.URL.Path]
		if !found {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(response))
	}))
	defer server.Close()

	fetch := func(path string) ([]string, error) {
		f, err := NewHTTPSymbolsFetcher(server.URL+path, poller.NewHTTPPoller(time.Second))
		require.Nil(t, err)

		return f.FetchSymbols(context.Background())
	}

	symbols, err := fetch("/ok")
	assert.Nil(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)

	symbols, err = fetch("/empty")
	assert.Nil(t, err)
	assert.Empty(t, symbols)

	symbols, err = fetch("/null")
	assert.Nil(t, err)
	assert.Empty(t, symbols)

	_, err = fetch("/not-array")
	assert.Equal(t, errSymbolsNotArray, err)

	_, err = fetch("/bad-item")
	assert.True(t, errors.Is(err, errInvalidSymbol))

	_, err = fetch("/no-symbols")
	assert.Error(t, err)

	_, err = fetch("/server-error")
	assert.Error(t, err)
}

func TestStaticSymbolsFetcher(t *testing.T) {
	t.Parallel()

	input := []string{"AAPL"}
	f := NewStaticSymbolsFetcher(input)
	assert.False(t, f.IsInterfaceNil())

	input[0] = "CHANGED"
	symbols, err := f.FetchSymbols(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, []string{"AAPL"}, symbols)

	symbols[0] = "CHANGED"
	symbols, _ = f.FetchSymbols(context.Background())
	assert.Equal(t, []string{"AAPL"}, symbols)
}
