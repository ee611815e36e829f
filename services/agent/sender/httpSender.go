package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const maxLoggedResponseBytes = 512

var log = logger.GetOrCreate("sender")

type httpSender struct {
	apiKey string
	client *http.Client
}

// NewHTTPSender creates a new sender that POSTs payloads to the collector
func NewHTTPSender(apiKey string, timeout time.Duration) *httpSender {
	return &httpSender{
		apiKey: apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts the payload to the endpoint. A non-nil error means that no response was received,
// otherwise the response status code is returned, whatever its value. An error wrapping
// common.ErrPayloadNotSendable means the request was never issued.
func (s *httpSender) Send(ctx context.Context, endpoint string, payload common.AggregatorPayload) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to marshal payload: %w", common.ErrPayloadNotSendable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create request: %w", common.ErrPayloadNotSendable, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("network error sending payload: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	responseText, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedResponseBytes))
	log.Debug("collector responded", "endpoint", endpoint, "status code", resp.StatusCode, "response", string(responseText))

	return resp.StatusCode, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *httpSender) IsInterfaceNil() bool {
	return s == nil
}
