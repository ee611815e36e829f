package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	agentCfg "github.com/iulianpascalau/snapshot-agent/services/agent/config"
	agentFactory "github.com/iulianpascalau/snapshot-agent/services/agent/factory"
	collectorCfg "github.com/iulianpascalau/snapshot-agent/services/collector/config"
	collectorFactory "github.com/iulianpascalau/snapshot-agent/services/collector/factory"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/stretchr/testify/require"
)

var log = logger.GetOrCreate("e2e-test")

type snapshotsHistory struct {
	Snapshots []struct {
		CapturedAt int64 `json:"capturedAt"`
		Metrics    []struct {
			Name  string  `json:"name"`
			Value float64 `json:"value"`
		} `json:"metrics"`
	} `json:"snapshots"`
}

type machinesResponse struct {
	Machines []struct {
		GUID    string   `json:"guid"`
		Name    string   `json:"name"`
		Devices []string `json:"devices"`
	} `json:"machines"`
}

func startCollector(t *testing.T, listenAddress string, initialSymbols []string) (func(), string) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "e2e_sqlite.db")

	collectorHandler, err := collectorFactory.NewComponentsHandler(
		dbPath,
		"test-service-key",
		"admin",
		"password",
		collectorCfg.Config{
			ListenAddress:    listenAddress,
			RetentionSeconds: 3600,
			InitialSymbols:   initialSymbols,
		},
	)
	require.NoError(t, err)

	collectorHandler.Start()

	_, port, err := net.SplitHostPort(collectorHandler.GetServer().Address())
	require.NoError(t, err)

	log.Info("======== wait a moment for the collector to start")
	time.Sleep(100 * time.Millisecond)

	return collectorHandler.Close, fmt.Sprintf("http://127.0.0.1:%s", port)
}

func createAgentConfig(webHost string) agentCfg.Config {
	return agentCfg.Config{
		Name:                     "e2e-agent",
		CaptureIntervalInSeconds: 1,
		WebHost:                  webHost,
		PostAPIEndpoint:          "/api/snapshots",
		RequestTimeoutInSeconds:  2,
		SystemDevice: agentCfg.SystemDeviceConfig{
			Name:    "system",
			Metrics: []string{"ram"},
		},
	}
}

func login(t *testing.T, collectorURL string) string {
	loginBody, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "password",
	})
	respLogin, err := http.Post(collectorURL+"/api/auth/login", "application/json", bytes.NewBuffer(loginBody))
	require.NoError(t, err)
	defer func() {
		_ = respLogin.Body.Close()
	}()
	require.Equal(t, http.StatusOK, respLogin.StatusCode)

	var loginData struct {
		Token string `json:"token"`
	}
	err = json.NewDecoder(respLogin.Body).Decode(&loginData)
	require.NoError(t, err)
	require.NotEmpty(t, loginData.Token)

	return loginData.Token
}

func doRequest(t *testing.T, method string, url string, token string, body []byte, result interface{}) int {
	req, err := http.NewRequest(method, url, bytes.NewBuffer(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	if result != nil {
		b, _ := io.ReadAll(resp.Body)
		err = json.Unmarshal(b, result)
		require.NoError(t, err)
	}

	return resp.StatusCode
}

func getTickerNames(t *testing.T, collectorURL string, token string, guid string) []string {
	var history snapshotsHistory
	code := doRequest(t, http.MethodGet, collectorURL+"/api/machines/"+guid+"/devices/tickers/snapshots?limit=1",
		token, nil, &history)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, history.Snapshots)

	names := make([]string, 0)
	for _, metric := range history.Snapshots[len(history.Snapshots)-1].Metrics {
		names = append(names, metric.Name)
	}

	return names
}

func TestE2EFlow(t *testing.T) {
	log.Info("======== 1. Start a mock price API for the ticker device")
	priceAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		symbol := strings.TrimPrefix(r.URL.Path, "/quote/")
		switch symbol {
		case "AAPL":
			_, _ = w.Write([]byte(`{"price": 190.25}`))
		case "MSFT":
			_, _ = w.Write([]byte(`{"price": 410.5}`))
		default:
			// rate limited
			_, _ = w.Write([]byte(`{"price": 0}`))
		}
	}))
	defer priceAPI.Close()

	log.Info("======== 2. Start the collector service with AAPL as tracked symbol")
	closeCollector, collectorURL := startCollector(t, "127.0.0.1:0", []string{"AAPL"})
	defer closeCollector()

	log.Info("======== 3. Start the agent via componentsHandler")
	cfg := createAgentConfig(collectorURL)
	cfg.SymbolsAPIEndpoint = "/api/symbols"
	cfg.TickerDevice = agentCfg.TickerDeviceConfig{
		Name:      "tickers",
		PriceURL:  priceAPI.URL + "/quote/{symbol}",
		PricePath: "price",
	}

	agentHandler, err := agentFactory.NewComponentsHandler("test-service-key", cfg)
	require.NoError(t, err)

	agentHandler.Start()
	defer agentHandler.Close()

	log.Info("======== 4. Wait for the agent to capture and deliver")
	time.Sleep(2500 * time.Millisecond)

	token := login(t, collectorURL)

	log.Info("======== 5. The machine should be known with both devices")
	var machines machinesResponse
	code := doRequest(t, http.MethodGet, collectorURL+"/api/machines", token, nil, &machines)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, machines.Machines, 1)
	require.Equal(t, "e2e-agent", machines.Machines[0].Name)
	require.Equal(t, []string{"system", "tickers"}, machines.Machines[0].Devices)
	guid := machines.Machines[0].GUID

	log.Info("======== 6. The system device should have delivered RAM snapshots")
	var history snapshotsHistory
	code = doRequest(t, http.MethodGet, collectorURL+"/api/machines/"+guid+"/devices/system/snapshots", token, nil, &history)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, history.Snapshots)
	require.Equal(t, "RAM Usage", history.Snapshots[0].Metrics[0].Name)

	log.Info("======== 7. The ticker device should follow the collector's symbols")
	require.Equal(t, []string{"AAPL Price"}, getTickerNames(t, collectorURL, token, guid))

	body, _ := json.Marshal(map[string][]string{"symbols": {"MSFT", "AAPL"}})
	code = doRequest(t, http.MethodPut, collectorURL+"/api/symbols", token, body, nil)
	require.Equal(t, http.StatusOK, code)

	time.Sleep(2500 * time.Millisecond)
	require.Equal(t, []string{"AAPL Price", "MSFT Price"}, getTickerNames(t, collectorURL, token, guid))

	code = doRequest(t, http.MethodDelete, collectorURL+"/api/symbols/AAPL", token, nil, nil)
	require.Equal(t, http.StatusOK, code)

	time.Sleep(2500 * time.Millisecond)
	require.Equal(t, []string{"MSFT Price"}, getTickerNames(t, collectorURL, token, guid))
}

func TestE2EUnreachableCollectorKeepsSnapshotsQueued(t *testing.T) {
	log.Info("======== 1. Reserve an address for a collector that is not running yet")
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := ln.Addr().String()
	_ = ln.Close()

	log.Info("======== 2. Create the agent and run its cycles manually")
	agentHandler, err := agentFactory.NewComponentsHandler("test-service-key", createAgentConfig("http://"+address))
	require.NoError(t, err)

	ctx := context.Background()
	engine := agentHandler.GetEngine()
	aggregator := agentHandler.GetAggregator()

	engine.Process(ctx)
	engine.Process(ctx)
	require.Equal(t, 2, aggregator.PendingLen())

	log.Info("======== 3. Start the collector, the next cycle should flush the queue")
	closeCollector, collectorURL := startCollector(t, address, nil)
	defer closeCollector()

	engine.Process(ctx)
	require.Equal(t, 0, aggregator.PendingLen())

	token := login(t, collectorURL)
	var history snapshotsHistory
	code := doRequest(t, http.MethodGet,
		collectorURL+"/api/machines/"+aggregator.MachineID().String()+"/devices/system/snapshots", token, nil, &history)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, history.Snapshots, 3)
	// oldest first, in capture order
	require.True(t, history.Snapshots[0].CapturedAt <= history.Snapshots[1].CapturedAt)
	require.True(t, history.Snapshots[1].CapturedAt <= history.Snapshots[2].CapturedAt)
}

func TestE2ERejectedSnapshotsAreDropped(t *testing.T) {
	log.Info("======== 1. Start the collector service")
	closeCollector, collectorURL := startCollector(t, "127.0.0.1:0", nil)
	defer closeCollector()

	log.Info("======== 2. Create an agent with a service key the collector does not accept")
	agentHandler, err := agentFactory.NewComponentsHandler("wrong-service-key", createAgentConfig(collectorURL))
	require.NoError(t, err)

	ctx := context.Background()
	agentHandler.GetEngine().Process(ctx)
	agentHandler.GetEngine().Process(ctx)
	require.Equal(t, 0, agentHandler.GetAggregator().PendingLen())

	log.Info("======== 3. Nothing should have been stored")
	token := login(t, collectorURL)
	var machines machinesResponse
	code := doRequest(t, http.MethodGet, collectorURL+"/api/machines", token, nil, &machines)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, machines.Machines)
}
