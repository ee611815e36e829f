package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iulianpascalau/snapshot-agent/services/collector/common"
	"github.com/iulianpascalau/snapshot-agent/services/collector/storage"
	"github.com/stretchr/testify/require"
)

const testGUID = "6f1c0a52-7c0e-4a7e-9d43-0d3a2f2f9b11"

func setupTestServer(t *testing.T) (*server, Storage) {
	store, err := storage.NewSQLiteStorage(":memory:", 100)
	require.NoError(t, err)

	args := ArgsWebServer{
		ServiceKeyApi:  "test-secret",
		AuthUsername:   "admin",
		AuthPassword:   "password",
		ListenAddress:  ":0",
		Storage:        store,
		GeneralHandler: func(h http.Handler) http.Handler { return h },
	}

	serv, err := NewServer(args)
	require.NoError(t, err)

	return serv, store
}

func createTestPayload(capturedAt time.Time) common.SnapshotsPayload {
	return common.SnapshotsPayload{
		GUID: testGUID,
		Name: "vm1",
		Devices: []common.DevicePayload{
			{
				Name: "system",
				Snapshots: []common.SnapshotPayload{
					{
						TimestampCapture: capturedAt,
						TimezoneMins:     -300,
						Metrics: []common.MetricPayload{
							{Name: "CPU Percent", Value: 12.5},
						},
					},
				},
			},
		},
	}
}

func getValidToken(serv *server) string {
	loginBody := `{"username":"admin", "password":"password"}`
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer([]byte(loginBody)))
	w := httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)

	var loginResp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &loginResp)
	return loginResp["token"]
}

func TestSnapshotsEndpoint(t *testing.T) {
	serv, store := setupTestServer(t)
	defer func() {
		_ = store.Close()
	}()

	now := time.Now()
	body, _ := json.Marshal(createTestPayload(now))

	// Test Unauthenticated
	req, _ := http.NewRequest("POST", "/api/snapshots", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Test Authenticated
	req, _ = http.NewRequest("POST", "/api/snapshots", bytes.NewBuffer(body))
	req.Header.Set("X-Api-Key", "test-secret")
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"stored":1`)

	// Verify it reached DB
	hist, err := store.GetSnapshots(context.Background(), testGUID, "system", 10)
	require.NoError(t, err)
	require.Len(t, hist.Snapshots, 1)
	require.Equal(t, now.UnixMilli(), hist.Snapshots[0].CapturedAt)
	require.Equal(t, -300, hist.Snapshots[0].TimezoneMins)
	require.Equal(t, []common.MetricValue{{Name: "CPU Percent", Value: 12.5}}, hist.Snapshots[0].Metrics)
}

func TestSnapshotsEndpoint_RejectedPayloads(t *testing.T) {
	serv, store := setupTestServer(t)
	defer func() {
		_ = store.Close()
	}()

	tests := []struct {
		name   string
		mutate func(payload *common.SnapshotsPayload)
	}{
		{"invalid guid", func(payload *common.SnapshotsPayload) { payload.GUID = "not-a-uuid" }},
		{"no devices", func(payload *common.SnapshotsPayload) { payload.Devices = nil }},
		{"empty device name", func(payload *common.SnapshotsPayload) { payload.Devices[0].Name = " " }},
		{"no snapshots", func(payload *common.SnapshotsPayload) { payload.Devices[0].Snapshots = nil }},
		{"no metrics", func(payload *common.SnapshotsPayload) { payload.Devices[0].Snapshots[0].Metrics = nil }},
		{"empty metric name", func(payload *common.SnapshotsPayload) { payload.Devices[0].Snapshots[0].Metrics[0].Name = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := createTestPayload(time.Now())
			tt.mutate(&payload)
			body, _ := json.Marshal(payload)

			req, _ := http.NewRequest("POST", "/api/snapshots", bytes.NewBuffer(body))
			req.Header.Set("X-Api-Key", "test-secret")
			w := httptest.NewRecorder()
			serv.router.ServeHTTP(w, req)
			require.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	machines, err := store.GetMachines(context.Background())
	require.NoError(t, err)
	require.Empty(t, machines)
}

func TestSnapshotsEndpoint_BadPayload(t *testing.T) {
	serv, store := setupTestServer(t)
	defer func() {
		_ = store.Close()
	}()

	badJSON := []byte(`{"devices": { bad format }}`)
	req, _ := http.NewRequest("POST", "/api/snapshots", bytes.NewBuffer(badJSON))
	req.Header.Set("X-Api-Key", "test-secret")
	w := httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginAndGetMachines(t *testing.T) {
	serv, store := setupTestServer(t)
	defer func() {
		_ = store.Close()
	}()

	// Seed DB
	_, err := store.SaveSnapshots(context.Background(), createTestPayload(time.Now()), time.Now().UnixMilli())
	require.NoError(t, err)

	token := getValidToken(serv)
	require.NotEmpty(t, token)

	req, _ := http.NewRequest("GET", "/api/machines", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var machinesResp struct {
		Machines []common.Machine `json:"machines"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &machinesResp)
	require.Len(t, machinesResp.Machines, 1)
	require.Equal(t, testGUID, machinesResp.Machines[0].GUID)
	require.Equal(t, "vm1", machinesResp.Machines[0].Name)
	require.Equal(t, []string{"system"}, machinesResp.Machines[0].Devices)
}

func TestGetSnapshots(t *testing.T) {
	serv, store := setupTestServer(t)
	defer func() {
		_ = store.Close()
	}()

	now := time.Now()
	_, err := store.SaveSnapshots(context.Background(), createTestPayload(now.Add(-time.Second)), now.UnixMilli())
	require.NoError(t, err)
	_, err = store.SaveSnapshots(context.Background(), createTestPayload(now), now.UnixMilli())
	require.NoError(t, err)

	token := getValidToken(serv)

	t.Run("should return the history", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/machines/"+testGUID+"/devices/system/snapshots", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		serv.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var hist common.SnapshotHistory
		_ = json.Unmarshal(w.Body.Bytes(), &hist)
		require.Len(t, hist.Snapshots, 2)
		require.Equal(t, "system", hist.Device)
	})
	t.Run("limit should apply", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/machines/"+testGUID+"/devices/system/snapshots?limit=1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		serv.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var hist common.SnapshotHistory
		_ = json.Unmarshal(w.Body.Bytes(), &hist)
		require.Len(t, hist.Snapshots, 1)
		require.Equal(t, now.UnixMilli(), hist.Snapshots[0].CapturedAt)
	})
	t.Run("invalid limit should error", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/machines/"+testGUID+"/devices/system/snapshots?limit=zero", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		serv.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
	t.Run("unknown machine should return not found", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/machines/unknown/devices/system/snapshots", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		serv.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSymbolsEndpoints(t *testing.T) {
	serv, store := setupTestServer(t)
	defer func() {
		_ = store.Close()
	}()

	token := getValidToken(serv)

	getSymbols := func() []string {
		req, _ := http.NewRequest("GET", "/api/symbols", nil)
		req.Header.Set("X-Api-Key", "test-secret")
		w := httptest.NewRecorder()
		serv.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp SymbolsPayload
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		return resp.Symbols
	}

	// 1. Empty list is still an array
	require.Equal(t, []string{}, getSymbols())

	// 2. The agent key can not change the symbols
	req, _ := http.NewRequest("PUT", "/api/symbols", bytes.NewBuffer([]byte(`{"symbols":["AAPL"]}`)))
	req.Header.Set("X-Api-Key", "test-secret")
	w := httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// 3. Replace the symbols
	req, _ = http.NewRequest("PUT", "/api/symbols", bytes.NewBuffer([]byte(`{"symbols":["AAPL","MSFT"]}`)))
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"AAPL", "MSFT"}, getSymbols())

	// 4. Delete one symbol
	req, _ = http.NewRequest("DELETE", "/api/symbols/AAPL", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"MSFT"}, getSymbols())

	// 5. Deleting it again is not found
	req, _ = http.NewRequest("DELETE", "/api/symbols/AAPL", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	// 6. Symbols API requires the agent key
	req, _ = http.NewRequest("GET", "/api/symbols", nil)
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	serv, store := setupTestServer(t)
	defer func() {
		_ = store.Close()
	}()

	req, _ := http.NewRequest("GET", "/api/machines", nil)
	req.Header.Set("Authorization", "Bearer not-a-valid-token")
	w := httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	serv, store := setupTestServer(t)
	defer func() {
		_ = store.Close()
	}()

	req, _ := http.NewRequest("GET", "/api/unknown", nil)
	w := httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}
