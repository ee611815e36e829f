package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/iulianpascalau/snapshot-agent/services/collector/common"
	_ "github.com/mattn/go-sqlite3"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("storage")

// sqliteStorage is the sqlite implementation for snapshots storage
type sqliteStorage struct {
	db               *sql.DB
	retentionSeconds int
	cancelFunc       context.CancelFunc
	wg               sync.WaitGroup
}

// NewSQLiteStorage creates the database, schema, and starts the retention cleaner
func NewSQLiteStorage(dbPath string, retentionSeconds int) (*sqliteStorage, error) {
	err := prepareDirectories(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial empty DB file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps in-memory databases shared and serializes the writers
	db.SetMaxOpenConns(1)

	err = createSchema(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &sqliteStorage{
		db:               db,
		retentionSeconds: retentionSeconds,
		cancelFunc:       cancel,
	}

	s.startRetentionCleaner(ctx)

	return s, nil
}

func prepareDirectories(dbPath string) error {
	return os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
}

// cleanRetainedSnapshots executes the retention cleanup query synchronously
func (s *sqliteStorage) cleanRetainedSnapshots(ctx context.Context) error {
	cutoff := time.Now().Add(-time.Duration(s.retentionSeconds) * time.Second).UnixNano()
	res, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE captured_at < ?", cutoff)
	if err != nil {
		return err
	}

	numDeleted, _ := res.RowsAffected()
	log.Debug("retention cleanup done", "deleted snapshots", numDeleted)

	return nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS machines (
		guid      TEXT    NOT NULL PRIMARY KEY,
		name      TEXT    NOT NULL,
		last_seen INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		machine_guid  TEXT    NOT NULL REFERENCES machines(guid) ON DELETE CASCADE,
		device_name   TEXT    NOT NULL,
		-- unix nanoseconds, the capture time identifies a snapshot of a device
		captured_at   INTEGER NOT NULL,
		timezone_mins INTEGER NOT NULL,
		received_at   INTEGER NOT NULL,
		UNIQUE (machine_guid, device_name, captured_at)
	);

	CREATE TABLE IF NOT EXISTS metric_values (
		snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		name        TEXT    NOT NULL,
		value       REAL    NOT NULL
	);

	CREATE TABLE IF NOT EXISTS symbols (
		symbol   TEXT    NOT NULL PRIMARY KEY,
		position INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_device ON snapshots(machine_guid, device_name);
	CREATE INDEX IF NOT EXISTS idx_snapshots_captured_at ON snapshots(captured_at);
	CREATE INDEX IF NOT EXISTS idx_metric_values_snapshot ON metric_values(snapshot_id);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveSnapshots upserts the machine and inserts all snapshots with their metric values. Snapshots already
// stored for the same machine, device and capture time are skipped, so a redelivery is harmless
func (s *sqliteStorage) SaveSnapshots(ctx context.Context, payload common.SnapshotsPayload, receivedAt int64) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO machines (guid, name, last_seen)
		VALUES (?, ?, ?)
		ON CONFLICT(guid) DO UPDATE SET
			name=excluded.name,
			last_seen=excluded.last_seen
	`, payload.GUID, payload.Name, receivedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert machine: %w", err)
	}

	numStored := 0
	for _, device := range payload.Devices {
		for _, snapshot := range device.Snapshots {
			stored, errSave := saveSnapshot(ctx, tx, payload.GUID, device.Name, snapshot, receivedAt)
			if errSave != nil {
				return 0, errSave
			}
			if stored {
				numStored++
			}
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, err
	}

	return numStored, nil
}

func saveSnapshot(
	ctx context.Context,
	tx *sql.Tx,
	guid string,
	device string,
	snapshot common.SnapshotPayload,
	receivedAt int64,
) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (machine_guid, device_name, captured_at, timezone_mins, received_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(machine_guid, device_name, captured_at) DO NOTHING
	`, guid, device, snapshot.TimestampCapture.UnixNano(), snapshot.TimezoneMins, receivedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	numRows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if numRows == 0 {
		log.Debug("snapshot already stored", "guid", guid, "device", device,
			"captured at", snapshot.TimestampCapture)
		return false, nil
	}

	snapshotID, err := res.LastInsertId()
	if err != nil {
		return false, err
	}

	for position, metric := range snapshot.Metrics {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO metric_values (snapshot_id, position, name, value)
			VALUES (?, ?, ?, ?)
		`, snapshotID, position, metric.Name, metric.Value)
		if err != nil {
			return false, fmt.Errorf("failed to insert metric value: %w", err)
		}
	}

	return true, nil
}

// GetMachines returns every known machine together with the devices it delivered snapshots for
func (s *sqliteStorage) GetMachines(ctx context.Context) ([]common.Machine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.guid, m.name, m.last_seen, d.device_name
		FROM machines m
		LEFT JOIN (
			SELECT DISTINCT machine_guid, device_name FROM snapshots
		) d ON m.guid = d.machine_guid
		ORDER BY m.name, m.guid, d.device_name
	`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	results := make([]common.Machine, 0)
	for rows.Next() {
		var m common.Machine
		var device sql.NullString

		err = rows.Scan(&m.GUID, &m.Name, &m.LastSeen, &device)
		if err != nil {
			return nil, err
		}

		last := len(results) - 1
		if last < 0 || results[last].GUID != m.GUID {
			m.Devices = make([]string, 0)
			results = append(results, m)
			last++
		}
		if device.Valid {
			results[last].Devices = append(results[last].Devices, device.String)
		}
	}

	return results, rows.Err()
}

// GetSnapshots returns the most recent snapshots of the device, capped at limit, in ascending capture order
func (s *sqliteStorage) GetSnapshots(ctx context.Context, guid string, device string, limit int) (*common.SnapshotHistory, error) {
	var found int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM machines WHERE guid = ?", guid).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrMachineNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.captured_at / 1000000, s.timezone_mins, s.received_at, v.name, v.value
		FROM snapshots s
		LEFT JOIN metric_values v ON v.snapshot_id = s.id
		WHERE s.id IN (
			SELECT id FROM snapshots
			WHERE machine_guid = ? AND device_name = ?
			ORDER BY captured_at DESC
			LIMIT ?
		)
		ORDER BY s.captured_at, s.id, v.position
	`, guid, device, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	h := &common.SnapshotHistory{
		GUID:      guid,
		Device:    device,
		Snapshots: make([]common.StoredSnapshot, 0),
	}
	lastID := int64(-1)
	for rows.Next() {
		var id int64
		var snapshot common.StoredSnapshot
		var name sql.NullString
		var value sql.NullFloat64

		err = rows.Scan(&id, &snapshot.CapturedAt, &snapshot.TimezoneMins, &snapshot.ReceivedAt, &name, &value)
		if err != nil {
			return nil, err
		}

		if id != lastID {
			snapshot.Metrics = make([]common.MetricValue, 0)
			h.Snapshots = append(h.Snapshots, snapshot)
			lastID = id
		}
		if name.Valid {
			current := &h.Snapshots[len(h.Snapshots)-1]
			current.Metrics = append(current.Metrics, common.MetricValue{Name: name.String, Value: value.Float64})
		}
	}

	return h, rows.Err()
}

// GetSymbols returns the tracked symbols
func (s *sqliteStorage) GetSymbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT symbol FROM symbols ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	symbols := make([]string, 0)
	for rows.Next() {
		var symbol string
		if err = rows.Scan(&symbol); err != nil {
			return nil, err
		}
		symbols = append(symbols, symbol)
	}

	return symbols, rows.Err()
}

// SetSymbols replaces the tracked symbols. Blank entries and duplicates are dropped
func (s *sqliteStorage) SetSymbols(ctx context.Context, symbols []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, "DELETE FROM symbols")
	if err != nil {
		return err
	}

	for position, symbol := range normalizeSymbols(symbols) {
		_, err = tx.ExecContext(ctx, "INSERT INTO symbols (symbol, position) VALUES (?, ?)", symbol, position)
		if err != nil {
			return fmt.Errorf("failed to insert symbol: %w", err)
		}
	}

	return tx.Commit()
}

// SeedSymbols stores the provided symbols only if no symbol is tracked yet
func (s *sqliteStorage) SeedSymbols(ctx context.Context, symbols []string) error {
	var numSymbols int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM symbols").Scan(&numSymbols)
	if err != nil {
		return err
	}
	if numSymbols > 0 {
		return nil
	}

	return s.SetSymbols(ctx, symbols)
}

// DeleteSymbol removes a tracked symbol
func (s *sqliteStorage) DeleteSymbol(ctx context.Context, symbol string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM symbols WHERE symbol = ?", symbol)
	if err != nil {
		return err
	}

	numRows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if numRows == 0 {
		return common.ErrSymbolNotFound
	}

	return nil
}

func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	result := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.TrimSpace(symbol)
		if len(symbol) == 0 {
			continue
		}
		if _, exists := seen[symbol]; exists {
			continue
		}

		seen[symbol] = struct{}{}
		result = append(result, symbol)
	}

	return result
}

func (s *sqliteStorage) startRetentionCleaner(ctx context.Context) {
	s.wg.Add(1)

	// max(RetentionSeconds/10, 60)
	intervalSec := s.retentionSeconds / 10
	if intervalSec < 60 {
		intervalSec = 60
	}

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)

	go func() {
		defer s.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := s.cleanRetainedSnapshots(ctx)
				if err != nil {
					log.Warn("failed to cleanup retained snapshots", "error", err)
				}
			}
		}
	}()
}

// Close closes the database and stops background routines
func (s *sqliteStorage) Close() error {
	s.cancelFunc()
	s.wg.Wait()
	return s.db.Close()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *sqliteStorage) IsInterfaceNil() bool {
	return s == nil
}
