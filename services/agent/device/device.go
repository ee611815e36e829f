package device

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

// ArgsDevice holds the arguments needed to create a device
type ArgsDevice struct {
	Name        string
	Arena       SnapshotArena
	Log         logger.Logger
	TimeHandler func() time.Time
}

type device struct {
	name        string
	arena       SnapshotArena
	log         logger.Logger
	timeHandler func() time.Time
	sources     []common.MetricSource
	history     []common.SnapshotID
}

// NewDevice creates a new device without any registered metric source
func NewDevice(args ArgsDevice) (*device, error) {
	if len(args.Name) == 0 {
		return nil, common.ErrEmptyDeviceName
	}
	if check.IfNil(args.Arena) {
		return nil, common.ErrNilSnapshotArena
	}
	if check.IfNil(args.Log) {
		return nil, common.ErrNilLogger
	}

	timeHandler := args.TimeHandler
	if timeHandler == nil {
		timeHandler = time.Now
	}

	return &device{
		name:        args.Name,
		arena:       args.Arena,
		log:         args.Log,
		timeHandler: timeHandler,
	}, nil
}

// Name returns the device name
func (d *device) Name() string {
	return d.name
}

// RegisterSource appends the metric source at the end of the capture order
func (d *device) RegisterSource(source common.MetricSource) error {
	if check.IfNil(source) {
		return common.ErrNilMetricSource
	}

	id := source.ID()
	if d.indexOf(id) >= 0 {
		return fmt.Errorf("%w: %s on device %s", common.ErrDuplicateSource, id, d.name)
	}

	d.sources = append(d.sources, source)
	d.log.Debug("registered metric source", "device", d.name, "source", id.String())

	return nil
}

// DeregisterSource removes the metric source with the provided identity, preserving the order of the others
func (d *device) DeregisterSource(id common.SourceID) bool {
	idx := d.indexOf(id)
	if idx < 0 {
		return false
	}

	d.sources = append(d.sources[:idx], d.sources[idx+1:]...)
	d.log.Debug("deregistered metric source", "device", d.name, "source", id.String())

	return true
}

// SourceIDs returns the identities of the registered sources, in capture order
func (d *device) SourceIDs() []common.SourceID {
	ids := make([]common.SourceID, 0, len(d.sources))
	for _, source := range d.sources {
		ids = append(ids, source.ID())
	}

	return ids
}

// Capture reads every registered source once and, if at least one reading succeeded, stores a new
// snapshot and appends it to the device history. Unavailable and non-finite readings are skipped.
func (d *device) Capture(ctx context.Context) (common.Snapshot, bool) {
	metrics := make([]common.Metric, 0, len(d.sources))
	for _, source := range d.sources {
		metric, err := source.Read(ctx)
		if err != nil {
			d.log.Warn("metric source unavailable", "device", d.name, "source", source.ID().String(), "error", err)
			continue
		}
		if math.IsNaN(metric.Value) || math.IsInf(metric.Value, 0) {
			d.log.Warn("metric source unavailable", "device", d.name, "source", source.ID().String(),
				"error", fmt.Errorf("%w: non-finite value %v", common.ErrSourceUnavailable, metric.Value))
			continue
		}

		metrics = append(metrics, metric)
	}

	if len(metrics) == 0 {
		d.log.Info("nothing captured", "device", d.name, "num sources", len(d.sources))
		return common.Snapshot{}, false
	}

	now := d.timeHandler()
	_, offsetInSeconds := now.Zone()

	snapshot := d.arena.Store(common.Snapshot{
		CapturedAt:   now,
		TimezoneMins: offsetInSeconds / 60,
		Metrics:      metrics,
	})
	d.history = append(d.history, snapshot.ID)

	d.log.Debug("snapshot captured", "device", d.name, "snapshot", snapshot.ID, "num metrics", len(metrics))

	return snapshot, true
}

// History returns the IDs of the snapshots not yet resolved, oldest first
func (d *device) History() []common.SnapshotID {
	history := make([]common.SnapshotID, len(d.history))
	copy(history, d.history)

	return history
}

// RemoveSnapshot drops the snapshot from the device history and releases it from the arena
func (d *device) RemoveSnapshot(id common.SnapshotID) bool {
	for idx, historyID := range d.history {
		if historyID != id {
			continue
		}

		d.history = append(d.history[:idx], d.history[idx+1:]...)
		d.arena.Release(id)

		return true
	}

	return false
}

func (d *device) indexOf(id common.SourceID) int {
	for idx, source := range d.sources {
		if source.ID() == id {
			return idx
		}
	}

	return -1
}

// IsInterfaceNil returns true if the value under the interface is nil
func (d *device) IsInterfaceNil() bool {
	return d == nil
}
