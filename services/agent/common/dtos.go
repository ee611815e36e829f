package common

import (
	"time"
)

// SnapshotID identifies a snapshot stored in the snapshot arena
type SnapshotID uint64

// SourceID is the tagged identity of a metric source, compared by value
type SourceID struct {
	Kind  string
	Param string
}

// String returns the human-readable form of the source identity
func (id SourceID) String() string {
	if len(id.Param) == 0 {
		return id.Kind
	}

	return id.Kind + ":" + id.Param
}

// Metric is a single named numeric reading
type Metric struct {
	Name  string
	Value float64
}

// Snapshot is an immutable, timestamped bundle of metrics captured together for one device
type Snapshot struct {
	ID           SnapshotID
	CapturedAt   time.Time
	TimezoneMins int
	Metrics      []Metric
}

// PendingEntry references a snapshot of a device that still awaits delivery
type PendingEntry struct {
	DeviceName string
	SnapshotID SnapshotID
}

// DeliveryReport holds the outcome counters of one delivery cycle
type DeliveryReport struct {
	Delivered int
	Dropped   int
	Requeued  int
}

// AggregatorPayload is the payload sent to the remote collector
type AggregatorPayload struct {
	GUID    string          `json:"guid"`
	Name    string          `json:"name"`
	Devices []DevicePayload `json:"devices"`
}

// DevicePayload is the device entry of the outbound payload
type DevicePayload struct {
	Name      string            `json:"name"`
	Snapshots []SnapshotPayload `json:"snapshots"`
}

// SnapshotPayload is the snapshot entry of the outbound payload
type SnapshotPayload struct {
	TimestampCapture time.Time       `json:"timestamp_capture"`
	TimezoneMins     int             `json:"timezone_mins"`
	Metrics          []MetricPayload `json:"metrics"`
}

// MetricPayload defines a recorded metric value
type MetricPayload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// NewSnapshotPayload converts a captured snapshot into its wire shape
func NewSnapshotPayload(snapshot Snapshot) SnapshotPayload {
	metrics := make([]MetricPayload, 0, len(snapshot.Metrics))
	for _, m := range snapshot.Metrics {
		metrics = append(metrics, MetricPayload{
			Name:  m.Name,
			Value: m.Value,
		})
	}

	return SnapshotPayload{
		TimestampCapture: snapshot.CapturedAt,
		TimezoneMins:     snapshot.TimezoneMins,
		Metrics:          metrics,
	}
}
