package common

import "time"

// SnapshotsPayload is the body posted by the agents on /api/snapshots
type SnapshotsPayload struct {
	GUID    string          `json:"guid"`
	Name    string          `json:"name"`
	Devices []DevicePayload `json:"devices"`
}

// DevicePayload holds the snapshots of one device
type DevicePayload struct {
	Name      string            `json:"name"`
	Snapshots []SnapshotPayload `json:"snapshots"`
}

// SnapshotPayload is one captured snapshot
type SnapshotPayload struct {
	TimestampCapture time.Time       `json:"timestamp_capture"`
	TimezoneMins     int             `json:"timezone_mins"`
	Metrics          []MetricPayload `json:"metrics"`
}

// MetricPayload is one named metric value
type MetricPayload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Machine describes a machine that delivered at least once
type Machine struct {
	GUID     string   `json:"guid"`
	Name     string   `json:"name"`
	LastSeen int64    `json:"lastSeen"`
	Devices  []string `json:"devices"`
}

// MetricValue is a stored metric value
type MetricValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// StoredSnapshot is a snapshot as kept by the collector. Times are unix milliseconds
type StoredSnapshot struct {
	CapturedAt   int64         `json:"capturedAt"`
	TimezoneMins int           `json:"timezoneMins"`
	ReceivedAt   int64         `json:"receivedAt"`
	Metrics      []MetricValue `json:"metrics"`
}

// SnapshotHistory holds the retained snapshots of a machine's device, oldest first
type SnapshotHistory struct {
	GUID      string           `json:"guid"`
	Device    string           `json:"device"`
	Snapshots []StoredSnapshot `json:"snapshots"`
}
