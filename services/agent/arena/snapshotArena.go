package arena

import (
	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
)

// snapshotArena owns every captured snapshot that is not resolved yet. Device histories and the
// pending queue only hold snapshot IDs pointing here.
type snapshotArena struct {
	lastID    common.SnapshotID
	snapshots map[common.SnapshotID]common.Snapshot
}

// NewSnapshotArena creates an empty snapshot arena
func NewSnapshotArena() *snapshotArena {
	return &snapshotArena{
		snapshots: make(map[common.SnapshotID]common.Snapshot),
	}
}

// Store assigns a new ID to the snapshot, keeps a private copy and returns it
func (a *snapshotArena) Store(snapshot common.Snapshot) common.Snapshot {
	a.lastID++
	snapshot.ID = a.lastID
	snapshot.Metrics = copyMetrics(snapshot.Metrics)
	a.snapshots[snapshot.ID] = snapshot

	return cloneSnapshot(snapshot)
}

// Get returns a copy of the snapshot with the provided ID
func (a *snapshotArena) Get(id common.SnapshotID) (common.Snapshot, bool) {
	snapshot, found := a.snapshots[id]
	if !found {
		return common.Snapshot{}, false
	}

	return cloneSnapshot(snapshot), true
}

// Contains returns true if the arena still holds the snapshot
func (a *snapshotArena) Contains(id common.SnapshotID) bool {
	_, found := a.snapshots[id]
	return found
}

// Release removes the snapshot from the arena. Returns false if it was not present
func (a *snapshotArena) Release(id common.SnapshotID) bool {
	_, found := a.snapshots[id]
	delete(a.snapshots, id)

	return found
}

// Len returns the number of stored snapshots
func (a *snapshotArena) Len() int {
	return len(a.snapshots)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (a *snapshotArena) IsInterfaceNil() bool {
	return a == nil
}

func cloneSnapshot(snapshot common.Snapshot) common.Snapshot {
	snapshot.Metrics = copyMetrics(snapshot.Metrics)
	return snapshot
}

func copyMetrics(metrics []common.Metric) []common.Metric {
	result := make([]common.Metric, len(metrics))
	copy(result, metrics)

	return result
}
