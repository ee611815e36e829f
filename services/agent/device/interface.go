package device

import "github.com/iulianpascalau/snapshot-agent/services/agent/common"

// SnapshotArena defines the storage shared by the device histories and the pending queue
type SnapshotArena interface {
	Store(snapshot common.Snapshot) common.Snapshot
	Get(id common.SnapshotID) (common.Snapshot, bool)
	Contains(id common.SnapshotID) bool
	Release(id common.SnapshotID) bool
	Len() int
	IsInterfaceNil() bool
}
