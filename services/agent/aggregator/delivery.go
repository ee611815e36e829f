package aggregator

import (
	"context"
	"errors"
	"net/http"

	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
)

// Deliver drains the pending queue in FIFO order, sending one snapshot per request.
// A transport failure requeues the entry at the front and stops the cycle, a rejecting response or a payload
// that can not be sent drops the snapshot and the cycle continues with the next entry. An expired context
// stops the cycle leaving the remaining entries queued.
func (a *aggregator) Deliver(ctx context.Context, endpoint string) common.DeliveryReport {
	report := common.DeliveryReport{}
	if len(a.pending) == 0 {
		a.log.Debug("no data to deliver")
		return report
	}

	a.log.Debug("delivering pending snapshots", "queue length", len(a.pending), "endpoint", endpoint)

	for len(a.pending) > 0 {
		if ctx.Err() != nil {
			a.log.Warn("delivery budget exhausted, remaining snapshots stay queued",
				"queue length", len(a.pending), "error", ctx.Err())
			return report
		}

		entry := a.pending[0]
		a.pending = a.pending[1:]

		d, snapshot, found := a.resolve(entry)
		if !found {
			a.log.Error("pending entry references a missing snapshot, discarding",
				"device", entry.DeviceName, "snapshot", entry.SnapshotID)
			report.Dropped++
			continue
		}

		payload := a.createPayload(entry.DeviceName, snapshot)
		statusCode, err := a.sender.Send(ctx, endpoint, payload)
		if errors.Is(err, common.ErrPayloadNotSendable) {
			d.RemoveSnapshot(entry.SnapshotID)
			report.Dropped++
			a.log.Error("snapshot can not be sent, dropping it",
				"device", entry.DeviceName, "snapshot", entry.SnapshotID, "error", err)
			continue
		}
		if err != nil {
			a.pending = append([]common.PendingEntry{entry}, a.pending...)
			report.Requeued++

			a.log.Warn("collector unreachable, snapshot requeued and delivery postponed",
				"device", entry.DeviceName, "snapshot", entry.SnapshotID,
				"queue length", len(a.pending), "error", err)
			return report
		}

		d.RemoveSnapshot(entry.SnapshotID)
		if !isSuccessStatus(statusCode) {
			report.Dropped++
			a.log.Error("collector rejected snapshot, dropping it",
				"device", entry.DeviceName, "snapshot", entry.SnapshotID,
				"status code", statusCode, "status", http.StatusText(statusCode))
			continue
		}

		report.Delivered++
		a.log.Debug("snapshot delivered", "device", entry.DeviceName, "snapshot", entry.SnapshotID)
	}

	a.log.Debug("delivery completed", "delivered", report.Delivered, "dropped", report.Dropped)

	return report
}

func (a *aggregator) resolve(entry common.PendingEntry) (Device, common.Snapshot, bool) {
	d, found := a.devicesMap[entry.DeviceName]
	if !found {
		a.arena.Release(entry.SnapshotID)
		return nil, common.Snapshot{}, false
	}

	snapshot, found := a.arena.Get(entry.SnapshotID)
	if !found {
		d.RemoveSnapshot(entry.SnapshotID)
		return nil, common.Snapshot{}, false
	}

	return d, snapshot, true
}

func (a *aggregator) createPayload(deviceName string, snapshot common.Snapshot) common.AggregatorPayload {
	return common.AggregatorPayload{
		GUID: a.machineID.String(),
		Name: a.machineName,
		Devices: []common.DevicePayload{
			{
				Name:      deviceName,
				Snapshots: []common.SnapshotPayload{common.NewSnapshotPayload(snapshot)},
			},
		},
	}
}

func isSuccessStatus(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}
