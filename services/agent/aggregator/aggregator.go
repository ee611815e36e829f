package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iulianpascalau/snapshot-agent/services/agent/arena"
	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
	"github.com/iulianpascalau/snapshot-agent/services/agent/device"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

// ArgsAggregator holds the arguments needed to create an aggregator
type ArgsAggregator struct {
	MachineID   uuid.UUID
	MachineName string
	Sender      Sender
	Log         logger.Logger
	TimeHandler func() time.Time
}

// aggregator owns the machine identity, the devices and the pending-delivery queue.
// It is not safe for concurrent use: one capture/deliver cycle runs at a time.
type aggregator struct {
	machineID   uuid.UUID
	machineName string
	sender      Sender
	log         logger.Logger
	timeHandler func() time.Time
	arena       device.SnapshotArena
	devices     []Device
	devicesMap  map[string]Device
	pending     []common.PendingEntry
}

// NewAggregator creates a new aggregator without devices
func NewAggregator(args ArgsAggregator) (*aggregator, error) {
	if args.MachineID == uuid.Nil {
		return nil, errNilMachineID
	}
	if len(args.MachineName) == 0 {
		return nil, errEmptyMachineName
	}
	if check.IfNil(args.Sender) {
		return nil, errNilSender
	}
	if check.IfNil(args.Log) {
		return nil, common.ErrNilLogger
	}

	return &aggregator{
		machineID:   args.MachineID,
		machineName: args.MachineName,
		sender:      args.Sender,
		log:         args.Log,
		timeHandler: args.TimeHandler,
		arena:       arena.NewSnapshotArena(),
		devicesMap:  make(map[string]Device),
	}, nil
}

// AddDevice creates a new device sharing the aggregator's snapshot arena and registers it.
// Devices are captured in the order they were added.
func (a *aggregator) AddDevice(name string) (Device, error) {
	_, exists := a.devicesMap[name]
	if exists {
		return nil, fmt.Errorf("%w: %s", common.ErrDuplicateDevice, name)
	}

	d, err := device.NewDevice(device.ArgsDevice{
		Name:        name,
		Arena:       a.arena,
		Log:         a.log,
		TimeHandler: a.timeHandler,
	})
	if err != nil {
		return nil, err
	}

	a.devices = append(a.devices, d)
	a.devicesMap[name] = d
	a.log.Debug("registered device", "name", name)

	return d, nil
}

// Device returns the registered device with the provided name
func (a *aggregator) Device(name string) (Device, bool) {
	d, found := a.devicesMap[name]
	return d, found
}

// Devices returns the registered devices in registration order
func (a *aggregator) Devices() []Device {
	devices := make([]Device, len(a.devices))
	copy(devices, a.devices)

	return devices
}

// MachineID returns the machine identity
func (a *aggregator) MachineID() uuid.UUID {
	return a.machineID
}

// MachineName returns the machine name
func (a *aggregator) MachineName() string {
	return a.machineName
}

// Capture captures every device in registration order and queues the produced snapshots.
// Returns the number of newly queued snapshots.
func (a *aggregator) Capture(ctx context.Context) int {
	numQueued := 0
	for _, d := range a.devices {
		snapshot, captured := d.Capture(ctx)
		if !captured {
			continue
		}

		a.pending = append(a.pending, common.PendingEntry{
			DeviceName: d.Name(),
			SnapshotID: snapshot.ID,
		})
		numQueued++
	}

	a.log.Debug("capture completed", "queued", numQueued, "queue length", len(a.pending))

	return numQueued
}

// PendingLen returns the number of snapshots awaiting delivery
func (a *aggregator) PendingLen() int {
	return len(a.pending)
}

// Pending returns a copy of the pending queue, head first
func (a *aggregator) Pending() []common.PendingEntry {
	pending := make([]common.PendingEntry, len(a.pending))
	copy(pending, a.pending)

	return pending
}

// CheckConsistency verifies that the pending queue and the device histories reference exactly the same
// snapshots and that the arena holds nothing else
func (a *aggregator) CheckConsistency() error {
	queued := make(map[common.SnapshotID]string, len(a.pending))
	for _, entry := range a.pending {
		_, duplicated := queued[entry.SnapshotID]
		if duplicated {
			return fmt.Errorf("snapshot %d is queued more than once", entry.SnapshotID)
		}
		queued[entry.SnapshotID] = entry.DeviceName

		if !a.arena.Contains(entry.SnapshotID) {
			return fmt.Errorf("queued snapshot %d is missing from the arena", entry.SnapshotID)
		}
	}

	numInHistories := 0
	for _, d := range a.devices {
		for _, id := range d.History() {
			deviceName, found := queued[id]
			if !found {
				return fmt.Errorf("snapshot %d of device %s is not queued", id, d.Name())
			}
			if deviceName != d.Name() {
				return fmt.Errorf("snapshot %d of device %s is queued for device %s", id, d.Name(), deviceName)
			}
			numInHistories++
		}
	}

	if numInHistories != len(a.pending) {
		return fmt.Errorf("%d queued snapshots but %d in device histories", len(a.pending), numInHistories)
	}
	if a.arena.Len() != len(a.pending) {
		return fmt.Errorf("%d queued snapshots but %d in the arena", len(a.pending), a.arena.Len())
	}

	return nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (a *aggregator) IsInterfaceNil() bool {
	return a == nil
}
