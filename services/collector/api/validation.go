package api

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iulianpascalau/snapshot-agent/services/collector/common"
)

// validatePayload rejects the deliveries that can never be stored. The agent treats the rejection as permanent
func validatePayload(payload common.SnapshotsPayload) error {
	_, err := uuid.Parse(payload.GUID)
	if err != nil {
		return fmt.Errorf("%w: %s", errInvalidGUID, err.Error())
	}
	if len(payload.Devices) == 0 {
		return errNoDevices
	}

	for _, device := range payload.Devices {
		if len(strings.TrimSpace(device.Name)) == 0 {
			return errEmptyDeviceName
		}
		if len(device.Snapshots) == 0 {
			return fmt.Errorf("%w, device %s", errNoSnapshots, device.Name)
		}

		for _, snapshot := range device.Snapshots {
			if len(snapshot.Metrics) == 0 {
				return fmt.Errorf("%w, device %s", errNoMetrics, device.Name)
			}
			for _, metric := range snapshot.Metrics {
				if len(metric.Name) == 0 {
					return fmt.Errorf("%w, device %s", errEmptyMetricName, device.Name)
				}
			}
		}
	}

	return nil
}
