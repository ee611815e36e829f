package sources

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/mem"
	psnet "github.com/shirou/gopsutil/net"
)

// SystemKind is the source kind of the operating system metrics
const SystemKind = "system"

const cpuSampleInterval = time.Second

type systemReader func(ctx context.Context) (float64, error)

type systemMetric struct {
	name   string
	reader systemReader
}

var systemMetrics = map[string]systemMetric{
	"cpu":      {name: "CPU Percent", reader: readCPUPercent},
	"ram":      {name: "RAM Usage", reader: readRAMUsage},
	"disk":     {name: "Disk Usage", reader: readDiskUsage},
	"net_sent": {name: "Net Bytes Sent", reader: readNetBytesSent},
	"net_recv": {name: "Net Bytes Received", reader: readNetBytesReceived},
}

type systemSource struct {
	id     common.SourceID
	metric systemMetric
}

// NewSystemSource creates the operating system metric source with the provided name
// (cpu, ram, disk, net_sent or net_recv)
func NewSystemSource(metricName string) (*systemSource, error) {
	metric, found := systemMetrics[metricName]
	if !found {
		return nil, fmt.Errorf("unknown system metric %q", metricName)
	}

	return &systemSource{
		id:     common.SourceID{Kind: SystemKind, Param: metricName},
		metric: metric,
	}, nil
}

// SystemMetricNames returns the names accepted by NewSystemSource, sorted
func SystemMetricNames() []string {
	names := make([]string, 0, len(systemMetrics))
	for name := range systemMetrics {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// ID returns the source identity
func (s *systemSource) ID() common.SourceID {
	return s.id
}

// Read samples the operating system metric
func (s *systemSource) Read(ctx context.Context) (common.Metric, error) {
	value, err := s.metric.reader(ctx)
	if err != nil {
		return common.Metric{}, fmt.Errorf("%w: %s: %v", common.ErrSourceUnavailable, s.metric.name, err)
	}

	return checkFinite(s.metric.name, value)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *systemSource) IsInterfaceNil() bool {
	return s == nil
}

func readCPUPercent(ctx context.Context) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, cpuSampleInterval, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("no CPU percent reported")
	}

	return percents[0], nil
}

func readRAMUsage(ctx context.Context) (float64, error) {
	vmstat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}

	return vmstat.UsedPercent, nil
}

func readDiskUsage(ctx context.Context) (float64, error) {
	usage, err := disk.UsageWithContext(ctx, rootPath())
	if err != nil {
		return 0, err
	}

	return usage.UsedPercent, nil
}

func readNetBytesSent(ctx context.Context) (float64, error) {
	counters, err := readNetCounters(ctx)
	if err != nil {
		return 0, err
	}

	return float64(counters.BytesSent), nil
}

func readNetBytesReceived(ctx context.Context) (float64, error) {
	counters, err := readNetCounters(ctx)
	if err != nil {
		return 0, err
	}

	return float64(counters.BytesRecv), nil
}

func readNetCounters(ctx context.Context) (psnet.IOCountersStat, error) {
	counters, err := psnet.IOCountersWithContext(ctx, false)
	if err != nil {
		return psnet.IOCountersStat{}, err
	}
	if len(counters) == 0 {
		return psnet.IOCountersStat{}, errNoNetworkCounters
	}

	return counters[0], nil
}

func rootPath() string {
	if runtime.GOOS == "windows" {
		return "C:\\"
	}

	return "/"
}
