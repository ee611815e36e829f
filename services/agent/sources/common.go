package sources

import (
	"fmt"
	"math"

	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
)

func checkFinite(name string, value float64) (common.Metric, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return common.Metric{}, fmt.Errorf("%w: %s produced a non-finite value", common.ErrSourceUnavailable, name)
	}

	return common.Metric{Name: name, Value: value}, nil
}
