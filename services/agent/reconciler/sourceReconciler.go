package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

// ArgsSourceReconciler holds the arguments needed to create a source reconciler
type ArgsSourceReconciler struct {
	Device  Device
	Fetcher SymbolsFetcher
	Kind    string
	Factory SourceFactory
	Log     logger.Logger
}

// sourceReconciler keeps the sources of one kind registered on a device in sync with a desired set
type sourceReconciler struct {
	device  Device
	fetcher SymbolsFetcher
	kind    string
	factory SourceFactory
	log     logger.Logger
}

// NewSourceReconciler creates a new source reconciler
func NewSourceReconciler(args ArgsSourceReconciler) (*sourceReconciler, error) {
	if check.IfNil(args.Device) {
		return nil, errNilDevice
	}
	if check.IfNil(args.Fetcher) {
		return nil, errNilFetcher
	}
	if len(args.Kind) == 0 {
		return nil, errEmptyKind
	}
	if args.Factory == nil {
		return nil, errNilSourceFactory
	}
	if check.IfNil(args.Log) {
		return nil, common.ErrNilLogger
	}

	return &sourceReconciler{
		device:  args.Device,
		fetcher: args.Fetcher,
		kind:    args.Kind,
		factory: args.Factory,
		log:     args.Log,
	}, nil
}

// Reconcile fetches the desired set and applies it. Fetch failures and empty sets leave the registered
// sources unchanged
func (sr *sourceReconciler) Reconcile(ctx context.Context) {
	desired, err := sr.fetcher.FetchSymbols(ctx)
	if err != nil {
		sr.log.Error("failed to fetch the desired symbols, skipping reconciliation",
			"device", sr.device.Name(), "error", err)
		return
	}
	if len(desired) == 0 {
		sr.log.Info("no desired symbols received, skipping reconciliation", "device", sr.device.Name())
		return
	}

	sr.Apply(desired)
}

// Apply deregisters the sources of the reconciler's kind that are not desired and registers the missing
// ones, in the desired order. Sources present in both sets are left untouched.
func (sr *sourceReconciler) Apply(desired []string) (int, int) {
	desiredSet := make(map[string]struct{}, len(desired))
	toAdd := make([]string, 0, len(desired))
	for _, param := range desired {
		param = strings.TrimSpace(param)
		if len(param) == 0 {
			continue
		}
		_, seen := desiredSet[param]
		if seen {
			continue
		}

		desiredSet[param] = struct{}{}
		toAdd = append(toAdd, param)
	}

	registered := make(map[string]struct{})
	numRemoved := 0
	for _, id := range sr.device.SourceIDs() {
		if id.Kind != sr.kind {
			continue
		}

		_, isDesired := desiredSet[id.Param]
		if isDesired {
			registered[id.Param] = struct{}{}
			continue
		}

		if sr.device.DeregisterSource(id) {
			numRemoved++
			sr.log.Info("removed metric source", "device", sr.device.Name(), "source", id.String())
		}
	}

	numAdded := 0
	for _, param := range toAdd {
		_, exists := registered[param]
		if exists {
			continue
		}

		err := sr.addSource(param)
		if err != nil {
			sr.log.Error("failed to add metric source", "device", sr.device.Name(), "param", param, "error", err)
			continue
		}

		numAdded++
		sr.log.Info("added metric source", "device", sr.device.Name(), "source", sr.kind+":"+param)
	}

	sr.log.Debug("reconciliation completed", "device", sr.device.Name(), "added", numAdded, "removed", numRemoved)

	return numAdded, numRemoved
}

func (sr *sourceReconciler) addSource(param string) error {
	source, err := sr.factory(param)
	if err != nil {
		return err
	}
	if check.IfNil(source) {
		return common.ErrNilMetricSource
	}

	expectedID := common.SourceID{Kind: sr.kind, Param: param}
	if source.ID() != expectedID {
		return fmt.Errorf("source factory built %s instead of %s", source.ID(), expectedID)
	}

	return sr.device.RegisterSource(source)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (sr *sourceReconciler) IsInterfaceNil() bool {
	return sr == nil
}
