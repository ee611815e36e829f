package factory

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/iulianpascalau/snapshot-agent/commonGo"
	"github.com/iulianpascalau/snapshot-agent/services/agent/aggregator"
	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
	"github.com/iulianpascalau/snapshot-agent/services/agent/config"
	"github.com/iulianpascalau/snapshot-agent/services/agent/engine"
	"github.com/iulianpascalau/snapshot-agent/services/agent/identity"
	"github.com/iulianpascalau/snapshot-agent/services/agent/poller"
	"github.com/iulianpascalau/snapshot-agent/services/agent/reconciler"
	"github.com/iulianpascalau/snapshot-agent/services/agent/sender"
	"github.com/iulianpascalau/snapshot-agent/services/agent/sources"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("agent")

type componentsHandler struct {
	aggregator      Aggregator
	engine          Engine
	mutCancel       sync.Mutex
	cancel          func()
	captureInterval time.Duration
}

// NewComponentsHandler creates a new components handler
func NewComponentsHandler(
	serviceKeyApi string,
	cfg config.Config,
) (*componentsHandler, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	requestTimeout := time.Duration(cfg.RequestTimeoutInSeconds) * time.Second

	machineName, err := resolveMachineName(cfg)
	if err != nil {
		return nil, err
	}

	machineID, err := identity.ResolveMachineID(identity.NewOSHostInfo(), log)
	if err != nil {
		return nil, err
	}

	agg, err := aggregator.NewAggregator(aggregator.ArgsAggregator{
		MachineID:   machineID,
		MachineName: machineName,
		Sender:      sender.NewHTTPSender(serviceKeyApi, requestTimeout),
		Log:         log,
	})
	if err != nil {
		return nil, err
	}

	err = createSystemDevice(agg, cfg.SystemDevice)
	if err != nil {
		return nil, err
	}

	reconcilers, err := createTickerDevice(agg, cfg, poller.NewHTTPPoller(requestTimeout))
	if err != nil {
		return nil, err
	}

	eng, err := engine.NewAgentEngine(engine.ArgsAgentEngine{
		Aggregator:  agg,
		Reconcilers: reconcilers,
		PostURL:     cfg.PostURL(),
	})
	if err != nil {
		return nil, err
	}

	log.Info("agent components created", "machine", machineName, "guid", agg.MachineID().String(),
		"post URL", cfg.PostURL(), "symbols URL", cfg.SymbolsURL())

	return &componentsHandler{
		aggregator:      agg,
		engine:          eng,
		captureInterval: time.Duration(cfg.CaptureIntervalInSeconds) * time.Second,
	}, nil
}

func resolveMachineName(cfg config.Config) (string, error) {
	if len(cfg.Name) > 0 {
		return cfg.Name, nil
	}

	return os.Hostname()
}

func createSystemDevice(agg aggregatorWithDevices, cfg config.SystemDeviceConfig) error {
	systemDevice, err := agg.AddDevice(cfg.Name)
	if err != nil {
		return err
	}

	for _, metricName := range cfg.Metrics {
		source, errCreate := sources.NewSystemSource(metricName)
		if errCreate != nil {
			return errCreate
		}

		err = systemDevice.RegisterSource(source)
		if err != nil {
			return err
		}
	}

	return nil
}

func createTickerDevice(agg aggregatorWithDevices, cfg config.Config, poll reconciler.Poller) ([]engine.Reconciler, error) {
	if !cfg.TickersEnabled() {
		return nil, nil
	}

	tickerDevice, err := agg.AddDevice(cfg.TickerDevice.Name)
	if err != nil {
		return nil, err
	}

	tickerFactory := func(symbol string) (common.MetricSource, error) {
		source, errCreate := sources.NewTickerSource(sources.ArgsTickerSource{
			Symbol:    symbol,
			PriceURL:  cfg.TickerDevice.PriceURL,
			PricePath: cfg.TickerDevice.PricePath,
			Poller:    poll,
		})
		if errCreate != nil {
			return nil, errCreate
		}

		return source, nil
	}

	initialSymbols := reconciler.NewStaticSymbolsFetcher(cfg.StockSymbols)
	initialReconciler, err := reconciler.NewSourceReconciler(reconciler.ArgsSourceReconciler{
		Device:  tickerDevice,
		Fetcher: initialSymbols,
		Kind:    sources.TickerKind,
		Factory: tickerFactory,
		Log:     log,
	})
	if err != nil {
		return nil, err
	}
	initialReconciler.Reconcile(context.Background())

	if len(cfg.SymbolsURL()) == 0 {
		return nil, nil
	}

	fetcher, err := reconciler.NewHTTPSymbolsFetcher(cfg.SymbolsURL(), poll)
	if err != nil {
		return nil, err
	}

	serverReconciler, err := reconciler.NewSourceReconciler(reconciler.ArgsSourceReconciler{
		Device:  tickerDevice,
		Fetcher: fetcher,
		Kind:    sources.TickerKind,
		Factory: tickerFactory,
		Log:     log,
	})
	if err != nil {
		return nil, err
	}

	return []engine.Reconciler{serverReconciler}, nil
}

// GetAggregator returns the aggregator component
func (ch *componentsHandler) GetAggregator() Aggregator {
	return ch.aggregator
}

// GetEngine returns the engine component
func (ch *componentsHandler) GetEngine() Engine {
	return ch.engine
}

// Start starts the inner components
func (ch *componentsHandler) Start() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		return
	}

	var ctx context.Context
	ctx, ch.cancel = context.WithCancel(context.Background())

	commonGo.CronJobStarter(ctx, ch.engine.Process, ch.captureInterval)
}

// Close closes the inner components
func (ch *componentsHandler) Close() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel == nil {
		return
	}

	ch.cancel()
	ch.cancel = nil
}
