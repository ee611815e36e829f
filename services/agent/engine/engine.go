package engine

import (
	"context"
	"errors"
	"time"

	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const (
	reconcileTimeout = 30 * time.Second
	captureTimeout   = 30 * time.Second
	deliverTimeout   = 60 * time.Second
)

var log = logger.GetOrCreate("engine")

// ArgsAgentEngine holds the arguments needed to create the agent engine
type ArgsAgentEngine struct {
	Aggregator  Aggregator
	Reconcilers []Reconciler
	PostURL     string
}

// agentEngine runs one reconcile, capture and deliver cycle at a time
type agentEngine struct {
	aggregator  Aggregator
	reconcilers []Reconciler
	postURL     string
}

// NewAgentEngine creates a new engine instance
func NewAgentEngine(args ArgsAgentEngine) (*agentEngine, error) {
	if check.IfNil(args.Aggregator) {
		return nil, errors.New("nil aggregator")
	}
	for _, r := range args.Reconcilers {
		if check.IfNil(r) {
			return nil, errors.New("nil reconciler")
		}
	}
	if len(args.PostURL) == 0 {
		return nil, errors.New("empty post URL")
	}

	return &agentEngine{
		aggregator:  args.Aggregator,
		reconcilers: args.Reconcilers,
		postURL:     args.PostURL,
	}, nil
}

// Process will reconcile the dynamic sources, capture all devices and try to deliver the pending snapshots
func (e *agentEngine) Process(ctx context.Context) {
	log.Debug("waking up to capture", "num reconcilers", len(e.reconcilers), "queue length", e.aggregator.PendingLen())

	// 1. Reconcile dynamic sources
	reconcileCtx, cancelReconcile := context.WithTimeout(ctx, reconcileTimeout)
	for _, r := range e.reconcilers {
		r.Reconcile(reconcileCtx)
	}
	cancelReconcile()

	// 2. Capture all devices
	captureCtx, cancelCapture := context.WithTimeout(ctx, captureTimeout)
	numQueued := e.aggregator.Capture(captureCtx)
	cancelCapture()

	// 3. Deliver, each request is also bounded by the sender's own timeout
	deliverCtx, cancelDeliver := context.WithTimeout(ctx, deliverTimeout)
	report := e.aggregator.Deliver(deliverCtx, e.postURL)
	cancelDeliver()

	log.Info("cycle completed", "captured", numQueued, "delivered", report.Delivered,
		"dropped", report.Dropped, "requeued", report.Requeued, "queue length", e.aggregator.PendingLen())
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *agentEngine) IsInterfaceNil() bool {
	return e == nil
}
