package testsCommon

import "context"

// ReconcilerStub -
type ReconcilerStub struct {
	ReconcileHandler func(ctx context.Context)
}

// Reconcile -
func (stub *ReconcilerStub) Reconcile(ctx context.Context) {
	if stub.ReconcileHandler != nil {
		stub.ReconcileHandler(ctx)
	}
}

// IsInterfaceNil -
func (stub *ReconcilerStub) IsInterfaceNil() bool {
	return stub == nil
}
