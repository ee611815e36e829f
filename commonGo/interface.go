package commonGo

import "time"

// FileLoggingHandler defines the operations of the component writing the logs into a rotated file
type FileLoggingHandler interface {
	ChangeFileLifeSpan(newDuration time.Duration, newSizeInMB uint64) error
	Close() error
	IsInterfaceNil() bool
}
