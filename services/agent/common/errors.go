package common

import "errors"

// ErrNilMetricSource signals that a nil metric source was provided
var ErrNilMetricSource = errors.New("nil metric source")

// ErrDuplicateSource signals that a source with the same identity is already registered
var ErrDuplicateSource = errors.New("duplicate metric source")

// ErrDuplicateDevice signals that a device with the same name is already registered
var ErrDuplicateDevice = errors.New("duplicate device")

// ErrEmptyDeviceName signals that an empty device name was provided
var ErrEmptyDeviceName = errors.New("empty device name")

// ErrNilLogger signals that a nil logger was provided
var ErrNilLogger = errors.New("nil logger")

// ErrNilSnapshotArena signals that a nil snapshot arena was provided
var ErrNilSnapshotArena = errors.New("nil snapshot arena")

// ErrSourceUnavailable signals that a metric source could not produce a value
var ErrSourceUnavailable = errors.New("metric source unavailable")

// ErrPayloadNotSendable signals that a payload could not be encoded or turned into a request, so it
// was never sent and will never be
var ErrPayloadNotSendable = errors.New("payload not sendable")
