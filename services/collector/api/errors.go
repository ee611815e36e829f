package api

import "errors"

var errNilStorage = errors.New("storage is required")
var errNilHTTPHandler = errors.New("nil http handler")
var errInvalidGUID = errors.New("guid is not a valid UUID")
var errNoDevices = errors.New("payload contains no devices")
var errEmptyDeviceName = errors.New("empty device name")
var errNoSnapshots = errors.New("device contains no snapshots")
var errNoMetrics = errors.New("snapshot contains no metrics")
var errEmptyMetricName = errors.New("empty metric name")
