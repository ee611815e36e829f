package aggregator

import "errors"

var errNilSender = errors.New("nil sender")

var errEmptyMachineName = errors.New("empty machine name")

var errNilMachineID = errors.New("nil machine ID")
