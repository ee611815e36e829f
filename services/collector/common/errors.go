package common

import "errors"

// ErrMachineNotFound signals that no snapshot was ever stored for the machine
var ErrMachineNotFound = errors.New("machine not found")

// ErrSymbolNotFound signals that the symbol is not in the tracked list
var ErrSymbolNotFound = errors.New("symbol not found")
