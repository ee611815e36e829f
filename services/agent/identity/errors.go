package identity

import "errors"

var errNoHardwareAddress = errors.New("no network interface with a hardware address")

var errEmptyNodeName = errors.New("empty node name")

var errUnsupportedPlatform = errors.New("unsupported platform")
