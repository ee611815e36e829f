package identity

import (
	"net"
	"os"
	"runtime"
	"strconv"
)

const macAddressLength = 6

type osHostInfo struct{}

// NewOSHostInfo returns the host info provider backed by the running operating system
func NewOSHostInfo() *osHostInfo {
	return &osHostInfo{}
}

// Platform returns the operating system name
func (hi *osHostInfo) Platform() string {
	return runtime.GOOS
}

// NodeName returns the network node name of the host
func (hi *osHostInfo) NodeName() (string, error) {
	return os.Hostname()
}

// HardwareID returns the MAC address of the first non-loopback interface, rendered as a 48-bit decimal integer
func (hi *osHostInfo) HardwareID() (string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(iface.HardwareAddr) != macAddressLength {
			continue
		}

		return macToDecimal(iface.HardwareAddr), nil
	}

	return "", errNoHardwareAddress
}

func macToDecimal(mac net.HardwareAddr) string {
	value := uint64(0)
	for _, b := range mac {
		value = value<<8 | uint64(b)
	}

	return strconv.FormatUint(value, 10)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (hi *osHostInfo) IsInterfaceNil() bool {
	return hi == nil
}
