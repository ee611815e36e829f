package identity

// HostInfoProvider exposes the host attributes the machine identity is derived from
type HostInfoProvider interface {
	Platform() string
	NodeName() (string, error)
	HardwareID() (string, error)
	IsInterfaceNil() bool
}
