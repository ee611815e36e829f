package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLog = logger.GetOrCreate("identity-test")

type hostInfoStub struct {
	platform      string
	nodeName      string
	nodeNameErr   error
	hardwareID    string
	hardwareIDErr error
}

func (stub *hostInfoStub) Platform() string {
	return stub.platform
}

func (stub *hostInfoStub) NodeName() (string, error) {
	return stub.nodeName, stub.nodeNameErr
}

func (stub *hostInfoStub) HardwareID() (string, error) {
	return stub.hardwareID, stub.hardwareIDErr
}

func (stub *hostInfoStub) IsInterfaceNil() bool {
	return stub == nil
}

func TestMachineIDFromHostInfo(t *testing.T) {
	t.Parallel()

	id, err := MachineIDFromHostInfo("node-1", "52242030987788")
	require.Nil(t, err)
	assert.Len(t, id.String(), 36)

	again, err := MachineIDFromHostInfo("node-1", "52242030987788")
	require.Nil(t, err)
	assert.Equal(t, id, again)

	other, err := MachineIDFromHostInfo("node-1", "52242030987789")
	require.Nil(t, err)
	assert.NotEqual(t, id, other)
}

func TestMachineIDFromHostInfo_KnownValue(t *testing.T) {
	t.Parallel()

	id, err := MachineIDFromHostInfo("a", "b")
	require.Nil(t, err)

	hash := sha256.Sum256([]byte("a-b"))
	expected := uuid.MustParse(hex.EncodeToString(hash[:])[:32])
	assert.Equal(t, expected, id)
	assert.Equal(t, hex.EncodeToString(hash[:16]), strings.ReplaceAll(id.String(), "-", ""))
}

func TestResolveMachineID(t *testing.T) {
	t.Parallel()

	t.Run("nil logger should error", func(t *testing.T) {
		host := &hostInfoStub{platform: "linux", nodeName: "box", hardwareID: "123456"}

		id, err := ResolveMachineID(host, nil)
		assert.Equal(t, common.ErrNilLogger, err)
		assert.Equal(t, uuid.Nil, id)
	})
	t.Run("same host yields the same id", func(t *testing.T) {
		host := &hostInfoStub{platform: "linux", nodeName: "box", hardwareID: "123456"}

		first, _ := ResolveMachineID(host, testLog)
		second, _ := ResolveMachineID(host, testLog)
		assert.Equal(t, first, second)

		expected, _ := MachineIDFromHostInfo("box", "123456")
		assert.Equal(t, expected, first)
	})
	t.Run("different hardware id yields a different id", func(t *testing.T) {
		first, _ := ResolveMachineID(&hostInfoStub{platform: "darwin", nodeName: "box", hardwareID: "1"}, testLog)
		second, _ := ResolveMachineID(&hostInfoStub{platform: "darwin", nodeName: "box", hardwareID: "2"}, testLog)
		assert.NotEqual(t, first, second)
	})
	t.Run("unsupported platform falls back to a random id", func(t *testing.T) {
		host := &hostInfoStub{platform: "plan9", nodeName: "box", hardwareID: "1"}

		first, _ := ResolveMachineID(host, testLog)
		second, _ := ResolveMachineID(host, testLog)
		assert.NotEqual(t, uuid.Nil, first)
		assert.NotEqual(t, first, second)
	})
	t.Run("hardware id error falls back to a random id", func(t *testing.T) {
		host := &hostInfoStub{platform: "windows", nodeName: "box", hardwareIDErr: errors.New("no nic")}

		first, _ := ResolveMachineID(host, testLog)
		second, _ := ResolveMachineID(host, testLog)
		assert.NotEqual(t, first, second)
	})
	t.Run("empty node name falls back to a random id", func(t *testing.T) {
		host := &hostInfoStub{platform: "linux", hardwareID: "1"}

		first, _ := ResolveMachineID(host, testLog)
		second, _ := ResolveMachineID(host, testLog)
		assert.NotEqual(t, first, second)
	})
	t.Run("nil host falls back to a random id", func(t *testing.T) {
		id, err := ResolveMachineID(nil, testLog)
		assert.Nil(t, err)
		assert.NotEqual(t, uuid.Nil, id)
	})
}

func TestMacToDecimal(t *testing.T) {
	t.Parallel()

	mac, err := net.ParseMAC("00:00:00:00:01:02")
	require.Nil(t, err)
	assert.Equal(t, "258", macToDecimal(mac))

	mac, _ = net.ParseMAC("ff:ff:ff:ff:ff:ff")
	assert.Equal(t, "281474976710655", macToDecimal(mac))
}

func TestOSHostInfo(t *testing.T) {
	t.Parallel()

	host := NewOSHostInfo()
	assert.False(t, host.IsInterfaceNil())
	assert.NotEmpty(t, host.Platform())

	node, err := host.NodeName()
	assert.Nil(t, err)
	assert.NotEmpty(t, node)
}
