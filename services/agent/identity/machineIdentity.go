package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/iulianpascalau/snapshot-agent/services/agent/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const uuidHexLength = 32

var supportedPlatforms = map[string]struct{}{
	"linux":   {},
	"darwin":  {},
	"windows": {},
}

// MachineIDFromHostInfo derives the stable machine UUID: the first 32 hex characters of
// sha256("{node}-{hardwareID}")
func MachineIDFromHostInfo(node string, hardwareID string) (uuid.UUID, error) {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s-%s", node, hardwareID)))
	hexHash := hex.EncodeToString(hash[:])

	return uuid.Parse(hexHash[:uuidHexLength])
}

// ResolveMachineID returns the machine UUID of the host. When the host attributes can not be determined
// a random UUID is returned, so the identity will not survive a restart.
func ResolveMachineID(host HostInfoProvider, log logger.Logger) (uuid.UUID, error) {
	if check.IfNil(log) {
		return uuid.Nil, common.ErrNilLogger
	}

	id, err := resolveMachineID(host)
	if err == nil {
		log.Debug("resolved machine identity", "guid", id.String())
		return id, nil
	}

	id = uuid.New()
	log.Warn("could not derive a stable machine identity, using a random one for this run",
		"error", err, "guid", id.String())

	return id, nil
}

func resolveMachineID(host HostInfoProvider) (uuid.UUID, error) {
	if check.IfNil(host) {
		return uuid.Nil, errUnsupportedPlatform
	}

	platform := host.Platform()
	_, supported := supportedPlatforms[platform]
	if !supported {
		return uuid.Nil, fmt.Errorf("%w: %s", errUnsupportedPlatform, platform)
	}

	node, err := host.NodeName()
	if err != nil {
		return uuid.Nil, err
	}
	if len(node) == 0 {
		return uuid.Nil, errEmptyNodeName
	}

	hardwareID, err := host.HardwareID()
	if err != nil {
		return uuid.Nil, err
	}

	return MachineIDFromHostInfo(node, hardwareID)
}
