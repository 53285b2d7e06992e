package model

import "github.com/ethereum/go-ethereum/common"

// WalletCapability is the tier a connected signer resolves to.
type WalletCapability string

const (
	CapabilityDisconnected    WalletCapability = "disconnected"
	CapabilityKeyPairAccount  WalletCapability = "key-pair-account"
	CapabilityContractAccount WalletCapability = "contract-account"
)

// DeploymentState tracks whether the resolved smart account has code on chain.
type DeploymentState string

const (
	DeploymentUnknown     DeploymentState = "unknown"
	DeploymentNotDeployed DeploymentState = "not-deployed"
	DeploymentDeployed    DeploymentState = "deployed"
	DeploymentError       DeploymentState = "error"
)

// WalletStatus is the resolver's result snapshot. It is recomputed wholesale
// whenever the connected address or chain changes and destroyed on disconnect.
type WalletStatus struct {
	Capability          WalletCapability `json:"capability"`
	SmartAccountAddress *common.Address  `json:"smart_account_address,omitempty"`
	Deployment          DeploymentState  `json:"deployment"`
	LastError           string           `json:"last_error,omitempty"`
}

// Disconnected returns the status for a session with no connected signer.
func Disconnected() WalletStatus {
	return WalletStatus{Capability: CapabilityDisconnected, Deployment: DeploymentUnknown}
}
