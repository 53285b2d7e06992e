package account

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"sponsorFlow/internal/chain"
	"sponsorFlow/internal/model"
)

// Resolver classifies a connected signer into a capability tier and resolves
// the effective smart account address plus its deployment state.
//
// The transitions are pure given the fetched bytecode; all I/O goes through
// the QueryPort so the machine can be driven by fakes in tests.
type Resolver struct {
	port    chain.QueryPort
	factory common.Address
	logger  *zap.Logger
}

// NewResolver builds a Resolver with its dependencies.
func NewResolver(port chain.QueryPort, factory common.Address, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{port: port, factory: factory, logger: logger}
}

// Resolve computes a fresh WalletStatus for the connected address. A nil
// address means no signer is connected. The result replaces any prior status
// wholesale; nothing is merged.
func (r *Resolver) Resolve(ctx context.Context, connected *common.Address) model.WalletStatus {
	if connected == nil {
		return model.Disconnected()
	}

	code, err := r.port.CodeAt(ctx, *connected)
	if err != nil {
		// Classification failed. Default to key-pair-account: the safer
		// assumption for sponsorship logic, since treating an address as
		// already-smart by mistake would skip capability checks entirely.
		r.logger.Warn("owner bytecode fetch failed", zap.String("address", connected.Hex()), zap.Error(err))
		return model.WalletStatus{
			Capability: model.CapabilityKeyPairAccount,
			Deployment: model.DeploymentError,
			LastError:  fmt.Sprintf("fetch owner bytecode: %v", err),
		}
	}

	if len(code) > 0 {
		// The connected address is itself a deployed contract wallet;
		// no derivation is needed.
		addr := *connected
		return model.WalletStatus{
			Capability:          model.CapabilityContractAccount,
			SmartAccountAddress: &addr,
			Deployment:          model.DeploymentDeployed,
		}
	}

	derived := Derive(r.factory, *connected, DefaultSalt)
	status := model.WalletStatus{
		Capability:          model.CapabilityKeyPairAccount,
		SmartAccountAddress: &derived,
		Deployment:          model.DeploymentUnknown,
	}

	derivedCode, err := r.port.CodeAt(ctx, derived)
	if err != nil {
		r.logger.Warn("derived account bytecode fetch failed", zap.String("address", derived.Hex()), zap.Error(err))
		status.Deployment = model.DeploymentError
		status.LastError = fmt.Sprintf("fetch smart account bytecode: %v", err)
		return status
	}

	if len(derivedCode) > 0 {
		status.Deployment = model.DeploymentDeployed
	} else {
		status.Deployment = model.DeploymentNotDeployed
	}
	return status
}
