package account

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sponsorFlow/internal/model"
)

// fakePort drives the resolver with canned bytecode responses.
type fakePort struct {
	codeFn    func(common.Address) ([]byte, error)
	codeCalls []common.Address
}

func (f *fakePort) GetChainID(context.Context) (*big.Int, error) { return big.NewInt(1), nil }

func (f *fakePort) CodeAt(_ context.Context, address common.Address) ([]byte, error) {
	f.codeCalls = append(f.codeCalls, address)
	return f.codeFn(address)
}

func (f *fakePort) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePort) BalanceAt(context.Context, common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (f *fakePort) WaitForReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return nil, errors.New("not implemented")
}

func TestResolveNilAddressIsDisconnected(t *testing.T) {
	resolver := NewResolver(&fakePort{}, testFactory, nil)

	status := resolver.Resolve(context.Background(), nil)

	assert.Equal(t, model.Disconnected(), status)
}

func TestResolveContractAccountSkipsDerivation(t *testing.T) {
	port := &fakePort{codeFn: func(common.Address) ([]byte, error) {
		return []byte{0x60, 0x80}, nil
	}}
	resolver := NewResolver(port, testFactory, nil)

	status := resolver.Resolve(context.Background(), &testOwner)

	assert.Equal(t, model.CapabilityContractAccount, status.Capability)
	require.NotNil(t, status.SmartAccountAddress)
	assert.Equal(t, testOwner, *status.SmartAccountAddress)
	assert.Equal(t, model.DeploymentDeployed, status.Deployment)
	assert.Equal(t, []common.Address{testOwner}, port.codeCalls, "contract wallets need no counterfactual lookup")
}

func TestResolveDefaultsToKeyPairOnFetchError(t *testing.T) {
	port := &fakePort{codeFn: func(common.Address) ([]byte, error) {
		return nil, errors.New("rpc timeout")
	}}
	resolver := NewResolver(port, testFactory, nil)

	status := resolver.Resolve(context.Background(), &testOwner)

	assert.Equal(t, model.CapabilityKeyPairAccount, status.Capability)
	assert.Nil(t, status.SmartAccountAddress)
	assert.Equal(t, model.DeploymentError, status.Deployment)
	assert.Contains(t, status.LastError, "rpc timeout")
}

func TestResolveKeyPairDeploymentStates(t *testing.T) {
	derived := Derive(testFactory, testOwner, DefaultSalt)

	cases := []struct {
		name        string
		derivedCode []byte
		derivedErr  error
		deployment  model.DeploymentState
	}{
		{name: "deployed", derivedCode: []byte{0x01}, deployment: model.DeploymentDeployed},
		{name: "not deployed", deployment: model.DeploymentNotDeployed},
		{name: "fetch error", derivedErr: errors.New("rpc timeout"), deployment: model.DeploymentError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			port := &fakePort{codeFn: func(address common.Address) ([]byte, error) {
				if address == derived {
					return tc.derivedCode, tc.derivedErr
				}
				return nil, nil
			}}
			resolver := NewResolver(port, testFactory, nil)

			status := resolver.Resolve(context.Background(), &testOwner)

			assert.Equal(t, model.CapabilityKeyPairAccount, status.Capability)
			require.NotNil(t, status.SmartAccountAddress)
			assert.Equal(t, derived, *status.SmartAccountAddress)
			assert.Equal(t, tc.deployment, status.Deployment)
		})
	}
}

func TestSessionConnectReplacesStatus(t *testing.T) {
	port := &fakePort{codeFn: func(common.Address) ([]byte, error) { return nil, nil }}
	session := NewSession(NewResolver(port, testFactory, nil))

	assert.Equal(t, model.Disconnected(), session.Status())

	status := session.Connect(context.Background(), testOwner)

	assert.Equal(t, model.CapabilityKeyPairAccount, status.Capability)
	assert.Equal(t, status, session.Status())

	session.Disconnect()
	assert.Equal(t, model.Disconnected(), session.Status())
}

func TestSessionDiscardsStaleResolution(t *testing.T) {
	port := &fakePort{}
	session := NewSession(NewResolver(port, testFactory, nil))

	// Disconnect fires while the resolution is in flight; the late result
	// must not overwrite the newer state.
	port.codeFn = func(common.Address) ([]byte, error) {
		session.Disconnect()
		return nil, nil
	}

	returned := session.Connect(context.Background(), testOwner)

	assert.Equal(t, model.Disconnected(), returned)
	assert.Equal(t, model.Disconnected(), session.Status())
}
