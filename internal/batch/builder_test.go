package batch

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sponsorFlow/internal/model"
)

var (
	testToken     = common.HexToAddress("0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC")
	testCollector = common.HexToAddress("0xFeeFeeFeefEEFEefEefeEfEEfeEfeefEEFEEfEe0")
	testRecipient = common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72")
)

func tokens(n int64) *big.Int {
	exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return new(big.Int).Mul(big.NewInt(n), exp)
}

func TestFeeSplit(t *testing.T) {
	cases := []struct {
		name      string
		amount    *big.Int
		bps       uint64
		fee       string
		remainder string
	}{
		{name: "three percent of thirty", amount: tokens(30), bps: 300, fee: "900000000000000000", remainder: "29100000000000000000"},
		{name: "zero fee", amount: tokens(10), bps: 0, fee: "0", remainder: "10000000000000000000"},
		{name: "full fee", amount: tokens(10), bps: 10000, fee: "10000000000000000000", remainder: "0"},
		{name: "truncates toward zero", amount: big.NewInt(3), bps: 1, fee: "0", remainder: "3"},
		{name: "zero amount", amount: big.NewInt(0), bps: 300, fee: "0", remainder: "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fee, remainder, err := FeeSplit(tc.amount, tc.bps)
			require.NoError(t, err)
			assert.Equal(t, tc.fee, fee.String())
			assert.Equal(t, tc.remainder, remainder.String())
		})
	}
}

func TestFeeSplitConservesAmount(t *testing.T) {
	amount, ok := new(big.Int).SetString("123456789123456789123", 10)
	require.True(t, ok)

	for bps := uint64(0); bps <= 10000; bps += 97 {
		fee, remainder, err := FeeSplit(amount, bps)
		require.NoError(t, err)

		sum := new(big.Int).Add(fee, remainder)
		require.Zero(t, sum.Cmp(amount), "fee %s + remainder %s != amount at %d bps", fee, remainder, bps)
	}
}

func TestFeeSplitRejectsBadInputs(t *testing.T) {
	_, _, err := FeeSplit(nil, 100)
	assert.Error(t, err)

	_, _, err = FeeSplit(big.NewInt(-1), 100)
	assert.Error(t, err)

	_, _, err = FeeSplit(big.NewInt(1), 10001)
	assert.Error(t, err)
}

func buildConfig(bps uint64) model.PoolConfig {
	return model.PoolConfig{
		PoolAddress:       common.HexToAddress("0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa"),
		TokenAddress:      testToken,
		FeeBasisPoints:    bps,
		MinTransferAmount: big.NewInt(1),
	}
}

func TestBuildOrdersFeeBeforeTransfer(t *testing.T) {
	selector, err := ExecuteBatchSelector()
	require.NoError(t, err)
	builder := NewBuilder(testCollector, selector)

	op, fee, err := builder.Build(buildConfig(300), testRecipient, tokens(30))
	require.NoError(t, err)

	assert.Equal(t, "900000000000000000", fee.String())
	require.Len(t, op.Calls, 2)

	transfer, err := TransferABI()
	require.NoError(t, err)

	feeTo, feeAmount := unpackTransfer(t, transfer, op.Calls[0])
	assert.Equal(t, testToken, op.Calls[0].Target)
	assert.Equal(t, testCollector, feeTo)
	assert.Equal(t, "900000000000000000", feeAmount.String())

	primaryTo, primaryAmount := unpackTransfer(t, transfer, op.Calls[1])
	assert.Equal(t, testToken, op.Calls[1].Target)
	assert.Equal(t, testRecipient, primaryTo)
	assert.Equal(t, "29100000000000000000", primaryAmount.String())
}

func unpackTransfer(t *testing.T, parsed abi.ABI, call model.BatchedCall) (common.Address, *big.Int) {
	t.Helper()
	require.Equal(t, parsed.Methods["transfer"].ID, []byte(call.Data[:4]))

	values, err := parsed.Methods["transfer"].Inputs.Unpack(call.Data[4:])
	require.NoError(t, err)
	require.Len(t, values, 2)

	to, ok := values[0].(common.Address)
	require.True(t, ok)
	amount, ok := values[1].(*big.Int)
	require.True(t, ok)
	return to, amount
}

func TestEncodeCarriesEnforcedSelector(t *testing.T) {
	selector, err := ExecuteBatchSelector()
	require.NoError(t, err)
	builder := NewBuilder(testCollector, selector)

	op, _, err := builder.Build(buildConfig(250), testRecipient, tokens(8))
	require.NoError(t, err)

	payload, err := builder.Encode(op)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(payload), 4)
	assert.Equal(t, selector[:], payload[:4])

	parsed, err := AccountABI()
	require.NoError(t, err)
	values, err := parsed.Methods["executeBatch"].Inputs.Unpack(payload[4:])
	require.NoError(t, err)
	require.Len(t, values, 2)

	targets, ok := values[0].([]common.Address)
	require.True(t, ok)
	payloads, ok := values[1].([][]byte)
	require.True(t, ok)

	require.Len(t, targets, 2)
	require.Len(t, payloads, 2)
	assert.Equal(t, op.Calls[0].Data, payloads[0])
	assert.Equal(t, op.Calls[1].Data, payloads[1])
}

func TestEncodeRejectsSelectorMismatch(t *testing.T) {
	builder := NewBuilder(testCollector, [4]byte{0xde, 0xad, 0xbe, 0xef})

	op, _, err := builder.Build(buildConfig(300), testRecipient, tokens(30))
	require.NoError(t, err)

	_, err = builder.Encode(op)
	assert.ErrorIs(t, err, ErrSelectorMismatch)
}

func TestEncodeRejectsInvalidOperation(t *testing.T) {
	selector, err := ExecuteBatchSelector()
	require.NoError(t, err)
	builder := NewBuilder(testCollector, selector)

	_, err = builder.Encode(model.BatchedOperation{})
	assert.Error(t, err)

	_, err = builder.Encode(model.BatchedOperation{Calls: []model.BatchedCall{{}}})
	assert.Error(t, err)
}
