package account

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testFactory = common.HexToAddress("0x4e59b44847b379578588920cA78FbF26c0B4956C")
	testOwner   = common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72")
)

func TestDeriveDeterministic(t *testing.T) {
	first := Derive(testFactory, testOwner, big.NewInt(0))
	second := Derive(testFactory, testOwner, big.NewInt(0))

	require.NotEqual(t, common.Address{}, first)
	assert.Equal(t, first, second)
}

func TestDeriveMatchesCreate2Formula(t *testing.T) {
	salt := big.NewInt(7)
	saltBytes := make([]byte, 32)
	salt.FillBytes(saltBytes)

	var preimage []byte
	preimage = append(preimage, 0xff)
	preimage = append(preimage, testFactory.Bytes()...)
	preimage = append(preimage, saltBytes...)
	preimage = append(preimage, crypto.Keccak256(AccountInitCode(testOwner))...)
	want := common.BytesToAddress(crypto.Keccak256(preimage)[12:])

	assert.Equal(t, want, Derive(testFactory, testOwner, salt))
}

func TestDeriveNilSaltDefaultsToZero(t *testing.T) {
	assert.Equal(t, Derive(testFactory, testOwner, big.NewInt(0)), Derive(testFactory, testOwner, nil))
}

func TestDeriveVariesWithInputs(t *testing.T) {
	base := Derive(testFactory, testOwner, big.NewInt(0))

	otherOwner := common.HexToAddress("0x000000000000000000000000000000000000dEaD")
	assert.NotEqual(t, base, Derive(testFactory, otherOwner, big.NewInt(0)), "owner must change the address")
	assert.NotEqual(t, base, Derive(testFactory, testOwner, big.NewInt(1)), "salt must change the address")

	otherFactory := common.HexToAddress("0x1111111111111111111111111111111111111111")
	assert.NotEqual(t, base, Derive(otherFactory, testOwner, big.NewInt(0)), "factory must change the address")
}

func TestAccountInitCodeAppendsPaddedOwner(t *testing.T) {
	initCode := AccountInitCode(testOwner)
	template := common.FromHex(accountCreationCodeHex)

	require.Len(t, initCode, len(template)+32)
	assert.Equal(t, template, initCode[:len(template)])
	assert.Equal(t, common.LeftPadBytes(testOwner.Bytes(), 32), initCode[len(template):])
}
