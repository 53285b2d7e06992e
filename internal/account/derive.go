package account

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// accountCreationCodeHex is the factory's account deployment bytecode
// template. The factory appends the ABI-encoded owner as the single
// constructor argument before deploying through CREATE2, so the derived
// address commits to both the template and the owner.
const accountCreationCodeHex = "0x603d3d8160223d3973" +
	"5af43d82803e903d91602b57fd5bf3" +
	"60095981f3363d3d373d3d3d363d73" +
	"bebebebebebebebebebebebebebebebebebebebe" +
	"5af43d82803e903d91602b57fd5bf3"

// DefaultSalt selects the first smart account for an owner.
var DefaultSalt = big.NewInt(0)

// AccountInitCode returns the deployment init code the factory would use for
// the owner: creation template followed by the owner padded to a word.
func AccountInitCode(owner common.Address) []byte {
	code := common.FromHex(accountCreationCodeHex)
	return append(code, common.LeftPadBytes(owner.Bytes(), 32)...)
}

// Derive computes the counterfactual smart-account address the factory would
// produce for (owner, salt) via the CREATE2 formula:
//
//	keccak256(0xff ++ factory ++ salt ++ keccak256(initCode))[12:]
//
// The computation is pure: it never touches the chain and yields the same
// address whether or not the account is deployed. Deployment checks are a
// separate bytecode-presence read. A nil salt means DefaultSalt.
func Derive(factory common.Address, owner common.Address, salt *big.Int) common.Address {
	if salt == nil {
		salt = DefaultSalt
	}

	initCodeHash := crypto.Keccak256(AccountInitCode(owner))

	saltBytes := make([]byte, 32)
	salt.FillBytes(saltBytes)

	var preimage []byte
	preimage = append(preimage, 0xff)
	preimage = append(preimage, factory.Bytes()...)
	preimage = append(preimage, saltBytes...)
	preimage = append(preimage, initCodeHash...)

	return common.BytesToAddress(crypto.Keccak256(preimage)[12:])
}
