package selector

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ideationmarket/goapi/domain"
)

// FromSignature derives the 4-byte dispatch key from a canonical
// function signature, e.g.
// "diamondCut((address,uint8,bytes4[])[],address,bytes)" -> 0x1f931c1c.
func FromSignature(signature string) domain.Selector {
	hash := crypto.Keccak256([]byte(signature))
	return domain.Selector(fmt.Sprintf("0x%x", hash[:4]))
}
