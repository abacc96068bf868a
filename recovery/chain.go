// Package recovery implements the recovery-chain resolver (spec §4.5)
// and the recovery-info assembler (spec §4.7).
package recovery

import (
	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/types"
)

// MaxChainDepth bounds recursive recovery unwrapping (spec §9: "cap
// depth (e.g. 8)"). A cyclic chain is structurally impossible — each
// inner layer strictly decreases nonce — but a pathological client could
// still nest recoveries arbitrarily deep, so depth is capped regardless.
const MaxChainDepth = 8

// Resolver unwraps recovery transactions down to the originating payment.
type Resolver struct {
	recoveryContract crypto.Address
}

func NewResolver(recoveryContract crypto.Address) *Resolver {
	return &Resolver{recoveryContract: recoveryContract}
}

// ChainStart returns the deepest inner payment reachable from tx by
// repeatedly unwrapping Recovery.tip (spec §4.5, §9). If tx is itself a
// payment, it is its own chain start. Returns ErrRecursionTooDeep if
// unwrapping exceeds MaxChainDepth without reaching a payment.
func (r *Resolver) ChainStart(tx *types.Transaction) (*types.Transaction, error) {
	current := tx
	for depth := 0; depth < MaxChainDepth; depth++ {
		if current.Kind(r.recoveryContract) == types.TxKindPayment {
			return current, nil
		}
		tip, err := current.Tip()
		if err != nil {
			return nil, err
		}
		current = tip
	}
	return nil, types.ErrRecursionTooDeep
}
