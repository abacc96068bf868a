package effects

import (
	"fmt"
	"math/big"

	"github.com/blockberries/fquorum/crypto"
)

// TransferEffect is the single-asset balance transfer applied when (R3,
// spec §4.6) finalises a payment: sender.balance -= amount;
// recipient.balance += amount. Unlike the teacher's multi-denomination
// TransferEffect, there is exactly one asset, so Amount is a plain
// *big.Int rather than a Coins collection.
type TransferEffect struct {
	From   crypto.Address
	To     crypto.Address
	Amount *big.Int
}

func (e TransferEffect) Type() EffectType {
	return EffectTypeTransfer
}

func (e TransferEffect) Validate() error {
	if e.Amount == nil || e.Amount.Sign() <= 0 {
		return fmt.Errorf("transfer amount must be positive")
	}
	if e.From == e.To {
		return fmt.Errorf("transfer from and to must differ")
	}
	return nil
}

func (e TransferEffect) Dependencies() []Dependency {
	return []Dependency{
		{Type: DependencyTypeAccount, Key: e.From.Bytes(), ReadOnly: false},
		{Type: DependencyTypeAccount, Key: e.To.Bytes(), ReadOnly: false},
		{Type: DependencyTypeBalance, Key: balanceKey(e.From), ReadOnly: false},
		{Type: DependencyTypeBalance, Key: balanceKey(e.To), ReadOnly: false},
	}
}

// Key returns the sender address as the primary key for conflict
// detection.
func (e TransferEffect) Key() []byte {
	return e.From.Bytes()
}

func balanceKey(addr crypto.Address) []byte {
	return []byte(fmt.Sprintf("balance/%s", addr.String()))
}
