package effects

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/blockberries/fquorum/crypto"
)

// BalanceStore provides the single-asset balance operations the
// executor needs to apply a TransferEffect.
type BalanceStore interface {
	// SubBalance subtracts amount from account's balance. Returns an
	// error if account's balance would go negative.
	SubBalance(account crypto.Address, amount *big.Int) error

	// AddBalance adds amount to account's balance.
	AddBalance(account crypto.Address, amount *big.Int) error
}

// Executor executes effects against a balance store. TransferEffect is
// the only effect kind either certificate processor ever builds (spec
// §4.6 R3, §9); there is no generic read/write/delete/event path here.
type Executor struct {
	balanceStore BalanceStore

	// mu protects concurrent access
	mu sync.Mutex
}

// NewExecutor creates a new effect executor
func NewExecutor(balanceStore BalanceStore) (*Executor, error) {
	if balanceStore == nil {
		return nil, fmt.Errorf("balance store cannot be nil")
	}

	return &Executor{
		balanceStore: balanceStore,
	}, nil
}

// Execute executes a list of effects in order
func (e *Executor) Execute(effects []Effect) error {
	if e == nil {
		return fmt.Errorf("executor is nil")
	}
	if effects == nil {
		return fmt.Errorf("effects cannot be nil")
	}

	for i, effect := range effects {
		if effect == nil {
			return fmt.Errorf("effect %d is nil", i)
		}

		if err := e.executeEffect(effect); err != nil {
			return fmt.Errorf("effect %d: %w", i, err)
		}
	}

	return nil
}

// executeEffect executes a single effect
func (e *Executor) executeEffect(effect Effect) error {
	if err := effect.Validate(); err != nil {
		return fmt.Errorf("invalid effect: %w", err)
	}

	switch effect.Type() {
	case EffectTypeTransfer:
		return e.executeTransfer(effect)
	default:
		return fmt.Errorf("unknown effect type: %v", effect.Type())
	}
}

// executeTransfer executes a transfer effect
func (e *Executor) executeTransfer(effect Effect) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Type assert to get transfer details
	transfer, ok := effect.(TransferEffect)
	if !ok {
		return fmt.Errorf("effect is not a TransferEffect")
	}

	if err := e.balanceStore.SubBalance(transfer.From, transfer.Amount); err != nil {
		return fmt.Errorf("failed to subtract from %s: %w", transfer.From, err)
	}

	if err := e.balanceStore.AddBalance(transfer.To, transfer.Amount); err != nil {
		// The debit from transfer.From has already been applied and is
		// not rolled back here.
		return fmt.Errorf("failed to add to %s: %w", transfer.To, err)
	}

	return nil
}
