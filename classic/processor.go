// Package classic implements the 3f+1 comparison variant named in spec
// §9: no ⊥ sentinel, a single finality_quorum = n-f threshold, and a
// permanent lock (account stays pending forever) on any split that never
// reaches quorum. It has no recovery mechanism — spec §9 describes the
// variant "only for comparison", and recovery is exactly what it lacks.
// It shares the account store, vote store and transaction store types
// with certproc; only the processor rules differ.
package classic

import (
	"context"
	"fmt"

	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/effects"
	"github.com/blockberries/fquorum/quorum"
	"github.com/blockberries/fquorum/store"
	"github.com/blockberries/fquorum/types"
)

// Params is the single threshold this variant needs.
type Params struct {
	FinalityQuorum int // n - f
}

// Processor is the classic variant's state machine: unlike certproc's
// R1/R2/R3/R4, there is exactly one rule — a non-⊥ payload reaching
// finality_quorum executes and advances the account; anything short of
// quorum leaves the account pending indefinitely (spec §9).
type Processor struct {
	accounts     *store.AccountStore
	votes        *store.VoteStore
	transactions *store.TransactionStore
	executor     *effects.Executor
	params       Params
}

func NewProcessor(accounts *store.AccountStore, votes *store.VoteStore, transactions *store.TransactionStore, params Params) (*Processor, error) {
	executor, err := effects.NewExecutor(newAccountBalances(accounts))
	if err != nil {
		return nil, fmt.Errorf("classic: %w", err)
	}
	return &Processor{
		accounts:     accounts,
		votes:        votes,
		transactions: transactions,
		executor:     executor,
		params:       params,
	}, nil
}

// Process evaluates the accumulated votes for (account, nonce) and
// applies finality if quorum has been reached. It never marks an
// account pending — its caller does that — and never un-pends an
// account that falls short of quorum: that is the "permanent lock"
// spec §9 describes.
func (p *Processor) Process(account crypto.Address, nonce uint64) error {
	acctObj, err := p.accounts.Get(context.Background(), account)
	if err != nil {
		return err
	}

	snap := acctObj.View()
	if int64(nonce) <= snap.Finalised {
		return nil
	}

	votes := p.votes.Votes(account, nonce)
	result := quorum.Evaluate(votes)
	if result.Count < p.params.FinalityQuorum {
		return nil
	}
	if result.Payload.IsBottom() {
		// The classic variant never casts ⊥; a payload of Bottom here
		// would mean no transaction was ever submitted for this nonce,
		// which cannot reach finality quorum under honest operation.
		return nil
	}

	tx, ok := p.transactions.Get(result.Payload.Hash)
	if !ok {
		return nil
	}

	if err := p.executor.Execute([]effects.Effect{
		effects.TransferEffect{From: account, To: tx.Recipient, Amount: tx.Amount},
	}); err != nil {
		return fmt.Errorf("classic: applying finalised transfer: %w", err)
	}

	acctObj.WithLock(func(a *types.Account) {
		a.Finalised = int64(nonce)
		a.Nonce = nonce + 1
		a.Pending = false
	})
	return nil
}
