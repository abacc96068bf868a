// Package certproc implements the certificate processor of spec §4.6 —
// the core state machine that turns accumulated votes into nonce
// advancement (R1/R2) and payment finality (R3), re-entering on its own
// advancement (R4).
package certproc

import (
	"context"
	"fmt"

	"github.com/blockberries/fquorum/capability"
	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/effects"
	"github.com/blockberries/fquorum/quorum"
	"github.com/blockberries/fquorum/recovery"
	"github.com/blockberries/fquorum/store"
	"github.com/blockberries/fquorum/types"
)

// Params are the process-wide thresholds derived from (n, f) at startup
// (spec §6).
type Params struct {
	NotarisationQuorum int // n - 3f
	FinalityQuorum     int // n - f
}

// Processor is triggered on every vote insertion into an (account,
// nonce) pair (spec §4.6). One Processor serves every account in a
// validator; per-account exclusivity comes from types.Account.WithLock,
// not from anything in this package.
type Processor struct {
	accounts     capability.AccountCapability
	votes        *store.VoteStore
	transactions *store.TransactionStore
	resolver     *recovery.Resolver
	executor     *effects.Executor
	broadcaster  Broadcaster
	signer       crypto.Signer
	params       Params
}

func NewProcessor(
	accounts capability.AccountCapability,
	votes *store.VoteStore,
	transactions *store.TransactionStore,
	resolver *recovery.Resolver,
	broadcaster Broadcaster,
	signer crypto.Signer,
	params Params,
) (*Processor, error) {
	executor, err := effects.NewExecutor(newAccountBalances(accounts))
	if err != nil {
		return nil, fmt.Errorf("certproc: %w", err)
	}
	return &Processor{
		accounts:     accounts,
		votes:        votes,
		transactions: transactions,
		resolver:     resolver,
		executor:     executor,
		broadcaster:  broadcaster,
		signer:       signer,
		params:       params,
	}, nil
}

// Process runs the state machine rules of spec §4.6 for (account, nonce)
// to quiescence, then re-enters (R4) at the account's new current nonce
// if this call advanced it.
func (p *Processor) Process(account crypto.Address, nonce uint64) error {
	acctObj, err := p.accounts.Get(context.Background(), account)
	if err != nil {
		return err
	}

	for {
		progressed, err := p.runRules(acctObj, account, nonce)
		if err != nil {
			return err
		}
		if !progressed {
			break
		}
	}

	final := acctObj.View()
	if final.Nonce > nonce {
		return p.Process(account, final.Nonce)
	}
	return nil
}

// runRules applies R1, R2 and R3 once for (account, nonce) and reports
// whether any of them changed observable state, so the caller can loop
// to quiescence before considering re-entry (R4).
func (p *Processor) runRules(acctObj *types.Account, account crypto.Address, nonce uint64) (bool, error) {
	snap := acctObj.View()
	votes := p.votes.Votes(account, nonce)
	result := quorum.Evaluate(votes)
	total := quorum.TotalDistinctValidators(votes)
	progressed := false

	if nonce == snap.Nonce {
		if castR1, err := p.applyBottomVoteRule(acctObj, account, nonce, result, total); err != nil {
			return false, err
		} else if castR1 {
			votes = p.votes.Votes(account, nonce)
			result = quorum.Evaluate(votes)
			progressed = true
		}

		if result.Count >= p.params.NotarisationQuorum {
			if p.applyNotarisationAdvance(acctObj, nonce) {
				progressed = true
			}
		}
	}

	finalised, err := p.applyFinalityExecute(acctObj, account, nonce, result)
	if err != nil {
		return false, err
	}
	if finalised {
		progressed = true
	}

	return progressed, nil
}

// applyBottomVoteRule implements R1: if votes for this nonce cannot
// notarise any single payload but enough validators have spoken that a
// ⊥ majority is achievable, cast ⊥ (once).
func (p *Processor) applyBottomVoteRule(acctObj *types.Account, account crypto.Address, nonce uint64, result quorum.Result, total int) (bool, error) {
	if result.Count >= p.params.NotarisationQuorum {
		return false, nil
	}
	if total < p.params.FinalityQuorum {
		return false, nil
	}
	if p.votes.HasBottomVote(account, nonce, p.signer.Address()) {
		return false, nil
	}

	bv := types.Vote{Account: account, Nonce: nonce, Payload: types.BottomPayload}
	if err := bv.Sign(p.signer); err != nil {
		return false, fmt.Errorf("certproc: signing bottom vote: %w", err)
	}

	acctObj.WithLock(func(a *types.Account) {
		if a.Nonce == nonce {
			a.Pending = true
		}
	})

	if !p.votes.Add(bv) {
		return false, nil
	}
	p.broadcaster.BroadcastVote(bv)
	return true, nil
}

// applyNotarisationAdvance implements R2: a notarisation certificate
// (for a transaction or for ⊥) frees the account to move to nonce+1.
func (p *Processor) applyNotarisationAdvance(acctObj *types.Account, nonce uint64) bool {
	advanced := false
	acctObj.WithLock(func(a *types.Account) {
		if a.Nonce == nonce && a.Pending {
			a.Nonce = nonce + 1
			a.Pending = false
			advanced = true
		}
	})
	return advanced
}

// applyFinalityExecute implements R3: a finality certificate for a
// non-⊥ payload at a nonce past the account's current finalised marker
// applies the underlying transfer (via chain_start) and advances
// finalised; it also pulls account.nonce and pending forward if they
// had not yet caught up.
func (p *Processor) applyFinalityExecute(acctObj *types.Account, account crypto.Address, nonce uint64, result quorum.Result) (bool, error) {
	if result.Count < p.params.FinalityQuorum {
		return false, nil
	}
	if result.Payload.IsBottom() {
		return false, nil
	}

	snap := acctObj.View()
	if int64(nonce) <= snap.Finalised {
		return false, nil
	}

	tx, ok := p.transactions.Get(result.Payload.Hash)
	if !ok {
		// The local validator never saw this transaction's body (only
		// its hash via peer votes). Finality cannot be applied without
		// it; this is not an error, just not-yet-actionable.
		return false, nil
	}

	orig, err := p.resolver.ChainStart(tx)
	if err != nil {
		return false, err
	}

	switch {
	case int64(orig.Nonce) == snap.Finalised+1:
		amount := orig.Amount
		if err := p.executor.Execute([]effects.Effect{
			effects.TransferEffect{From: account, To: orig.Recipient, Amount: amount},
		}); err != nil {
			return false, fmt.Errorf("certproc: applying finalised transfer: %w", err)
		}
		p.advanceFinalised(acctObj, nonce)
		return true, nil

	case int64(orig.Nonce) == snap.Finalised:
		// Tip already executed through a prior finalisation in this
		// chain; just mark this nonce finalised without re-applying.
		p.advanceFinalised(acctObj, nonce)
		return true, nil

	default:
		// Inconsistent orig.Nonce under adversarial input (spec §9 open
		// question): ignore, never panic.
		return false, nil
	}
}

func (p *Processor) advanceFinalised(acctObj *types.Account, nonce uint64) {
	acctObj.WithLock(func(a *types.Account) {
		a.Finalised = int64(nonce)
		if a.Nonce < nonce+1 {
			a.Nonce = nonce + 1
		}
		a.Pending = false
	})
}
