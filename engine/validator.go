// Package engine is the per-validator façade (spec §4.8, §5, §9): it
// wires the account store, vote store, transaction store, validator set,
// transaction validator and certificate processor into the two ingress
// entry points a transport exposes — on_transaction and on_vote — and
// keeps the self-vote fast path distinct from the peer-vote
// verification path.
package engine

import (
	"context"
	"fmt"
	"math/big"

	"github.com/blockberries/fquorum/capability"
	"github.com/blockberries/fquorum/certproc"
	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/recovery"
	"github.com/blockberries/fquorum/store"
	"github.com/blockberries/fquorum/txvalidate"
	"github.com/blockberries/fquorum/types"
)

// Validator is one validator process's in-memory core. The name echoes
// the domain term (a BFT validator), not a struct that merely validates.
type Validator struct {
	accounts     capability.ReadOnlyAccountCapability
	votes        *store.VoteStore
	transactions *store.TransactionStore
	validatorSet *store.ValidatorSetStore

	txValidator *txvalidate.Validator
	assembler   *recovery.Assembler
	processor   *certproc.Processor

	signer crypto.Signer
}

// Config bundles the process-wide parameters resolved at startup (spec
// §6).
type Config struct {
	N                int
	F                int
	RecoveryContract crypto.Address
	Validators       []crypto.Address
	Signer           crypto.Signer
	Broadcaster      certproc.Broadcaster
	GenesisBalances  map[crypto.Address]*big.Int

	// Accounts, when set, is used in place of a fresh in-memory
	// AccountStore — runtime.Application passes a durable,
	// IAVL-backed one here when the process is configured for
	// persistence (spec §6: "durability is a composable concern").
	Accounts *store.AccountStore
}

// NewValidator builds a Validator from its stores and configuration. It
// derives notarisation_quorum = n-3f and finality_quorum = n-f (spec
// §6); callers must have already rejected configurations where
// n < 5f+1 (see runtime.Config.Validate).
func NewValidator(cfg Config) (*Validator, error) {
	accounts := cfg.Accounts
	if accounts == nil {
		accounts = store.NewAccountStore()
	}
	votes := store.NewVoteStore()
	transactions := store.NewTransactionStore()
	validatorSet := store.NewValidatorSetStore(cfg.Validators)

	// Capabilities scope which operation gets to mutate the account
	// store versus only read it (spec §4.1, §4.8): the certificate
	// processor is the only mutator, while RPC query paths (Account,
	// RecoveryInfo) only ever see the read-only surface.
	capManager := capability.NewCapabilityManager(accounts, validatorSet)
	processorCap, err := capManager.GrantAccountCapability("certproc")
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	queryCap, err := capManager.GrantReadOnlyAccountCapability("rpc-query")
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	notarisationQuorum := cfg.N - 3*cfg.F
	finalityQuorum := cfg.N - cfg.F

	resolver := recovery.NewResolver(cfg.RecoveryContract)
	txValidator := txvalidate.NewValidator(cfg.RecoveryContract, votes, notarisationQuorum)
	assembler := recovery.NewAssembler(votes, notarisationQuorum, finalityQuorum)

	broadcaster := cfg.Broadcaster
	if broadcaster == nil {
		broadcaster = certproc.NopBroadcaster{}
	}

	processor, err := certproc.NewProcessor(processorCap, votes, transactions, resolver, broadcaster, cfg.Signer, certproc.Params{
		NotarisationQuorum: notarisationQuorum,
		FinalityQuorum:     finalityQuorum,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	if len(cfg.GenesisBalances) > 0 {
		processorCap.SeedGenesis(cfg.GenesisBalances)
	}

	return &Validator{
		accounts:     queryCap,
		votes:        votes,
		transactions: transactions,
		validatorSet: validatorSet,
		txValidator:  txValidator,
		assembler:    assembler,
		processor:    processor,
		signer:       cfg.Signer,
	}, nil
}

// OnTransaction is the ingress handler for send_raw_transaction (spec
// §6). On success it signs and appends the self-vote (bypassing
// signature verification, spec §9), records the transaction body for
// later finality execution, drives the certificate processor to
// quiescence, and returns the self-vote to the caller. It never blocks
// on peer broadcast (spec §5): the processor's broadcast calls are
// fire-and-forget.
func (v *Validator) OnTransaction(tx *types.Transaction) (types.Vote, error) {
	sender, err := tx.Sender()
	if err != nil {
		return types.Vote{}, types.ErrBadSignature
	}

	acct, err := v.accounts.Get(context.Background(), sender)
	if err != nil {
		return types.Vote{}, err
	}
	snap := acct.View()

	if _, err := v.txValidator.Validate(tx, snap); err != nil {
		return types.Vote{}, err
	}

	v.transactions.Put(tx)

	acct.WithLock(func(a *types.Account) {
		if a.Nonce == tx.Nonce {
			a.Pending = true
		}
	})

	vote := types.Vote{Account: sender, Nonce: tx.Nonce, Payload: types.TxPayload(tx.Hash())}
	if err := vote.Sign(v.signer); err != nil {
		return types.Vote{}, fmt.Errorf("engine: signing self-vote: %w", err)
	}

	// Self-vote fast path: append directly, no VerifySignature call
	// (spec §9 "the local signer is trusted for its own material").
	v.votes.Add(vote)

	if err := v.processor.Process(sender, tx.Nonce); err != nil {
		return types.Vote{}, err
	}

	return vote, nil
}

// OnVote is the ingress handler for a vote received from a peer (spec
// §4.8, §6 submit_vote). Unlike OnTransaction's self-vote path, every
// field is verified before the vote is allowed to influence state:
// signature recovery, validator-set membership, and digest match are all
// checked by Vote.VerifySignature plus an explicit membership check.
func (v *Validator) OnVote(vote types.Vote) error {
	if err := vote.VerifySignature(); err != nil {
		return types.ErrBadSignature
	}
	if !v.validatorSet.Contains(vote.Validator) {
		return types.ErrNotInValidatorSet
	}

	v.votes.Add(vote)
	return v.processor.Process(vote.Account, vote.Nonce)
}

// OnVotes is the batched variant of OnVote (spec §6 submit_votes).
func (v *Validator) OnVotes(votes []types.Vote) error {
	for _, vote := range votes {
		if err := v.OnVote(vote); err != nil {
			return err
		}
	}
	return nil
}

// RecoveryInfo implements get_recovery_info (spec §4.7, §6).
func (v *Validator) RecoveryInfo(account crypto.Address) (*types.RecoveryInfo, error) {
	acct, err := v.accounts.Get(context.Background(), account)
	if err != nil {
		return nil, err
	}
	return v.assembler.Snapshot(account, acct.View())
}

// Account exposes a read-only snapshot of an account, for transports
// that want to answer balance/nonce queries without going through
// RecoveryInfo.
func (v *Validator) Account(account crypto.Address) (types.Snapshot, error) {
	acct, err := v.accounts.Get(context.Background(), account)
	if err != nil {
		return types.Snapshot{}, err
	}
	return acct.View(), nil
}
