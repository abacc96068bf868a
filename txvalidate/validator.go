// Package txvalidate implements the transaction validator of spec §4.4:
// the checks a signed transaction must pass before a validator casts its
// self-vote and drives the certificate processor.
package txvalidate

import (
	"fmt"
	"math/big"

	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/quorum"
	"github.com/blockberries/fquorum/types"
)

// VoteSource is the subset of *store.VoteStore the validator needs to
// check recovery-transaction notarisation certificates.
type VoteSource interface {
	Votes(account crypto.Address, nonce uint64) []types.Vote
}

// Validator runs the spec §4.4 checks against a transaction and the
// current state of its sender's account.
type Validator struct {
	recoveryContract   crypto.Address
	votes              VoteSource
	notarisationQuorum int
}

func NewValidator(recoveryContract crypto.Address, votes VoteSource, notarisationQuorum int) *Validator {
	return &Validator{recoveryContract: recoveryContract, votes: votes, notarisationQuorum: notarisationQuorum}
}

// Validate runs the ordered checks of spec §4.4 against tx and the
// sender account's current snapshot, returning the recovered sender on
// success. acct must be the account named by tx's recovered sender.
func (v *Validator) Validate(tx *types.Transaction, acct types.Snapshot) (crypto.Address, error) {
	sender, err := tx.Sender()
	if err != nil {
		return crypto.Address{}, types.ErrBadSignature
	}
	if sender != acct.Address {
		return crypto.Address{}, types.ErrBadSignature
	}

	if acct.Pending {
		return crypto.Address{}, types.ErrPending
	}

	if tx.Nonce != acct.Nonce {
		return crypto.Address{}, types.ErrNonceMismatch
	}

	switch tx.Kind(v.recoveryContract) {
	case types.TxKindPayment:
		if err := v.validatePayment(tx, acct); err != nil {
			return crypto.Address{}, err
		}
	case types.TxKindRecovery:
		if err := v.validateRecovery(tx, sender); err != nil {
			return crypto.Address{}, err
		}
	}

	return sender, nil
}

func (v *Validator) validatePayment(tx *types.Transaction, acct types.Snapshot) error {
	if acct.Finalised != int64(tx.Nonce)-1 {
		return types.ErrNotFinalisedPrev
	}
	amount := tx.Amount
	if amount == nil {
		amount = big.NewInt(0)
	}
	if acct.Balance.Cmp(amount) < 0 {
		return types.ErrInsufficientBalance
	}
	return nil
}

// validateRecovery implements spec §4.4's recovery branch: the payload
// must decode to a tip transaction signed by the same sender, the tip
// must already hold a notarisation certificate at its own nonce, and
// every intermediate nonce between the tip and tx must hold a
// notarisation certificate for ⊥.
func (v *Validator) validateRecovery(tx *types.Transaction, sender crypto.Address) error {
	tip, err := tx.Tip()
	if err != nil {
		return joinRecovery(types.ErrMissingTip)
	}

	tipSender, err := tip.Sender()
	if err != nil || tipSender != sender {
		return joinRecovery(types.ErrTipSenderMismatch)
	}

	tipPayload := types.TxPayload(tip.Hash())
	tipVotes := v.votes.Votes(sender, tip.Nonce)
	if quorum.CountDistinct(tipVotes, tipPayload) < v.notarisationQuorum {
		return joinRecovery(types.ErrTipNotNotarised)
	}

	for k := tip.Nonce + 1; k < tx.Nonce; k++ {
		votes := v.votes.Votes(sender, k)
		if quorum.CountDistinct(votes, types.BottomPayload) < v.notarisationQuorum {
			return joinRecovery(types.ErrIntermediateNotBottom)
		}
	}

	return nil
}

func joinRecovery(cause error) error {
	return fmt.Errorf("%w: %w", types.ErrInvalidRecovery, cause)
}
