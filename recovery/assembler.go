package recovery

import (
	"fmt"

	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/quorum"
	"github.com/blockberries/fquorum/store"
	"github.com/blockberries/fquorum/types"
)

// VoteSource is the subset of *store.VoteStore the assembler needs.
// Defined as an interface so tests can substitute a fake vote source.
type VoteSource interface {
	Votes(account crypto.Address, nonce uint64) []types.Vote
}

var _ VoteSource = (*store.VoteStore)(nil)

// Assembler builds RecoveryInfo snapshots (spec §4.7) from an account's
// in-memory fields and the vote store.
type Assembler struct {
	votes              VoteSource
	notarisationQuorum int
	finalityQuorum     int
}

func NewAssembler(votes VoteSource, notarisationQuorum, finalityQuorum int) *Assembler {
	return &Assembler{votes: votes, notarisationQuorum: notarisationQuorum, finalityQuorum: finalityQuorum}
}

// Snapshot assembles a RecoveryInfo for account from its current
// Snapshot (spec §4.7). It returns types.ErrMissingNotarisation if some
// nonce strictly between finalised and current lacks a notarisation
// certificate — an invariant violation under honest operation.
func (a *Assembler) Snapshot(account crypto.Address, acct types.Snapshot) (*types.RecoveryInfo, error) {
	info := &types.RecoveryInfo{
		Account:        account,
		FinalisedNonce: acct.Finalised,
		CurrentNonce:   acct.Nonce,
	}

	if acct.Finalised >= 0 {
		finalisedNonce := uint64(acct.Finalised)
		votes := a.votes.Votes(account, finalisedNonce)
		result := quorum.Evaluate(votes)
		if result.Count < a.finalityQuorum {
			return nil, fmt.Errorf("recovery: %w: no finality certificate at nonce %d", types.ErrMissingNotarisation, finalisedNonce)
		}
		cert := buildCertificate(account, finalisedNonce, result.Payload, votes)
		info.FinalisedTx = result.Payload
		info.FinalityCert = &cert
	}

	start := acct.Finalised + 1
	for nonce := uint64(start); nonce < acct.Nonce; nonce++ {
		votes := a.votes.Votes(account, nonce)
		result := quorum.Evaluate(votes)
		if result.Count < a.notarisationQuorum {
			return nil, fmt.Errorf("recovery: %w: nonce %d", types.ErrMissingNotarisation, nonce)
		}
		cert := buildCertificate(account, nonce, result.Payload, votes)
		info.Chain = append(info.Chain, types.ChainEntry{Nonce: nonce, Certificate: cert})
	}

	return info, nil
}

func buildCertificate(account crypto.Address, nonce uint64, payload types.VotePayload, votes []types.Vote) types.Certificate {
	members := make([]types.Vote, 0, len(votes))
	seen := make(map[crypto.Address]struct{})
	for _, v := range votes {
		if v.Payload != payload {
			continue
		}
		if _, ok := seen[v.Validator]; ok {
			continue
		}
		seen[v.Validator] = struct{}{}
		members = append(members, v)
	}
	return types.Certificate{Account: account, Nonce: nonce, Payload: payload, Votes: members}
}
