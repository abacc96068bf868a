package store

import (
	"sync"

	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/types"
)

// voteKey indexes the vote store by (account, nonce), as spec §4.2
// requires.
type voteKey struct {
	Account crypto.Address
	Nonce   uint64
}

// VoteStore is the append-only, per-(account, nonce) bag of votes (spec
// §4.2). It is the only cross-account read/write surface inside a
// validator (spec §5); all its methods lock internally and are safe for
// concurrent use from multiple account handlers.
type VoteStore struct {
	mu    sync.RWMutex
	votes map[voteKey][]types.Vote
}

func NewVoteStore() *VoteStore {
	return &VoteStore{votes: make(map[voteKey][]types.Vote)}
}

// Add appends v subject to the dedup rules in spec §4.2:
//   - a transaction-payload vote is dropped if the validator already has
//     any vote (of either payload kind) at (account, nonce);
//   - a ⊥-payload vote is dropped only if the validator already has a ⊥
//     vote at (account, nonce).
//
// Returns true if the vote was appended, false if dropped as a
// duplicate. Re-delivering an already-stored vote is therefore a no-op,
// satisfying the idempotence law in spec §8.
func (vs *VoteStore) Add(v types.Vote) bool {
	key := voteKey{Account: v.Account, Nonce: v.Nonce}

	vs.mu.Lock()
	defer vs.mu.Unlock()

	existing := vs.votes[key]
	hasAny := false
	hasBottom := false
	for _, e := range existing {
		if e.Validator != v.Validator {
			continue
		}
		hasAny = true
		if e.Payload.IsBottom() {
			hasBottom = true
		}
	}

	if v.Payload.IsBottom() {
		if hasBottom {
			return false
		}
	} else if hasAny {
		return false
	}

	vs.votes[key] = append(existing, v)
	return true
}

// Votes returns a defensive copy of all votes stored at (account, nonce).
func (vs *VoteStore) Votes(account crypto.Address, nonce uint64) []types.Vote {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	existing := vs.votes[voteKey{Account: account, Nonce: nonce}]
	out := make([]types.Vote, len(existing))
	copy(out, existing)
	return out
}

// CountDistinct returns the number of distinct validators whose vote at
// (account, nonce) carries payload.
func (vs *VoteStore) CountDistinct(account crypto.Address, nonce uint64, payload types.VotePayload) int {
	votes := vs.Votes(account, nonce)
	seen := make(map[crypto.Address]struct{}, len(votes))
	count := 0
	for _, v := range votes {
		if v.Payload != payload {
			continue
		}
		if _, ok := seen[v.Validator]; ok {
			continue
		}
		seen[v.Validator] = struct{}{}
		count++
	}
	return count
}

// TotalDistinctValidators returns the number of distinct validators with
// any vote (of either payload kind) at (account, nonce). Used by the
// bottom-vote rule (R1, spec §4.6), which fires on total participation
// independent of which payload each vote names.
func (vs *VoteStore) TotalDistinctValidators(account crypto.Address, nonce uint64) int {
	votes := vs.Votes(account, nonce)
	seen := make(map[crypto.Address]struct{}, len(votes))
	for _, v := range votes {
		seen[v.Validator] = struct{}{}
	}
	return len(seen)
}

// HasBottomVote reports whether validator has already cast ⊥ at
// (account, nonce) — the guard in R1 preventing a validator from casting
// ⊥ twice at the same nonce.
func (vs *VoteStore) HasBottomVote(account crypto.Address, nonce uint64, validator crypto.Address) bool {
	for _, v := range vs.Votes(account, nonce) {
		if v.Validator == validator && v.Payload.IsBottom() {
			return true
		}
	}
	return false
}
