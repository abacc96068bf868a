// Package quorum implements the quorum evaluator of spec §4.3: given the
// votes stored at one (account, nonce), partition them by payload, count
// distinct validators per partition, and report the winning payload.
package quorum

import (
	"sort"

	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/types"
)

// Result is the outcome of evaluating a vote set: the largest
// distinct-validator count observed for any single payload, the payload
// that achieved it, and the validators backing it.
type Result struct {
	Count   int
	Payload types.VotePayload
	Members []crypto.Address
}

// Evaluate partitions votes by payload, counting each validator once per
// partition (a validator that double-voted for the same payload — which
// the vote store should already prevent — is not double-counted), and
// returns the partition with the largest membership.
//
// Ties are broken deterministically by ordering tied payloads by hash
// bytes and picking the lexicographically smallest; the processor only
// compares counts against thresholds; per spec §4.3 the actual winner
// among ties is not safety-critical, but determinism still matters for
// reproducible tests.
func Evaluate(votes []types.Vote) Result {
	members := make(map[types.VotePayload]map[crypto.Address]struct{})

	for _, v := range votes {
		set, ok := members[v.Payload]
		if !ok {
			set = make(map[crypto.Address]struct{})
			members[v.Payload] = set
		}
		set[v.Validator] = struct{}{}
	}

	payloads := make([]types.VotePayload, 0, len(members))
	for p := range members {
		payloads = append(payloads, p)
	}
	sort.Slice(payloads, func(i, j int) bool {
		return lessPayload(payloads[i], payloads[j])
	})

	var best Result
	for _, p := range payloads {
		set := members[p]
		if len(set) > best.Count {
			best = Result{Count: len(set), Payload: p, Members: sortedAddresses(set)}
		}
	}
	return best
}

// CountDistinct returns the distinct-validator count for payload within
// votes, without regard to whether it is the overall winner.
func CountDistinct(votes []types.Vote, payload types.VotePayload) int {
	seen := make(map[crypto.Address]struct{})
	for _, v := range votes {
		if v.Payload != payload {
			continue
		}
		seen[v.Validator] = struct{}{}
	}
	return len(seen)
}

// TotalDistinctValidators returns the number of distinct validators with
// any vote in votes, regardless of payload.
func TotalDistinctValidators(votes []types.Vote) int {
	seen := make(map[crypto.Address]struct{})
	for _, v := range votes {
		seen[v.Validator] = struct{}{}
	}
	return len(seen)
}

func lessPayload(a, b types.VotePayload) bool {
	ab, bb := a.Hash.Bytes(), b.Hash.Bytes()
	for i := range ab {
		if ab[i] != bb[i] {
			return ab[i] < bb[i]
		}
	}
	return false
}

func sortedAddresses(set map[crypto.Address]struct{}) []crypto.Address {
	out := make([]crypto.Address, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
