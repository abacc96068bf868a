package types

import "github.com/blockberries/fquorum/crypto"

// Certificate is a derived view over the vote store: the set of votes
// sharing (account, nonce, payload), one per distinct validator (spec
// §3). Certificates are never persisted as primary records — they are
// recomputed from the vote store whenever needed.
type Certificate struct {
	Account crypto.Address
	Nonce   uint64
	Payload VotePayload

	// Votes holds exactly one vote per distinct validator.
	Votes []Vote
}

// DistinctValidators returns the number of distinct validators backing
// the certificate.
func (c Certificate) DistinctValidators() int {
	return len(c.Votes)
}

// MeetsThreshold reports whether the certificate has at least threshold
// distinct validator votes. Used with notarisation_quorum (n-3f) or
// finality_quorum (n-f), per spec §3 and §6.
func (c Certificate) MeetsThreshold(threshold int) bool {
	return len(c.Votes) >= threshold
}
