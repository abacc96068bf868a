package types

import "github.com/blockberries/fquorum/crypto"

// ChainEntry is a single notarisation certificate within a RecoveryInfo
// chain, for one nonce strictly between finalised and current.
type ChainEntry struct {
	Nonce       uint64
	Certificate Certificate
}

// RecoveryInfo is the snapshot a client needs to craft a recovery
// transaction (spec §4.7, §3): the finalised transaction, the chain of
// notarisation certificates for every intervening nonce, and the
// account's current nonce.
type RecoveryInfo struct {
	Account crypto.Address

	// FinalisedNonce is account.finalised; -1 if nothing has finalised.
	FinalisedNonce int64

	// FinalisedTx is the payload certified at FinalisedNonce, populated
	// only when FinalisedNonce >= 0.
	FinalisedTx VotePayload

	// FinalityCert is the finality certificate for FinalisedNonce,
	// populated only when FinalisedNonce >= 0.
	FinalityCert *Certificate

	// CurrentNonce is account.nonce.
	CurrentNonce uint64

	// Chain holds one notarisation certificate for each nonce in
	// (FinalisedNonce, CurrentNonce), in ascending nonce order.
	Chain []ChainEntry
}

// LatestNonBottomTip returns the latest non-⊥ certified transaction in
// Chain, or FinalisedTx if every entry in Chain is ⊥ (or Chain is
// empty). Clients use this to pick the tip for a recovery transaction
// (spec §4.7).
func (r *RecoveryInfo) LatestNonBottomTip() (nonce uint64, payload VotePayload, ok bool) {
	for i := len(r.Chain) - 1; i >= 0; i-- {
		entry := r.Chain[i]
		if !entry.Certificate.Payload.IsBottom() {
			return entry.Nonce, entry.Certificate.Payload, true
		}
	}
	if r.FinalisedNonce >= 0 {
		return uint64(r.FinalisedNonce), r.FinalisedTx, true
	}
	return 0, VotePayload{}, false
}
