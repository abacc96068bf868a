package certproc

import "github.com/blockberries/fquorum/types"

// Broadcaster fans a locally-produced vote out to peer validators. It
// MUST be fire-and-forget from the processor's point of view (spec §5:
// "returning before broadcast completes is ... part of the protocol's
// value proposition"); implementations swallow peer-transport failures
// rather than surface them here (spec §7).
type Broadcaster interface {
	BroadcastVote(v types.Vote)
}

// NopBroadcaster discards votes. Useful for single-validator tests and
// for the classic-variant comparison harness.
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastVote(types.Vote) {}
