// Package integration exercises spec §8's concrete end-to-end scenarios
// against a small in-process network of engine.Validator instances
// wired together through a fan-out broadcaster, the way a real
// deployment's transport would connect them but without a network in
// the loop.
package integration

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/engine"
	"github.com/blockberries/fquorum/types"
)

// network is n validators sharing a validator set and a recovery
// contract address, each with its own account/vote/transaction stores,
// connected by fanoutBroadcaster so a vote cast at one validator reaches
// every other.
type network struct {
	validators []*engine.Validator
	signers    []crypto.Signer
}

// fanoutBroadcaster delivers a freshly-cast vote to every other
// validator in the network by calling OnVote directly, synchronously.
// This mirrors the protocol's fire-and-forget broadcast (spec §9) in a
// test without a real transport: the call returns nothing and the
// processor never blocks on it, it just happens to run in-process.
type fanoutBroadcaster struct {
	self  int
	peers []*engine.Validator
}

func (b *fanoutBroadcaster) BroadcastVote(v types.Vote) {
	for i, peer := range b.peers {
		if i == b.self {
			continue
		}
		_ = peer.OnVote(v)
	}
}

func newNetwork(t *testing.T, n, f int, genesis map[crypto.Address]*big.Int) *network {
	t.Helper()

	var addrs []crypto.Address
	var signers []crypto.Signer
	for i := 0; i < n; i++ {
		priv, err := crypto.GenerateKey(crypto.AlgorithmSecp256k1)
		require.NoError(t, err)
		s := crypto.NewSigner(priv)
		addrs = append(addrs, s.Address())
		signers = append(signers, s)
	}

	recoveryContract := crypto.Address{0xFF, 0xFF, 0xFF, 0xFF}

	net := &network{signers: signers}
	broadcasters := make([]*fanoutBroadcaster, n)
	for i := 0; i < n; i++ {
		broadcasters[i] = &fanoutBroadcaster{self: i}
	}

	for i := 0; i < n; i++ {
		v, err := engine.NewValidator(engine.Config{
			N:                n,
			F:                f,
			RecoveryContract: recoveryContract,
			Validators:       addrs,
			Signer:           signers[i],
			Broadcaster:      broadcasters[i],
			GenesisBalances:  genesis,
		})
		require.NoError(t, err)
		net.validators = append(net.validators, v)
	}
	for i := range broadcasters {
		broadcasters[i].peers = net.validators
	}
	return net
}

// submitToSubset delivers tx, via send_raw_transaction, to every
// validator named by indices, fanning each one's resulting self-vote out
// to the whole network. A real client normally broadcasts its raw
// transaction to every validator (spec §6): each validator independently
// validates and votes. Restricting indices to a strict subset is how an
// equivocating client's split delivery is modelled; validators outside
// the subset still observe the resulting votes (fanned out here) but
// never learn that transaction's body, matching the processor's
// "not-yet-actionable" handling of a finality certificate it cannot
// execute locally.
func (net *network) submitToSubset(indices []int, tx *types.Transaction) {
	for _, vi := range indices {
		vote, err := net.validators[vi].OnTransaction(tx)
		if err != nil {
			continue
		}
		for i, v := range net.validators {
			if i == vi {
				continue
			}
			_ = v.OnVote(vote)
		}
	}
}

// allIndices returns every validator index in the network.
func (net *network) allIndices() []int {
	all := make([]int, len(net.validators))
	for i := range all {
		all[i] = i
	}
	return all
}

// submitAll delivers tx to every validator in the network — the
// non-equivocating case of submitToSubset, matching a well-behaved
// client's broadcast.
func (net *network) submitAll(tx *types.Transaction) {
	net.submitToSubset(net.allIndices(), tx)
}

func (net *network) account(vi int, addr crypto.Address) types.Snapshot {
	snap, err := net.validators[vi].Account(addr)
	if err != nil {
		return types.Snapshot{}
	}
	return snap
}

func newSigner(t *testing.T) crypto.Signer {
	t.Helper()
	priv, err := crypto.GenerateKey(crypto.AlgorithmSecp256k1)
	require.NoError(t, err)
	return crypto.NewSigner(priv)
}
