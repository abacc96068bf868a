package store

import (
	"sync"

	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/types"
)

// TransactionStore is the local validator's cache of transaction bodies
// it has seen, keyed by content hash. A vote payload only ever carries a
// hash (spec §9: "VotePayload = Tx(hash) | Bottom"); the certificate
// processor needs the full transaction — recipient, amount, and any
// recovery tip — to apply finality (R3, spec §4.6) and to walk
// chain_start (spec §4.5). This store is populated only with the
// transactions this validator receives directly (send_raw_transaction);
// bodies are not fetched from peers. It is never consulted for equality
// or ordering, only lookup by hash.
type TransactionStore struct {
	mu  sync.RWMutex
	txs map[crypto.Hash]*types.Transaction
}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{txs: make(map[crypto.Hash]*types.Transaction)}
}

// Put records tx under its content hash.
func (s *TransactionStore) Put(tx *types.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[tx.Hash()] = tx
}

// Get returns the transaction previously stored under hash, if any.
func (s *TransactionStore) Get(hash crypto.Hash) (*types.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.txs[hash]
	return tx, ok
}
