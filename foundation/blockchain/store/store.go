// Package store implements the in-memory, content-addressed block and
// transaction stores the chain manager reads and writes by hash.
package store

import (
	"sync"

	"github.com/decentraland/stoneage-node/foundation/blockchain/block"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
)

// BlockStore is a content-addressed, append-only map of blocks keyed by
// their raw id. Entries are never overwritten once set.
type BlockStore struct {
	mu     sync.RWMutex
	blocks map[[32]byte]*block.Block
}

// NewBlockStore constructs an empty BlockStore.
func NewBlockStore() *BlockStore {
	return &BlockStore{
		blocks: make(map[[32]byte]*block.Block),
	}
}

// Set stores b under its raw id.
func (s *BlockStore) Set(b *block.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocks[b.RawID()] = b
}

// Get returns the block for hash, if known.
func (s *BlockStore) Get(hash [32]byte) (*block.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blocks[hash]
	return b, ok
}

// =============================================================================

// TxStore is a content-addressed, append-only map of transactions keyed by
// their raw id. The chain manager stores every transaction of every
// proposed block here, regardless of whether the block ends up on the
// active chain, so reorg rollbacks can always resolve a spent transaction's
// prior owner.
type TxStore struct {
	mu  sync.RWMutex
	txs map[[32]byte]*tx.Transaction
}

// NewTxStore constructs an empty TxStore.
func NewTxStore() *TxStore {
	return &TxStore{
		txs: make(map[[32]byte]*tx.Transaction),
	}
}

// Set stores t under its raw id.
func (s *TxStore) Set(t *tx.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs[t.RawID()] = t
}

// Get returns the transaction for hash, if known.
func (s *TxStore) Get(hash [32]byte) (*tx.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.txs[hash]
	return t, ok
}
