// Package mempool maintains the pool of pending transactions waiting to be
// picked up by the miner's next block template. Selection is FIFO only;
// fee-based ordering is a Non-goal of this engine.
package mempool

import (
	"sync"

	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
)

// Mempool is a FIFO queue of pending transactions, deduplicated by id.
type Mempool struct {
	mu    sync.RWMutex
	order [][32]byte
	txs   map[[32]byte]*tx.Transaction
}

// New constructs an empty mempool.
func New() *Mempool {
	return &Mempool{
		txs: make(map[[32]byte]*tx.Transaction),
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.order)
}

// Upsert adds t to the pool if its id is not already present, and returns
// the new pool size. A transaction already in the pool keeps its original
// position in FIFO order.
func (mp *Mempool) Upsert(t *tx.Transaction) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	id := t.RawID()
	if _, exists := mp.txs[id]; !exists {
		mp.order = append(mp.order, id)
	}
	mp.txs[id] = t

	return len(mp.order)
}

// Delete removes t from the pool.
func (mp *Mempool) Delete(t *tx.Transaction) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	id := t.RawID()
	if _, exists := mp.txs[id]; !exists {
		return
	}
	delete(mp.txs, id)

	for i, v := range mp.order {
		if v == id {
			mp.order = append(mp.order[:i], mp.order[i+1:]...)
			break
		}
	}
}

// Truncate clears all transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.order = nil
	mp.txs = make(map[[32]byte]*tx.Transaction)
}

// PickBest returns up to howMany pending transactions in FIFO order.
// howMany == -1 returns every pending transaction.
func (mp *Mempool) PickBest(howMany int) []*tx.Transaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	if howMany == -1 || howMany > len(mp.order) {
		howMany = len(mp.order)
	}

	out := make([]*tx.Transaction, 0, howMany)
	for _, id := range mp.order[:howMany] {
		out = append(out, mp.txs[id])
	}

	return out
}
