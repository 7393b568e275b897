// Package chain owns the block tree, cumulative work, height index, and the
// live pixel grid derived from the active chain. It implements the
// propose/confirm/unconfirm reorg protocol that keeps all four consistent.
package chain

import (
	"sync"

	"github.com/decentraland/stoneage-node/foundation/blockchain/block"
	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
	"github.com/decentraland/stoneage-node/foundation/blockchain/pixel"
	"github.com/decentraland/stoneage-node/foundation/blockchain/store"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
)

// EventHandler defines a function called when events occur while the chain
// processes a block. The chain and its collaborators never import a
// logging library directly; the node wires this to one.
type EventHandler func(v string, args ...any)

// WorkUnit computes the weight a block contributes to cumulative work.
// Difficulty retargeting is out of scope, so the default is a constant 1
// per block; this stays a pluggable function so a real weight can be
// introduced without touching the reorg algorithm.
type WorkUnit func(hash [32]byte) uint64

// ConstantWorkUnit is the default WorkUnit: every block counts for 1.
func ConstantWorkUnit(hash [32]byte) uint64 { return 1 }

// Config configures a new Chain.
type Config struct {
	Genesis    *block.Block
	BlockStore *store.BlockStore
	TxStore    *store.TxStore
	WorkUnit   WorkUnit
	EvHandler  EventHandler
}

// Chain owns the block tree and the pixel grid derived from its active
// chain. All mutation flows through ProposeNewBlock, except FromObject,
// which replaces the indices wholesale; every other method is a read.
type Chain struct {
	mu        sync.Mutex
	evHandler EventHandler
	workUnit  WorkUnit

	blockStore *store.BlockStore
	txStore    *store.TxStore

	tip          [32]byte
	work         map[[32]byte]uint64
	height       map[[32]byte]int64
	hashByHeight map[int64][32]byte
	prev         map[[32]byte][32]byte
	next         map[[32]byte][32]byte
	pixels       map[pixel.Position]*tx.Transaction
}

// New constructs a Chain. If cfg.Genesis is non-nil it is proposed
// immediately, seeding the active chain at height 0.
func New(cfg Config) (*Chain, error) {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	workUnit := cfg.WorkUnit
	if workUnit == nil {
		workUnit = ConstantWorkUnit
	}

	blockStore := cfg.BlockStore
	if blockStore == nil {
		blockStore = store.NewBlockStore()
	}
	txStore := cfg.TxStore
	if txStore == nil {
		txStore = store.NewTxStore()
	}

	c := &Chain{
		evHandler:    ev,
		workUnit:     workUnit,
		blockStore:   blockStore,
		txStore:      txStore,
		tip:          crypto.ZeroHash,
		work:         map[[32]byte]uint64{crypto.ZeroHash: 0},
		height:       map[[32]byte]int64{crypto.ZeroHash: -1},
		hashByHeight: make(map[int64][32]byte),
		prev:         make(map[[32]byte][32]byte),
		next:         make(map[[32]byte][32]byte),
		pixels:       make(map[pixel.Position]*tx.Transaction),
	}

	if cfg.Genesis != nil {
		if _, _, err := c.ProposeNewBlock(cfg.Genesis); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Chain) known(hash [32]byte) bool {
	_, ok := c.work[hash]
	return ok
}

func (c *Chain) onActiveChain(hash [32]byte) bool {
	_, ok := c.height[hash]
	return ok
}

// ProposeNewBlock persists block and its transactions, records its work,
// and reorganizes the active chain if it now carries more cumulative work
// than the current tip. It returns the hashes unconfirmed and confirmed by
// the reorg, both empty if block was accepted only as a side branch.
func (c *Chain) ProposeNewBlock(b *block.Block) (unconfirmed, confirmed [][32]byte, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := b.Validate(); err != nil {
		return nil, nil, err
	}

	hash := b.RawID()
	prevHash := b.Header.PrevHash

	if !c.known(prevHash) {
		return nil, nil, missingParentError(hash, prevHash)
	}

	c.evHandler("chain: proposeNewBlock: persist: blk[%x]", hash)

	// Persist every transaction of every proposed block, regardless of
	// whether it ends up on the active chain, so a later reorg rollback can
	// always resolve a spent transaction's prior owner.
	c.blockStore.Set(b)
	for _, t := range b.Transactions {
		c.txStore.Set(t)
	}

	c.prev[hash] = prevHash
	c.work[hash] = c.work[prevHash] + c.workUnit(hash)

	if c.work[hash] <= c.work[c.tip] {
		c.evHandler("chain: proposeNewBlock: blk[%x]: side branch, work[%d] <= tip work[%d]", hash, c.work[hash], c.work[c.tip])
		return nil, nil, nil
	}

	return c.appendNewBlock(hash)
}

// appendNewBlock walks back from hash to the common ancestor with the
// current active chain, unconfirms the abandoned suffix, then confirms the
// new suffix ancestor-first, validating each block as it goes. On
// validation failure it rolls the active chain back to its pre-call state
// before returning the error.
func (c *Chain) appendNewBlock(hash [32]byte) (unconfirmed, confirmed [][32]byte, err error) {
	var toConfirm [][32]byte
	ancestor := hash
	for !c.onActiveChain(ancestor) {
		toConfirm = append(toConfirm, ancestor)
		ancestor = c.prev[ancestor]
	}

	var toUnconfirm [][32]byte
	for cur := c.tip; cur != ancestor; cur = c.prev[cur] {
		toUnconfirm = append(toUnconfirm, cur)
	}

	// toConfirm was collected tip-first; reverse to ancestor-first.
	for i, j := 0, len(toConfirm)-1; i < j; i, j = i+1, j-1 {
		toConfirm[i], toConfirm[j] = toConfirm[j], toConfirm[i]
	}

	for _, h := range toUnconfirm {
		blk, _ := c.blockStore.Get(h)
		c.unconfirm(blk)
	}

	for _, h := range toConfirm {
		blk, _ := c.blockStore.Get(h)
		if verr := c.checkValidBlock(blk); verr != nil {
			c.rollback(confirmed, toUnconfirm)
			return nil, nil, verr
		}
		c.confirm(blk)
		confirmed = append(confirmed, h)
	}

	c.evHandler("chain: proposeNewBlock: blk[%x]: reorg complete: unconfirmed[%d] confirmed[%d]", hash, len(toUnconfirm), len(toConfirm))

	return toUnconfirm, toConfirm, nil
}

// rollback restores the active chain to its pre-call state after a
// validation failure partway through confirming the new suffix. confirmed
// holds the prefix of toConfirm that was already confirmed (ancestor-first);
// it is unconfirmed tip-first to undo that prefix. toUnconfirm (collected
// tip-first) is then re-confirmed ancestor-first, the exact inverse of the
// unconfirm pass that preceded appendNewBlock's confirm loop.
func (c *Chain) rollback(confirmed, toUnconfirm [][32]byte) {
	for i := len(confirmed) - 1; i >= 0; i-- {
		blk, _ := c.blockStore.Get(confirmed[i])
		c.unconfirm(blk)
	}

	for i := len(toUnconfirm) - 1; i >= 0; i-- {
		blk, _ := c.blockStore.Get(toUnconfirm[i])
		c.confirm(blk)
	}
}

// confirm makes block the new tip: it must already be validated and its
// PrevHash must equal the current tip.
func (c *Chain) confirm(b *block.Block) {
	hash := b.RawID()
	prevHash := b.Header.PrevHash

	c.next[prevHash] = hash
	c.tip = hash
	h := c.height[prevHash] + 1
	c.height[hash] = h
	c.hashByHeight[h] = hash

	for _, t := range b.Transactions {
		c.pixels[t.Position] = t
	}
}

// unconfirm rolls block off the tip of the active chain, restoring the
// pixel grid to its state just before block was confirmed.
func (c *Chain) unconfirm(b *block.Block) {
	hash := b.RawID()
	prevHash := b.Header.PrevHash

	c.tip = prevHash
	delete(c.next, prevHash)
	delete(c.hashByHeight, c.height[hash])
	delete(c.height, hash)

	for i := len(b.Transactions) - 1; i >= 1; i-- {
		t := b.Transactions[i]
		if prevTx, ok := c.txStore.Get(t.Previous); ok {
			c.pixels[prevTx.Position] = prevTx
		}
	}

	coinbase := b.Transactions[0]
	delete(c.pixels, coinbase.Position)
}

// checkValidBlock validates block against the pixel grid as it would stand
// immediately before block is confirmed. It never mutates c.pixels; it
// seeds a scratch map so chained transfers on the same pixel within one
// block validate against each other.
func (c *Chain) checkValidBlock(b *block.Block) error {
	hash := b.RawID()
	prevHash := b.Header.PrevHash

	if !c.known(prevHash) {
		return missingParentError(hash, prevHash)
	}

	coinbase := b.Transactions[0]
	p := coinbase.Position
	if _, exists := c.pixels[p]; exists {
		return pixelMinedError(p)
	}

	height := c.height[prevHash] + 1
	if height != 0 {
		adjacent := false
		for _, n := range p.Neighbors() {
			if _, ok := c.pixels[n]; ok {
				adjacent = true
				break
			}
		}
		if !adjacent {
			return ErrNotAdjacent
		}
	}

	scratch := map[pixel.Position]*tx.Transaction{p: coinbase}

	for i := 1; i < len(b.Transactions); i++ {
		t := b.Transactions[i]
		q := t.Position

		owner, seeded := scratch[q]
		if !seeded {
			owner = c.pixels[q]
		}
		if owner == nil || t.Previous != owner.RawID() || !t.Verify(owner.Owner) {
			return signatureMismatchError(hash, i)
		}

		scratch[q] = t
	}

	return nil
}
