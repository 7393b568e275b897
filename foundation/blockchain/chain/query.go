package chain

import (
	"encoding/hex"
	"fmt"

	"github.com/decentraland/stoneage-node/foundation/blockchain/block"
	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
	"github.com/decentraland/stoneage-node/foundation/blockchain/pixel"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
)

func hashHex(h [32]byte) string {
	return hex.EncodeToString(h[:])
}

func hashFromHex(s string) ([32]byte, error) {
	var h [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("chain: invalid hash %q: %w", s, err)
	}
	if len(b) != 32 {
		return h, fmt.Errorf("chain: invalid hash length %q", s)
	}
	copy(h[:], b)
	return h, nil
}

// GetBlock returns the block stored under hash, if known. This looks at
// every known block, not just the active chain.
func (c *Chain) GetBlock(hash [32]byte) (*block.Block, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.blockStore.Get(hash)
}

// GetTransaction returns the transaction stored under hash, if known.
func (c *Chain) GetTransaction(hash [32]byte) (*tx.Transaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.txStore.Get(hash)
}

// GetTipBlock returns the block at the head of the active chain.
func (c *Chain) GetTipBlock() (*block.Block, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tip == crypto.ZeroHash {
		return nil, false
	}
	return c.blockStore.Get(c.tip)
}

// GetTip returns the raw id of the active chain's tip.
func (c *Chain) GetTip() [32]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.tip
}

// GetCurrentHeight returns the height of the active chain's tip, -1 if no
// block has been confirmed yet.
func (c *Chain) GetCurrentHeight() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.height[c.tip]
}

// GetPixel returns the transaction that currently owns position p on the
// active chain, if any.
func (c *Chain) GetPixel(p pixel.Position) (*tx.Transaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.pixels[p]
	return t, ok
}

// CopyPixels returns a snapshot of every owned pixel on the active chain.
func (c *Chain) CopyPixels() map[pixel.Position]*tx.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[pixel.Position]*tx.Transaction, len(c.pixels))
	for p, t := range c.pixels {
		out[p] = t
	}
	return out
}

// GetBlockLocator walks the active chain backward from the tip, collecting
// the first 10 hashes one per height, then one hash per step at a doubling
// stride (2, 4, 8, ...) until genesis. A future peer can diff its own
// chain against this list to find the common ancestor efficiently.
func (c *Chain) GetBlockLocator() [][32]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	var locator [][32]byte
	hash := c.tip
	stride := int64(1)

	for hash != crypto.ZeroHash {
		locator = append(locator, hash)

		if len(locator) >= 10 {
			stride *= 2
		}

		for i := int64(0); i < stride && hash != crypto.ZeroHash; i++ {
			hash = c.prev[hash]
		}
	}

	return locator
}

// =============================================================================

// Snapshot is a portable, JSON-friendly image of the chain's indices.
// Pixels are re-derivable from the active chain and are omitted.
type Snapshot struct {
	Tip          string            `json:"tip"`
	Work         map[string]uint64 `json:"work"`
	Next         map[string]string `json:"next"`
	HashByHeight map[int64]string  `json:"hash_by_height"`
	Height       map[string]int64  `json:"height"`
	Prev         map[string]string `json:"prev"`
}

// ToObject returns a portable snapshot of the chain's indices.
func (c *Chain) ToObject() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Tip:          hashHex(c.tip),
		Work:         make(map[string]uint64, len(c.work)),
		Next:         make(map[string]string, len(c.next)),
		HashByHeight: make(map[int64]string, len(c.hashByHeight)),
		Height:       make(map[string]int64, len(c.height)),
		Prev:         make(map[string]string, len(c.prev)),
	}

	for h, w := range c.work {
		s.Work[hashHex(h)] = w
	}
	for h, n := range c.next {
		s.Next[hashHex(h)] = hashHex(n)
	}
	for height, h := range c.hashByHeight {
		s.HashByHeight[height] = hashHex(h)
	}
	for h, height := range c.height {
		s.Height[hashHex(h)] = height
	}
	for h, p := range c.prev {
		s.Prev[hashHex(h)] = hashHex(p)
	}

	return s
}

// FromObject replaces the chain's indices with the contents of s. The
// pixel grid is left untouched; callers that need it rebuilt should walk
// the active chain via the restored indices and replay confirm.
func (c *Chain) FromObject(s Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tip, err := hashFromHex(s.Tip)
	if err != nil {
		return err
	}

	work := make(map[[32]byte]uint64, len(s.Work))
	for hexHash, w := range s.Work {
		h, err := hashFromHex(hexHash)
		if err != nil {
			return err
		}
		work[h] = w
	}

	next := make(map[[32]byte][32]byte, len(s.Next))
	for hexHash, hexNext := range s.Next {
		h, err := hashFromHex(hexHash)
		if err != nil {
			return err
		}
		n, err := hashFromHex(hexNext)
		if err != nil {
			return err
		}
		next[h] = n
	}

	hashByHeight := make(map[int64][32]byte, len(s.HashByHeight))
	for height, hexHash := range s.HashByHeight {
		h, err := hashFromHex(hexHash)
		if err != nil {
			return err
		}
		hashByHeight[height] = h
	}

	height := make(map[[32]byte]int64, len(s.Height))
	for hexHash, ht := range s.Height {
		h, err := hashFromHex(hexHash)
		if err != nil {
			return err
		}
		height[h] = ht
	}

	prev := make(map[[32]byte][32]byte, len(s.Prev))
	for hexHash, hexPrev := range s.Prev {
		h, err := hashFromHex(hexHash)
		if err != nil {
			return err
		}
		p, err := hashFromHex(hexPrev)
		if err != nil {
			return err
		}
		prev[h] = p
	}

	c.tip = tip
	c.work = work
	c.next = next
	c.hashByHeight = hashByHeight
	c.height = height
	c.prev = prev

	return nil
}
