package block

import (
	"errors"

	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
	"github.com/decentraland/stoneage-node/foundation/blockchain/wire"
)

// ErrEmptyBlock is returned by operations that require at least the
// coinbase transaction to be present.
var ErrEmptyBlock = errors.New("block: no transactions")

// ErrNotCoinbase is returned when the first transaction of a block is not
// a coinbase.
var ErrNotCoinbase = errors.New("block: first transaction is not a coinbase")

// Block is a header paired with its ordered transaction list. The first
// transaction is always the coinbase.
type Block struct {
	Header       Header
	Transactions []*tx.Transaction
}

// FromCoinbase builds a single-transaction block: the header fields the
// caller supplies, plus a Merkle root that is just the coinbase's id.
func FromCoinbase(coinbase *tx.Transaction, header Header) (*Block, error) {
	if coinbase == nil || !coinbase.IsCoinbase() {
		return nil, ErrNotCoinbase
	}

	b := &Block{
		Header:       header,
		Transactions: []*tx.Transaction{coinbase},
	}
	b.Header.MerkleRoot = b.computeMerkleRoot()

	return b, nil
}

// AddTransaction appends tx to the block and recomputes the Merkle root.
func (b *Block) AddTransaction(t *tx.Transaction) {
	b.Transactions = append(b.Transactions, t)
	b.Header.MerkleRoot = b.computeMerkleRoot()
}

// Coinbase returns the block's first transaction.
func (b *Block) Coinbase() *tx.Transaction {
	if len(b.Transactions) == 0 {
		return nil
	}
	return b.Transactions[0]
}

// Validate checks the block's structural invariants: non-empty, first
// transaction is a coinbase, and the header's Merkle root matches the
// transaction list.
func (b *Block) Validate() error {
	if len(b.Transactions) == 0 {
		return ErrEmptyBlock
	}
	if !b.Transactions[0].IsCoinbase() {
		return ErrNotCoinbase
	}
	if !b.ValidMerkleRoot() {
		return errors.New("block: merkle root does not match transactions")
	}
	return nil
}

// ValidMerkleRoot recomputes the Merkle root over the current transaction
// list and compares it against the header.
func (b *Block) ValidMerkleRoot() bool {
	return b.computeMerkleRoot() == b.Header.MerkleRoot
}

func (b *Block) computeMerkleRoot() [32]byte {
	ids := make([][32]byte, len(b.Transactions))
	for i, t := range b.Transactions {
		ids[i] = t.RawID()
	}
	return MerkleRoot(ids)
}

// MerkleRoot computes the Bitcoin-style Merkle root over a list of raw
// (natural byte order) transaction ids: pair-hash with double-SHA-256,
// duplicating the last id when the level has an odd count, recursing until
// a single root remains. An empty list yields the zero hash.
func MerkleRoot(ids [][32]byte) [32]byte {
	if len(ids) == 0 {
		return crypto.ZeroHash
	}

	level := make([][32]byte, len(ids))
	copy(level, ids)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}

		next := make([][32]byte, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			w := wire.NewWriter()
			w.Fixed32(level[i])
			w.Fixed32(level[i+1])
			next = append(next, crypto.DoubleSHA256(w.Bytes()))
		}
		level = next
	}

	return level[0]
}

// RawID is the natural byte order double-SHA-256 of the block's header.
func (b *Block) RawID() [32]byte {
	return b.Header.RawID()
}

// ID is the block's reversed-byte hex id.
func (b *Block) ID() string {
	return b.Header.ID()
}
