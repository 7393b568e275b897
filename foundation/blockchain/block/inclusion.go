package block

import (
	"bytes"
	"errors"

	"github.com/decentraland/stoneage-node/foundation/blockchain/merkle"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
)

// ErrNotInBlock is returned by ProveInclusion when the requested
// transaction is not part of the block.
var ErrNotInBlock = errors.New("block: transaction not in block")

// TxID adapts a transaction's raw id to merkle.Hashable so the generic
// tree can be built over a block's transaction list. Its leaf hash is the
// id itself; no further hashing happens at the leaf level, matching how
// MerkleRoot treats its input ids.
type TxID [32]byte

// Hash returns the id unchanged; transaction ids are already a digest.
func (t TxID) Hash() ([]byte, error) {
	out := make([]byte, 32)
	copy(out, t[:])
	return out, nil
}

// Equals reports whether two ids are identical.
func (t TxID) Equals(other TxID) bool {
	return t == other
}

// ProveInclusion returns a Merkle proof that target is one of b's
// transactions: the sibling hashes and their left/right order, to be
// replayed by VerifyInclusion against the block header's Merkle root
// without needing the rest of the block. A single-transaction block
// needs no proof — its root is the transaction's own id — and returns a
// nil, nil pair.
func (b *Block) ProveInclusion(target *tx.Transaction) ([][]byte, []int64, error) {
	targetID := TxID(target.RawID())

	ids := make([]TxID, len(b.Transactions))
	for i, t := range b.Transactions {
		ids[i] = TxID(t.RawID())
	}

	if len(ids) == 1 {
		if ids[0] != targetID {
			return nil, nil, ErrNotInBlock
		}
		return nil, nil, nil
	}

	tree, err := merkle.NewTree(ids, merkle.WithHashStrategy[TxID](merkle.DoubleSHA256Strategy))
	if err != nil {
		return nil, nil, err
	}

	proof, order, err := tree.Proof(targetID)
	if err != nil {
		return nil, nil, ErrNotInBlock
	}

	return proof, order, nil
}

// VerifyInclusion recomputes a Merkle root by folding proof into txID in
// the order proof describes, and reports whether the result matches
// root. This is how a client holding only a block header can confirm a
// transaction was included in it.
func VerifyInclusion(root [32]byte, txID [32]byte, proof [][]byte, order []int64) bool {
	hash := txID[:]

	for i, sibling := range proof {
		h := merkle.DoubleSHA256Strategy()
		if order[i] == 0 {
			h.Write(sibling)
			h.Write(hash)
		} else {
			h.Write(hash)
			h.Write(sibling)
		}
		hash = h.Sum(nil)
	}

	return bytes.Equal(hash, root[:])
}
