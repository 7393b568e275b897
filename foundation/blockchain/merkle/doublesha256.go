package merkle

import (
	"bytes"
	"hash"

	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
)

// doubleSHA256 adapts crypto.DoubleSHA256 to the hash.Hash interface the
// generic tree's hashStrategy expects, so a Tree built over this strategy
// combines pairs exactly the way the block package's Bitcoin-style
// MerkleRoot does: buffer everything written, double-SHA-256 it on Sum.
type doubleSHA256 struct {
	buf bytes.Buffer
}

// DoubleSHA256Strategy is the hash constructor to pass to WithHashStrategy
// to make a Tree's intermediate node hashes double-SHA-256, matching
// foundation/blockchain/block.MerkleRoot.
func DoubleSHA256Strategy() hash.Hash {
	return &doubleSHA256{}
}

func (d *doubleSHA256) Write(p []byte) (int, error) {
	return d.buf.Write(p)
}

func (d *doubleSHA256) Sum(b []byte) []byte {
	sum := crypto.DoubleSHA256(d.buf.Bytes())
	return append(b, sum[:]...)
}

func (d *doubleSHA256) Reset() {
	d.buf.Reset()
}

func (d *doubleSHA256) Size() int {
	return 32
}

func (d *doubleSHA256) BlockSize() int {
	return 64
}
