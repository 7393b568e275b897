// Package block implements the block header, the block itself, and the
// Bitcoin-style proof-of-work and Merkle root rules that bind them.
package block

import (
	"encoding/hex"
	"time"

	"github.com/holiman/uint256"

	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
	"github.com/decentraland/stoneage-node/foundation/blockchain/wire"
)

// Version is the only header layout this node understands.
const Version uint32 = 1

// MaxTimeOffset bounds how far a header's timestamp may drift from the
// validator's clock.
const MaxTimeOffset = 2 * time.Hour

// Header carries everything needed to chain a block and prove work over it.
type Header struct {
	Version    uint32
	Height     uint32
	PrevHash   [32]byte // natural byte order
	MerkleRoot [32]byte // natural byte order
	Time       uint32
	Bits       uint32
	Nonce      uint32
}

func (h *Header) canonicalBytes() []byte {
	w := wire.NewWriter()
	w.Uint32(h.Version)
	w.Uint32(h.Height)
	w.Fixed32(h.PrevHash)
	w.Fixed32(h.MerkleRoot)
	w.Uint32(h.Time)
	w.Uint32(h.Bits)
	w.Uint32(h.Nonce)
	return w.Bytes()
}

// Serialize renders the header in its fixed wire layout.
func (h *Header) Serialize() []byte {
	return h.canonicalBytes()
}

// DeserializeHeader parses a header from its wire layout.
func DeserializeHeader(buf []byte) (Header, error) {
	r := wire.NewReader(buf)

	var h Header
	var err error

	if h.Version, err = r.Uint32(); err != nil {
		return Header{}, err
	}
	if h.Height, err = r.Uint32(); err != nil {
		return Header{}, err
	}
	if h.PrevHash, err = r.Fixed32(); err != nil {
		return Header{}, err
	}
	if h.MerkleRoot, err = r.Fixed32(); err != nil {
		return Header{}, err
	}
	if h.Time, err = r.Uint32(); err != nil {
		return Header{}, err
	}
	if h.Bits, err = r.Uint32(); err != nil {
		return Header{}, err
	}
	if h.Nonce, err = r.Uint32(); err != nil {
		return Header{}, err
	}

	return h, nil
}

// RawID is the natural (unreversed) double-SHA-256 hash of the header,
// the value used as the PrevHash field of any header chained on top of it.
func (h *Header) RawID() [32]byte {
	return crypto.DoubleSHA256(h.canonicalBytes())
}

// ID is the reversed-byte hex id of the header, the block's identity on
// the wire and in logs.
func (h *Header) ID() string {
	id := crypto.Reverse32(h.RawID())
	return hex.EncodeToString(id[:])
}

// Target decodes the compact "bits" difficulty encoding into a 256 bit
// target: byte 0 is the exponent, the low 3 bytes are the big-endian
// mantissa, target = mantissa * 256^(exponent-3), exactly Bitcoin's nBits.
func Target(bits uint32) *uint256.Int {
	exponent := bits >> 24
	mantissa := bits & 0x007fffff

	target := uint256.NewInt(uint64(mantissa))
	switch {
	case exponent < 3:
		target.Rsh(target, uint(8*(3-exponent)))
	case exponent > 3:
		target.Lsh(target, uint(8*(exponent-3)))
	}

	return target
}

// ValidProofOfWork reports whether the header's id, read as a big-endian
// 256 bit integer, is at or below the target decoded from Bits.
func (h *Header) ValidProofOfWork() bool {
	reversed := crypto.Reverse32(h.RawID())
	id := new(uint256.Int).SetBytes(reversed[:])
	return id.Cmp(Target(h.Bits)) <= 0
}

// ValidTimestamp reports whether Time is within MaxTimeOffset of now.
func (h *Header) ValidTimestamp(now time.Time) bool {
	diff := now.Unix() - int64(h.Time)
	if diff < 0 {
		diff = -diff
	}
	return diff <= int64(MaxTimeOffset/time.Second)
}

// IncreaseNonce advances the search space by one. On wraparound it also
// bumps Time so the header keeps producing new candidate ids.
func (h *Header) IncreaseNonce() {
	h.Nonce++
	if h.Nonce == 0 {
		h.Time++
	}
}
