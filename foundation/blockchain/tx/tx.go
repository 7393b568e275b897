// Package tx implements the pixel-ownership transaction: coinbase mints and
// signed transfers.
package tx

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
	"github.com/decentraland/stoneage-node/foundation/blockchain/pixel"
	"github.com/decentraland/stoneage-node/foundation/blockchain/wire"
)

// Version is the only transaction layout this node understands.
const Version uint8 = 1

// ErrNoPreviousTxInfo is returned by Sign when the transaction has no known
// previous transaction to spend.
var ErrNoPreviousTxInfo = errors.New("tx: no previous transaction info")

// Transaction mints or transfers ownership of a single pixel.
type Transaction struct {
	Version   uint8
	Previous  [32]byte // natural byte order; zero for coinbase
	Position  pixel.Position
	Color     pixel.Color
	Owner     *crypto.PublicKey
	Signature *crypto.Signature // nil for coinbase
}

// New constructs an empty transaction ready for the builder chain.
func New() *Transaction {
	return &Transaction{Version: Version}
}

// From sets the previous transaction id being spent.
func (tx *Transaction) From(previous [32]byte) *Transaction {
	tx.Previous = previous
	return tx
}

// To sets the new owner.
func (tx *Transaction) To(owner *crypto.PublicKey) *Transaction {
	tx.Owner = owner
	return tx
}

// Colored sets the pixel color.
func (tx *Transaction) Colored(c pixel.Color) *Transaction {
	tx.Color = c
	return tx
}

// At sets the pixel position.
func (tx *Transaction) At(x, y int32) *Transaction {
	tx.Position = pixel.Position{X: x, Y: y}
	return tx
}

// IsCoinbase reports whether this transaction mints a new pixel.
func (tx *Transaction) IsCoinbase() bool {
	return tx.Previous == crypto.ZeroHash
}

// canonicalBytes serializes the transaction in its wire layout without the
// signature. The signature is never part of the sighash pre-image.
func (tx *Transaction) canonicalBytes() []byte {
	w := wire.NewWriter()
	w.Uint8(tx.Version)
	w.Fixed32(tx.Previous)
	w.Int32(tx.Position.X)
	w.Int32(tx.Position.Y)
	w.Uint32(uint32(tx.Color))
	owner := tx.Owner.Bytes()
	w.Fixed(owner[:])
	return w.Bytes()
}

// Sighash is the 32 byte digest a signer commits to: the double-SHA-256 of
// the canonical bytes with the signature cleared, reversed to the id byte
// order.
func (tx *Transaction) Sighash() [32]byte {
	h := crypto.DoubleSHA256(tx.canonicalBytes())
	return crypto.Reverse32(h)
}

// RawID is the natural (unreversed) double-SHA-256 hash of the transaction,
// used as the Previous field value of any transaction that spends this one.
func (tx *Transaction) RawID() [32]byte {
	return crypto.DoubleSHA256(tx.canonicalBytes())
}

// ID is the reversed-byte hex rendering of the transaction's sighash.
func (tx *Transaction) ID() string {
	h := tx.Sighash()
	return hex.EncodeToString(h[:])
}

// Sign signs the transaction with priv. previous must be the transaction
// referenced by tx.Previous; sign fails with ErrNoPreviousTxInfo if the
// transaction is a coinbase or previous is nil or does not match.
func (tx *Transaction) Sign(priv *crypto.PrivateKey, previous *Transaction) error {
	if tx.IsCoinbase() {
		return ErrNoPreviousTxInfo
	}
	if previous == nil || previous.RawID() != tx.Previous {
		return ErrNoPreviousTxInfo
	}

	sig, err := crypto.Sign(tx.Sighash(), priv)
	if err != nil {
		return fmt.Errorf("tx: sign: %w", err)
	}
	tx.Signature = &sig

	return nil
}

// Verify checks tx.Signature against prevOwner, the public key of the
// account that owned the pixel being spent.
func (tx *Transaction) Verify(prevOwner *crypto.PublicKey) bool {
	if tx.Signature == nil {
		return false
	}
	return crypto.Verify(tx.Sighash(), prevOwner, *tx.Signature)
}

// Serialize renders the transaction in its fixed wire layout, appending the
// signature (if any) after the owner field.
func (tx *Transaction) Serialize() []byte {
	buf := tx.canonicalBytes()
	if tx.Signature != nil {
		sig := tx.Signature.Bytes()
		buf = append(buf, sig[:]...)
	}
	return buf
}

// Deserialize parses a transaction from its wire layout. A coinbase
// transaction carries no trailing signature bytes.
func Deserialize(buf []byte) (*Transaction, error) {
	r := wire.NewReader(buf)

	version, err := r.Uint8()
	if err != nil {
		return nil, fmt.Errorf("tx: version: %w", err)
	}

	previous, err := r.Fixed32()
	if err != nil {
		return nil, fmt.Errorf("tx: previous: %w", err)
	}

	x, err := r.Int32()
	if err != nil {
		return nil, fmt.Errorf("tx: position.x: %w", err)
	}

	y, err := r.Int32()
	if err != nil {
		return nil, fmt.Errorf("tx: position.y: %w", err)
	}

	color, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("tx: color: %w", err)
	}

	ownerBytes, err := r.Fixed(crypto.PublicKeySize)
	if err != nil {
		return nil, fmt.Errorf("tx: owner: %w", err)
	}
	pub, err := crypto.ParsePublicKey(ownerBytes)
	if err != nil {
		return nil, fmt.Errorf("tx: owner: %w", err)
	}

	out := &Transaction{
		Version:  version,
		Previous: previous,
		Position: pixel.Position{X: x, Y: y},
		Color:    pixel.Color(color),
		Owner:    pub,
	}

	if out.IsCoinbase() {
		if r.Remaining() != 0 {
			return nil, errors.New("tx: unexpected trailing bytes on coinbase")
		}
		return out, nil
	}

	if r.Remaining() != crypto.SignatureSize {
		return nil, fmt.Errorf("tx: expected %d signature bytes, have %d", crypto.SignatureSize, r.Remaining())
	}
	sigBytes, err := r.Fixed(crypto.SignatureSize)
	if err != nil {
		return nil, fmt.Errorf("tx: signature: %w", err)
	}
	sig, err := crypto.ParseSignature(sigBytes)
	if err != nil {
		return nil, fmt.Errorf("tx: signature: %w", err)
	}
	out.Signature = &sig

	return out, nil
}
