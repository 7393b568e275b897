// Package crypto provides the secp256k1 key, signature and hashing
// primitives the blockchain needs. It is the one place allowed to import
// a curve implementation; everything above this package works with the
// PublicKey, PrivateKey and Signature types defined here.
package crypto

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ripemd160"
)

// ZeroHash represents the 32 zero byte sentinel used for the genesis
// previous-block hash and for a coinbase transaction's previous-tx id.
var ZeroHash [32]byte

// PublicKeySize is the length in bytes of a compressed secp256k1 public key.
const PublicKeySize = 33

// SignatureSize is the length in bytes of a raw (r, s) signature.
const SignatureSize = 64

// =============================================================================

// PrivateKey wraps a secp256k1 private key.
type PrivateKey struct {
	key *ecdsa.PrivateKey
}

// GenerateKey creates a new random private key.
func GenerateKey() (*PrivateKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromECDSA wraps an existing stdlib key, for loading keys saved
// to disk by the wallet tooling.
func PrivateKeyFromECDSA(key *ecdsa.PrivateKey) *PrivateKey {
	return &PrivateKey{key: key}
}

// ECDSA returns the underlying stdlib key, for use with key import/export
// helpers that live outside this package.
func (priv *PrivateKey) ECDSA() *ecdsa.PrivateKey {
	return priv.key
}

// Public returns the public key that corresponds to this private key.
func (priv *PrivateKey) Public() *PublicKey {
	return &PublicKey{key: &priv.key.PublicKey}
}

// Sign produces an ECDSA (r, s) signature over the provided 32 byte digest.
// The underlying implementation derives the signing nonce deterministically
// from the digest and the key (RFC 6979 via the secp256k1 signer), so the
// same digest signed twice by the same key yields the same signature.
func Sign(digest [32]byte, priv *PrivateKey) (Signature, error) {
	sig, err := crypto.Sign(digest[:], priv.key)
	if err != nil {
		return Signature{}, err
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])

	return Signature{R: r, S: s}, nil
}

// =============================================================================

// PublicKey wraps a secp256k1 public key and serializes in compressed form only.
type PublicKey struct {
	key *ecdsa.PublicKey
}

// ParsePublicKey parses a 33 byte compressed public key.
func ParsePublicKey(b []byte) (*PublicKey, error) {
	if len(b) != PublicKeySize {
		return nil, errors.New("public key must be 33 bytes compressed")
	}

	key, err := crypto.DecompressPubkey(b)
	if err != nil {
		return nil, err
	}

	return &PublicKey{key: key}, nil
}

// Bytes returns the 33 byte compressed serialization of the key.
func (pub *PublicKey) Bytes() [PublicKeySize]byte {
	var out [PublicKeySize]byte
	copy(out[:], crypto.CompressPubkey(pub.key))
	return out
}

// Equal reports whether two public keys serialize to the same bytes.
func (pub *PublicKey) Equal(other *PublicKey) bool {
	if pub == nil || other == nil {
		return pub == other
	}
	a, b := pub.Bytes(), other.Bytes()
	return a == b
}

// Hash160 returns ripemd160(sha256(pubkey)), a short fingerprint of the
// account analogous to a Bitcoin-style address. Not used for pixel
// ownership (which keys directly off the compressed public key) but handy
// for the wallet CLI to print a recognizable account identifier.
func (pub *PublicKey) Hash160() [20]byte {
	compressed := pub.Bytes()
	sha := sha256.Sum256(compressed[:])

	r := ripemd160.New()
	r.Write(sha[:])

	var out [20]byte
	copy(out[:], r.Sum(nil))
	return out
}

// =============================================================================

// Signature is an ECDSA (r, s) pair.
type Signature struct {
	R *big.Int
	S *big.Int
}

// ParseSignature parses a 64 byte little-endian (r, s) signature.
func ParseSignature(b []byte) (Signature, error) {
	if len(b) != SignatureSize {
		return Signature{}, errors.New("signature must be 64 bytes")
	}

	rBytes := reversed(b[:32])
	sBytes := reversed(b[32:64])

	return Signature{
		R: new(big.Int).SetBytes(rBytes),
		S: new(big.Int).SetBytes(sBytes),
	}, nil
}

// Bytes serializes the signature as 64 little-endian bytes: r followed by s.
func (sig Signature) Bytes() [SignatureSize]byte {
	var out [SignatureSize]byte

	var rBE, sBE [32]byte
	sig.R.FillBytes(rBE[:])
	sig.S.FillBytes(sBE[:])

	copy(out[:32], reversed(rBE[:]))
	copy(out[32:64], reversed(sBE[:]))

	return out
}

// IsZero reports whether the signature carries no value, used to represent
// an absent signature on a coinbase transaction.
func (sig Signature) IsZero() bool {
	return sig.R == nil || sig.S == nil
}

// Verify checks that sig is a valid ECDSA signature over digest produced by
// the private key matching pub.
func Verify(digest [32]byte, pub *PublicKey, sig Signature) bool {
	if sig.IsZero() {
		return false
	}
	if sig.R.BitLen() > 256 || sig.S.BitLen() > 256 {
		return false
	}

	rawSig := make([]byte, 64)
	sig.R.FillBytes(rawSig[:32])
	sig.S.FillBytes(rawSig[32:64])

	compressed := pub.Bytes()
	return crypto.VerifySignature(compressed[:], digest[:], rawSig)
}

// =============================================================================

// DoubleSHA256 returns sha256(sha256(data)).
func DoubleSHA256(data []byte) [32]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// reversed returns a copy of b with the byte order reversed.
func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// Reverse32 reverses the byte order of a 32 byte hash, converting between
// the chain's internal (natural double-SHA-256 output) byte order and the
// reversed, display/id byte order used for transaction and block ids.
func Reverse32(h [32]byte) [32]byte {
	var out [32]byte
	for i := range h {
		out[31-i] = h[i]
	}
	return out
}
