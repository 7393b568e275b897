package chain

import (
	"errors"
	"fmt"

	"github.com/decentraland/stoneage-node/foundation/blockchain/pixel"
)

// Sentinel errors checked with errors.Is. Each is wrapped with the
// offending detail via fmt.Errorf("%w: ...", sentinel, ...) so callers can
// both test the kind and log the specifics.
var (
	// ErrMissingParent is returned when a proposed block's parent hash is
	// not known to the chain.
	ErrMissingParent = errors.New("chain: missing parent")

	// ErrPixelMined is returned when a coinbase targets a pixel that is
	// already owned on the active chain.
	ErrPixelMined = errors.New("chain: pixel already mined")

	// ErrNotAdjacent is returned when a non-genesis coinbase's position has
	// no 4-neighbor pixel on the active chain.
	ErrNotAdjacent = errors.New("chain: coinbase position not adjacent to an existing pixel")

	// ErrSignatureMismatch is returned when a non-coinbase transaction's
	// signature does not verify against the current owner of its position.
	ErrSignatureMismatch = errors.New("chain: signature mismatch")
)

func missingParentError(hash, prev [32]byte) error {
	return fmt.Errorf("%w: block %x references parent %x", ErrMissingParent, hash, prev)
}

func pixelMinedError(p pixel.Position) error {
	return fmt.Errorf("%w: %s", ErrPixelMined, p)
}

func signatureMismatchError(blockHash [32]byte, index int) error {
	return fmt.Errorf("%w: block %x tx[%d]", ErrSignatureMismatch, blockHash, index)
}
