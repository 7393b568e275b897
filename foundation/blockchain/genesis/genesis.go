// Package genesis maintains access to the genesis configuration file that
// seeds a chain: its id, starting difficulty, and the coinbase that mines
// the very first pixel.
package genesis

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/decentraland/stoneage-node/foundation/blockchain/block"
	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
	"github.com/decentraland/stoneage-node/foundation/blockchain/pixel"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
)

// Coinbase describes the genesis pixel mint.
type Coinbase struct {
	X     int32  `json:"x"`
	Y     int32  `json:"y"`
	Color uint32 `json:"color"`
	Owner string `json:"owner"` // hex-encoded 33 byte compressed public key
}

// Genesis represents the genesis configuration file.
type Genesis struct {
	ChainID  uint32   `json:"chain_id"`
	Bits     uint32   `json:"bits"`
	Time     uint32   `json:"time"`
	Coinbase Coinbase `json:"coinbase"`
}

// Load opens and parses the genesis file at path.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("genesis: read: %w", err)
	}

	var g Genesis
	if err := json.Unmarshal(content, &g); err != nil {
		return Genesis{}, fmt.Errorf("genesis: parse: %w", err)
	}

	return g, nil
}

// Block constructs the height-0 block described by the genesis file.
func (g Genesis) Block() (*block.Block, error) {
	ownerBytes, err := hex.DecodeString(g.Coinbase.Owner)
	if err != nil {
		return nil, fmt.Errorf("genesis: owner: %w", err)
	}
	owner, err := crypto.ParsePublicKey(ownerBytes)
	if err != nil {
		return nil, fmt.Errorf("genesis: owner: %w", err)
	}

	coinbase := tx.New().
		At(g.Coinbase.X, g.Coinbase.Y).
		Colored(pixel.Color(g.Coinbase.Color)).
		To(owner)

	header := block.Header{
		Version:  block.Version,
		Height:   0,
		PrevHash: crypto.ZeroHash,
		Time:     g.Time,
		Bits:     g.Bits,
	}

	return block.FromCoinbase(coinbase, header)
}
