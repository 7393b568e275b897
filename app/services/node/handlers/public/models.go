package public

import (
	"encoding/hex"

	"github.com/decentraland/stoneage-node/foundation/blockchain/block"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
)

// txView is the wire rendering of a transaction for read endpoints.
type txView struct {
	ID        string `json:"id"`
	Previous  string `json:"previous"`
	X         int32  `json:"x"`
	Y         int32  `json:"y"`
	Color     uint32 `json:"color"`
	Owner     string `json:"owner"`
	Coinbase  bool   `json:"coinbase"`
	Signature string `json:"signature,omitempty"`
}

func newTxView(t *tx.Transaction) txView {
	owner := t.Owner.Bytes()

	v := txView{
		ID:       t.ID(),
		Previous: hex.EncodeToString(t.Previous[:]),
		X:        t.Position.X,
		Y:        t.Position.Y,
		Color:    uint32(t.Color),
		Owner:    hex.EncodeToString(owner[:]),
		Coinbase: t.IsCoinbase(),
	}

	if t.Signature != nil {
		sig := t.Signature.Bytes()
		v.Signature = hex.EncodeToString(sig[:])
	}

	return v
}

// blockView is the wire rendering of a block for read endpoints.
type blockView struct {
	Hash         string   `json:"hash"`
	Version      uint32   `json:"version"`
	Height       uint32   `json:"height"`
	PrevHash     string   `json:"prev_hash"`
	MerkleRoot   string   `json:"merkle_root"`
	Time         uint32   `json:"time"`
	Bits         uint32   `json:"bits"`
	Nonce        uint32   `json:"nonce"`
	Transactions []txView `json:"transactions"`
}

func newBlockView(b *block.Block) blockView {
	trans := make([]txView, len(b.Transactions))
	for i, t := range b.Transactions {
		trans[i] = newTxView(t)
	}

	return blockView{
		Hash:         b.ID(),
		Version:      b.Header.Version,
		Height:       b.Header.Height,
		PrevHash:     hex.EncodeToString(b.Header.PrevHash[:]),
		MerkleRoot:   hex.EncodeToString(b.Header.MerkleRoot[:]),
		Time:         b.Header.Time,
		Bits:         b.Header.Bits,
		Nonce:        b.Header.Nonce,
		Transactions: trans,
	}
}

// pixelView is the wire rendering of a single owned pixel.
type pixelView struct {
	X     int32  `json:"x"`
	Y     int32  `json:"y"`
	Color uint32 `json:"color"`
	Owner string `json:"owner"`
	TxID  string `json:"tx_id"`
}

func newPixelView(t *tx.Transaction) pixelView {
	owner := t.Owner.Bytes()
	return pixelView{
		X:     t.Position.X,
		Y:     t.Position.Y,
		Color: uint32(t.Color),
		Owner: hex.EncodeToString(owner[:]),
		TxID:  t.ID(),
	}
}

// submitTxRequest carries a raw hex-serialized transaction, in the
// layout tx.Serialize produces and tx.Deserialize parses.
type submitTxRequest struct {
	Raw string `json:"raw" validate:"required,hexadecimal"`
}
