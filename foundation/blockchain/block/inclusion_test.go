package block_test

import (
	"testing"

	"github.com/decentraland/stoneage-node/foundation/blockchain/block"
	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
)

func newTransfer(t *testing.T, previous *tx.Transaction, x, y int32) *tx.Transaction {
	t.Helper()

	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %s", err)
	}
	transfer := tx.New().From(previous.RawID()).At(x, y).Colored(1).To(priv.Public())
	if err := transfer.Sign(priv, previous); err != nil {
		t.Fatalf("Sign: %s", err)
	}
	return transfer
}

func TestProveInclusionSingleTransactionBlock(t *testing.T) {
	coinbase := newCoinbase(t)
	b, err := block.FromCoinbase(coinbase, block.Header{Version: block.Version})
	if err != nil {
		t.Fatalf("FromCoinbase: %s", err)
	}

	proof, order, err := b.ProveInclusion(coinbase)
	if err != nil {
		t.Fatalf("ProveInclusion: %s", err)
	}
	if proof != nil || order != nil {
		t.Fatal("expected a nil proof for a single-transaction block")
	}

	if !block.VerifyInclusion(b.Header.MerkleRoot, coinbase.RawID(), proof, order) {
		t.Fatal("expected the coinbase to verify against the block's merkle root")
	}
}

func TestProveInclusionMultiTransactionBlock(t *testing.T) {
	coinbase := newCoinbase(t)
	b, err := block.FromCoinbase(coinbase, block.Header{Version: block.Version})
	if err != nil {
		t.Fatalf("FromCoinbase: %s", err)
	}

	a := newTransfer(t, coinbase, 1, 1)
	b.AddTransaction(a)
	c := newTransfer(t, a, 2, 2)
	b.AddTransaction(c)

	for _, target := range []*tx.Transaction{coinbase, a, c} {
		proof, order, err := b.ProveInclusion(target)
		if err != nil {
			t.Fatalf("ProveInclusion(%s): %s", target.ID(), err)
		}
		if !block.VerifyInclusion(b.Header.MerkleRoot, target.RawID(), proof, order) {
			t.Fatalf("expected %s to verify against the block's merkle root", target.ID())
		}
	}
}

func TestProveInclusionRejectsForeignTransaction(t *testing.T) {
	coinbase := newCoinbase(t)
	b, err := block.FromCoinbase(coinbase, block.Header{Version: block.Version})
	if err != nil {
		t.Fatalf("FromCoinbase: %s", err)
	}
	a := newTransfer(t, coinbase, 1, 1)
	b.AddTransaction(a)

	foreign := newCoinbase(t)
	if _, _, err := b.ProveInclusion(foreign); err != block.ErrNotInBlock {
		t.Fatalf("expected ErrNotInBlock, got %v", err)
	}
}

func TestVerifyInclusionRejectsWrongRoot(t *testing.T) {
	coinbase := newCoinbase(t)
	b, err := block.FromCoinbase(coinbase, block.Header{Version: block.Version})
	if err != nil {
		t.Fatalf("FromCoinbase: %s", err)
	}
	a := newTransfer(t, coinbase, 1, 1)
	b.AddTransaction(a)

	proof, order, err := b.ProveInclusion(a)
	if err != nil {
		t.Fatalf("ProveInclusion: %s", err)
	}

	if block.VerifyInclusion(crypto.ZeroHash, a.RawID(), proof, order) {
		t.Fatal("expected verification against an unrelated root to fail")
	}
}
