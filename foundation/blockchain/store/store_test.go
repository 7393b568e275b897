package store_test

import (
	"testing"

	"github.com/decentraland/stoneage-node/foundation/blockchain/block"
	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
	"github.com/decentraland/stoneage-node/foundation/blockchain/store"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
)

func TestBlockStoreSetGet(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %s", err)
	}
	coinbase := tx.New().At(0, 1).Colored(1).To(priv.Public())
	b, err := block.FromCoinbase(coinbase, block.Header{Version: block.Version})
	if err != nil {
		t.Fatalf("FromCoinbase: %s", err)
	}

	s := store.NewBlockStore()
	s.Set(b)

	got, ok := s.Get(b.RawID())
	if !ok {
		t.Fatal("expected block to be found")
	}
	if got.ID() != b.ID() {
		t.Fatal("expected stored block to have the same id")
	}

	if _, ok := s.Get(crypto.ZeroHash); ok {
		t.Fatal("expected unknown hash to be absent")
	}
}

func TestTxStoreSetGet(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %s", err)
	}
	coinbase := tx.New().At(0, 1).Colored(1).To(priv.Public())

	s := store.NewTxStore()
	s.Set(coinbase)

	got, ok := s.Get(coinbase.RawID())
	if !ok {
		t.Fatal("expected transaction to be found")
	}
	if got.ID() != coinbase.ID() {
		t.Fatal("expected stored transaction to have the same id")
	}
}
