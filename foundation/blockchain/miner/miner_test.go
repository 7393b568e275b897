package miner_test

import (
	"context"
	"testing"
	"time"

	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
	"github.com/decentraland/stoneage-node/foundation/blockchain/miner"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
)

func newCoinbase(t *testing.T, x, y int32) *tx.Transaction {
	t.Helper()

	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %s", err)
	}
	return tx.New().At(x, y).Colored(1).To(priv.Public())
}

func TestWorkRequiresTemplate(t *testing.T) {
	m := miner.New(nil)

	if _, err := m.Work(); err != miner.ErrNoTemplate {
		t.Fatalf("expected ErrNoTemplate, got %v", err)
	}
}

func TestRunFindsEasyTarget(t *testing.T) {
	m := miner.New(nil)

	if err := m.NewTip(crypto.ZeroHash, 0, newCoinbase(t, 0, 0), 0x207fffff, time.Unix(1432594281, 0)); err != nil {
		t.Fatalf("NewTip: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	found, err := m.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %s", err)
	}
	if !found.Header.ValidProofOfWork() {
		t.Fatal("expected the returned block to satisfy proof of work")
	}
	if m.Running() {
		t.Fatal("expected the miner to stop after finding a block")
	}
}

func TestWorkStopsEmittingAfterSolved(t *testing.T) {
	m := miner.New(nil)

	if err := m.NewTip(crypto.ZeroHash, 0, newCoinbase(t, 0, 0), 0x207fffff, time.Unix(1432594281, 0)); err != nil {
		t.Fatalf("NewTip: %s", err)
	}

	var found bool
	for i := 0; i < 5_000_000 && !found; i++ {
		result, err := m.Work()
		if err != nil {
			t.Fatalf("Work: %s", err)
		}
		if result.Found != nil {
			found = true
		}
	}
	if !found {
		t.Fatal("expected to find a solution within the attempt budget")
	}

	result, err := m.Work()
	if err != nil {
		t.Fatalf("Work: %s", err)
	}
	if result.Found != nil || result.Pending {
		t.Fatal("expected a zero WorkResult once the miner has stopped")
	}
}

func TestNewTipRearmsMiner(t *testing.T) {
	m := miner.New(nil)

	if err := m.NewTip(crypto.ZeroHash, 0, newCoinbase(t, 0, 0), 0x207fffff, time.Unix(1432594281, 0)); err != nil {
		t.Fatalf("NewTip: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	first, err := m.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %s", err)
	}

	if err := m.NewTip(first.RawID(), 1, newCoinbase(t, 0, 1), 0x207fffff, time.Unix(1432594282, 0)); err != nil {
		t.Fatalf("NewTip: %s", err)
	}
	if !m.Running() {
		t.Fatal("expected NewTip to re-arm the miner")
	}

	second, err := m.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %s", err)
	}
	if second.Header.PrevHash != first.RawID() {
		t.Fatal("expected the second block to chain off the first")
	}
}

func TestAddTransactionRequiresTemplate(t *testing.T) {
	m := miner.New(nil)

	if err := m.AddTransaction(newCoinbase(t, 1, 1)); err != miner.ErrNoTemplate {
		t.Fatalf("expected ErrNoTemplate, got %v", err)
	}
}
