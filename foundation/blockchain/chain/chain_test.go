package chain_test

import (
	"errors"
	"testing"

	"github.com/decentraland/stoneage-node/foundation/blockchain/block"
	"github.com/decentraland/stoneage-node/foundation/blockchain/chain"
	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
	"github.com/decentraland/stoneage-node/foundation/blockchain/pixel"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
)

func newChain(t *testing.T) (*chain.Chain, *crypto.PrivateKey) {
	t.Helper()

	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %s", err)
	}

	genesisCoinbase := tx.New().At(0, 0).Colored(1).To(priv.Public())
	genesis, err := block.FromCoinbase(genesisCoinbase, block.Header{Version: block.Version, Bits: 0x207fffff})
	if err != nil {
		t.Fatalf("FromCoinbase: %s", err)
	}

	c, err := chain.New(chain.Config{Genesis: genesis})
	if err != nil {
		t.Fatalf("New: %s", err)
	}

	return c, priv
}

func coinbaseBlock(t *testing.T, priv *crypto.PrivateKey, prevHash [32]byte, height uint32, x, y int32, color uint32) *block.Block {
	t.Helper()

	coinbase := tx.New().At(x, y).Colored(pixel.Color(color)).To(priv.Public())
	b, err := block.FromCoinbase(coinbase, block.Header{
		Version:  block.Version,
		Height:   height,
		PrevHash: prevHash,
		Bits:     0x207fffff,
		Time:     1432594281,
	})
	if err != nil {
		t.Fatalf("FromCoinbase: %s", err)
	}
	return b
}

// TestAppendToTip mirrors scenario S1.
func TestAppendToTip(t *testing.T) {
	c, priv := newChain(t)

	genesisTip, ok := c.GetTipBlock()
	if !ok {
		t.Fatal("expected a tip after genesis")
	}

	a := coinbaseBlock(t, priv, genesisTip.RawID(), 1, 0, 1, 0xff0000ff)

	unconfirmed, confirmed, err := c.ProposeNewBlock(a)
	if err != nil {
		t.Fatalf("ProposeNewBlock: %s", err)
	}
	if len(unconfirmed) != 0 || len(confirmed) != 1 {
		t.Fatalf("expected 0 unconfirmed and 1 confirmed, got %d/%d", len(unconfirmed), len(confirmed))
	}

	if c.GetTip() != a.RawID() {
		t.Fatal("expected tip to be block A")
	}

	owner, ok := c.GetPixel(pixel.Position{X: 0, Y: 1})
	if !ok || owner.ID() != a.Coinbase().ID() {
		t.Fatal("expected pixel (0,1) to be owned by A's coinbase")
	}
}

// TestSpendCoinbase mirrors scenario S2.
func TestSpendCoinbase(t *testing.T) {
	c, priv := newChain(t)

	genesisTip, _ := c.GetTipBlock()
	a := coinbaseBlock(t, priv, genesisTip.RawID(), 1, 0, 1, 0xff0000ff)
	if _, _, err := c.ProposeNewBlock(a); err != nil {
		t.Fatalf("ProposeNewBlock(A): %s", err)
	}

	transfer := tx.New().From(a.Coinbase().RawID()).At(0, 1).Colored(0x00fff0ff).To(priv.Public())
	if err := transfer.Sign(priv, a.Coinbase()); err != nil {
		t.Fatalf("Sign: %s", err)
	}

	b := coinbaseBlock(t, priv, a.RawID(), 2, 0, 2, 0xff0000ff)
	b.AddTransaction(transfer)

	if _, _, err := c.ProposeNewBlock(b); err != nil {
		t.Fatalf("ProposeNewBlock(B): %s", err)
	}

	if c.GetTip() != b.RawID() {
		t.Fatal("expected tip to be block B")
	}

	p1, ok := c.GetPixel(pixel.Position{X: 0, Y: 1})
	if !ok || p1.ID() != transfer.ID() {
		t.Fatal("expected pixel (0,1) to now be owned by the transfer")
	}
	p2, ok := c.GetPixel(pixel.Position{X: 0, Y: 2})
	if !ok || p2.ID() != b.Coinbase().ID() {
		t.Fatal("expected pixel (0,2) to be owned by B's coinbase")
	}
}

// TestInvalidSignatureRejected mirrors scenario S3.
func TestInvalidSignatureRejected(t *testing.T) {
	c, priv := newChain(t)

	genesisTip, _ := c.GetTipBlock()
	a := coinbaseBlock(t, priv, genesisTip.RawID(), 1, 0, 1, 0xff0000ff)
	if _, _, err := c.ProposeNewBlock(a); err != nil {
		t.Fatalf("ProposeNewBlock(A): %s", err)
	}

	transfer := tx.New().From(a.Coinbase().RawID()).At(0, 1).Colored(0x00fff0ff).To(priv.Public())
	if err := transfer.Sign(priv, a.Coinbase()); err != nil {
		t.Fatalf("Sign: %s", err)
	}
	transfer.Signature.R.Add(transfer.Signature.R, transfer.Signature.R)

	b := coinbaseBlock(t, priv, a.RawID(), 2, 0, 2, 0xff0000ff)
	b.AddTransaction(transfer)

	if _, _, err := c.ProposeNewBlock(b); !errors.Is(err, chain.ErrSignatureMismatch) {
		t.Fatalf("expected ErrSignatureMismatch, got %v", err)
	}

	if c.GetTip() != a.RawID() {
		t.Fatal("expected tip to remain at A after rejection")
	}
	p1, ok := c.GetPixel(pixel.Position{X: 0, Y: 1})
	if !ok || p1.ID() != a.Coinbase().ID() {
		t.Fatal("expected pixel (0,1) to be unchanged from A's coinbase")
	}
	if _, ok := c.GetPixel(pixel.Position{X: 0, Y: 2}); ok {
		t.Fatal("expected pixel (0,2) to remain unmined")
	}
}

// TestReorgMoveToNiece mirrors scenario S4.
func TestReorgMoveToNiece(t *testing.T) {
	c, priv := newChain(t)
	genesisTip, _ := c.GetTipBlock()

	a := coinbaseBlock(t, priv, genesisTip.RawID(), 1, 0, 1, 0xff0000ff)
	if _, _, err := c.ProposeNewBlock(a); err != nil {
		t.Fatalf("ProposeNewBlock(A): %s", err)
	}

	bBlock := coinbaseBlock(t, priv, genesisTip.RawID(), 1, 0, 1, 0x00ff00ff)
	unconfirmed, confirmed, err := c.ProposeNewBlock(bBlock)
	if err != nil {
		t.Fatalf("ProposeNewBlock(B): %s", err)
	}
	if len(unconfirmed) != 0 || len(confirmed) != 0 {
		t.Fatal("expected B to be accepted only as a side branch")
	}
	if c.GetTip() != a.RawID() {
		t.Fatal("expected tip to remain at A while work is tied")
	}

	cBlock := coinbaseBlock(t, priv, bBlock.RawID(), 2, 0, 2, 0xff0000ff)
	unconfirmed, confirmed, err = c.ProposeNewBlock(cBlock)
	if err != nil {
		t.Fatalf("ProposeNewBlock(C): %s", err)
	}

	if c.GetTip() != cBlock.RawID() {
		t.Fatal("expected tip to move to C")
	}
	if len(unconfirmed) != 1 || unconfirmed[0] != a.RawID() {
		t.Fatal("expected A to be unconfirmed")
	}
	if len(confirmed) != 2 {
		t.Fatalf("expected B and C to be confirmed, got %d", len(confirmed))
	}

	p1, ok := c.GetPixel(pixel.Position{X: 0, Y: 1})
	if !ok || p1.ID() != bBlock.Coinbase().ID() {
		t.Fatal("expected pixel (0,1) to be owned by B's coinbase after the reorg")
	}
	p2, ok := c.GetPixel(pixel.Position{X: 0, Y: 2})
	if !ok || p2.ID() != cBlock.Coinbase().ID() {
		t.Fatal("expected pixel (0,2) to be owned by C's coinbase after the reorg")
	}
}

// TestCoinbaseAdjacency mirrors scenario S6.
func TestCoinbaseAdjacency(t *testing.T) {
	c, priv := newChain(t)
	genesisTip, _ := c.GetTipBlock()

	a := coinbaseBlock(t, priv, genesisTip.RawID(), 1, 0, 1, 0xff0000ff)
	if _, _, err := c.ProposeNewBlock(a); err != nil {
		t.Fatalf("ProposeNewBlock(A): %s", err)
	}

	farAway := coinbaseBlock(t, priv, a.RawID(), 2, 50, 50, 0xff0000ff)
	if _, _, err := c.ProposeNewBlock(farAway); !errors.Is(err, chain.ErrNotAdjacent) {
		t.Fatalf("expected ErrNotAdjacent, got %v", err)
	}

	if c.GetTip() != a.RawID() {
		t.Fatal("expected tip to remain at A after rejection")
	}
}

func TestMissingParentRejected(t *testing.T) {
	c, priv := newChain(t)

	orphan := coinbaseBlock(t, priv, crypto.DoubleSHA256([]byte("not a real parent")), 1, 5, 5, 1)
	if _, _, err := c.ProposeNewBlock(orphan); !errors.Is(err, chain.ErrMissingParent) {
		t.Fatalf("expected ErrMissingParent, got %v", err)
	}
}

func TestPixelAlreadyMinedRejected(t *testing.T) {
	c, priv := newChain(t)
	genesisTip, _ := c.GetTipBlock()

	a := coinbaseBlock(t, priv, genesisTip.RawID(), 1, 0, 1, 0xff0000ff)
	if _, _, err := c.ProposeNewBlock(a); err != nil {
		t.Fatalf("ProposeNewBlock(A): %s", err)
	}

	again := coinbaseBlock(t, priv, a.RawID(), 2, 0, 1, 0x00ff00ff)
	if _, _, err := c.ProposeNewBlock(again); !errors.Is(err, chain.ErrPixelMined) {
		t.Fatalf("expected ErrPixelMined, got %v", err)
	}
}

// TestReorgRollbackUndoesPartiallyConfirmedSuffix reproduces a reorg where
// the heavier branch is more than one block deep and a later block (here
// the last, not the first) fails validation: active chain G->A1->A2, heavier side
// branch G->B->C->D with B and C valid and D reusing C's pixel. By the
// time D is rejected, B and C have already been confirmed onto the active
// chain within the same call; the rollback must undo them, not just
// restore A1 and A2.
func TestReorgRollbackUndoesPartiallyConfirmedSuffix(t *testing.T) {
	c, priv := newChain(t)
	genesisTip, _ := c.GetTipBlock()

	a1 := coinbaseBlock(t, priv, genesisTip.RawID(), 1, 0, 1, 0xff0000ff)
	if _, _, err := c.ProposeNewBlock(a1); err != nil {
		t.Fatalf("ProposeNewBlock(A1): %s", err)
	}
	a2 := coinbaseBlock(t, priv, a1.RawID(), 2, 0, -1, 0xff0000ff)
	if _, _, err := c.ProposeNewBlock(a2); err != nil {
		t.Fatalf("ProposeNewBlock(A2): %s", err)
	}

	b := coinbaseBlock(t, priv, genesisTip.RawID(), 1, 1, 0, 0x00ff00ff)
	if _, _, err := c.ProposeNewBlock(b); err != nil {
		t.Fatalf("ProposeNewBlock(B): %s", err)
	}
	if c.GetTip() != a2.RawID() {
		t.Fatal("expected B to be accepted only as a side branch")
	}

	cBlock := coinbaseBlock(t, priv, b.RawID(), 2, 2, 0, 0x00ff00ff)
	if _, _, err := c.ProposeNewBlock(cBlock); err != nil {
		t.Fatalf("ProposeNewBlock(C): %s", err)
	}
	if c.GetTip() != a2.RawID() {
		t.Fatal("expected C to still be tied with the active chain, not yet reorged")
	}

	// D reuses C's pixel, so it fails ErrPixelMined only after B and C have
	// already been confirmed within this same appendNewBlock call.
	d := coinbaseBlock(t, priv, cBlock.RawID(), 3, 2, 0, 0xff00ffff)
	if _, _, err := c.ProposeNewBlock(d); !errors.Is(err, chain.ErrPixelMined) {
		t.Fatalf("expected ErrPixelMined, got %v", err)
	}

	if c.GetTip() != a2.RawID() {
		t.Fatal("expected tip to be restored to A2 after the failed reorg")
	}

	if _, ok := c.GetPixel(pixel.Position{X: 1, Y: 0}); ok {
		t.Fatal("expected B's pixel to be rolled back")
	}
	if _, ok := c.GetPixel(pixel.Position{X: 2, Y: 0}); ok {
		t.Fatal("expected C's pixel to be rolled back")
	}

	p1, ok := c.GetPixel(pixel.Position{X: 0, Y: 1})
	if !ok || p1.ID() != a1.Coinbase().ID() {
		t.Fatal("expected pixel (0,1) to still be owned by A1's coinbase")
	}
	p2, ok := c.GetPixel(pixel.Position{X: 0, Y: -1})
	if !ok || p2.ID() != a2.Coinbase().ID() {
		t.Fatal("expected pixel (0,-1) to still be owned by A2's coinbase")
	}
}

func TestBlockLocatorWalksToGenesis(t *testing.T) {
	c, priv := newChain(t)
	genesisTip, _ := c.GetTipBlock()

	prevHash := genesisTip.RawID()
	for i := int32(1); i <= 25; i++ {
		b := coinbaseBlock(t, priv, prevHash, uint32(i), 0, i, 1)
		if _, _, err := c.ProposeNewBlock(b); err != nil {
			t.Fatalf("ProposeNewBlock(%d): %s", i, err)
		}
		prevHash = b.RawID()
	}

	locator := c.GetBlockLocator()
	if len(locator) == 0 {
		t.Fatal("expected a non-empty locator")
	}
	if locator[0] != c.GetTip() {
		t.Fatal("expected the locator to start at the tip")
	}
}
