package block_test

import (
	"testing"
	"time"

	"github.com/decentraland/stoneage-node/foundation/blockchain/block"
	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
)

func newCoinbase(t *testing.T) *tx.Transaction {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %s", err)
	}
	return tx.New().At(0, 1).Colored(0xff0000ff).To(priv.Public())
}

func TestHeaderSerializeRoundTrip(t *testing.T) {
	h := block.Header{
		Version:    block.Version,
		Height:     7,
		PrevHash:   crypto.ZeroHash,
		MerkleRoot: crypto.ZeroHash,
		Time:       1432594281,
		Bits:       0x207fffff,
		Nonce:      42,
	}

	buf := h.Serialize()
	got, err := block.DeserializeHeader(buf)
	if err != nil {
		t.Fatalf("DeserializeHeader: %s", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestIncreaseNonceWraps(t *testing.T) {
	h := block.Header{Nonce: 0xffffffff, Time: 100}
	h.IncreaseNonce()
	if h.Nonce != 0 {
		t.Fatalf("expected nonce to wrap to 0, got %d", h.Nonce)
	}
	if h.Time != 101 {
		t.Fatalf("expected time to bump on wraparound, got %d", h.Time)
	}
}

func TestValidTimestamp(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	h := block.Header{Time: uint32(now.Unix())}
	if !h.ValidTimestamp(now) {
		t.Fatal("expected a timestamp equal to now to be valid")
	}

	h.Time = uint32(now.Add(-3 * time.Hour).Unix())
	if h.ValidTimestamp(now) {
		t.Fatal("expected a timestamp 3 hours in the past to be invalid")
	}
}

func TestMineToEasyTarget(t *testing.T) {
	coinbase := newCoinbase(t)
	b, err := block.FromCoinbase(coinbase, block.Header{
		Version: block.Version,
		Height:  0,
		Bits:    0x207fffff,
	})
	if err != nil {
		t.Fatalf("FromCoinbase: %s", err)
	}

	const maxAttempts = 1000
	for i := 0; i < maxAttempts && !b.Header.ValidProofOfWork(); i++ {
		b.Header.IncreaseNonce()
	}

	if !b.Header.ValidProofOfWork() {
		t.Fatal("failed to find a header satisfying the minimum-difficulty target")
	}
}

func TestMineToStricterTarget(t *testing.T) {
	coinbase := newCoinbase(t)
	b, err := block.FromCoinbase(coinbase, block.Header{
		Version: block.Version,
		Height:  0,
		Bits:    0x1f7fffff,
	})
	if err != nil {
		t.Fatalf("FromCoinbase: %s", err)
	}

	const maxAttempts = 50_000_000
	for i := 0; i < maxAttempts && !b.Header.ValidProofOfWork(); i++ {
		b.Header.IncreaseNonce()
	}

	if !b.Header.ValidProofOfWork() {
		t.Fatal("failed to find a header satisfying the target within the attempt budget")
	}

	easier := block.Target(0x207fffff).ToBig()
	stricter := block.Target(0x1f7fffff).ToBig()
	if stricter.Cmp(easier) >= 0 {
		t.Fatal("expected 0x1f7fffff to decode to a stricter (smaller) target than 0x207fffff")
	}
}

func TestMerkleRootSingleTransaction(t *testing.T) {
	coinbase := newCoinbase(t)
	b, err := block.FromCoinbase(coinbase, block.Header{Version: block.Version})
	if err != nil {
		t.Fatalf("FromCoinbase: %s", err)
	}

	if b.Header.MerkleRoot != coinbase.RawID() {
		t.Fatal("expected a one-transaction merkle root to equal the coinbase id")
	}
	if !b.ValidMerkleRoot() {
		t.Fatal("expected merkle root to validate")
	}
}

func TestMerkleRootEmptyIsZeroHash(t *testing.T) {
	if block.MerkleRoot(nil) != crypto.ZeroHash {
		t.Fatal("expected an empty transaction list to yield the zero hash")
	}
}

func TestAddTransactionRecomputesRoot(t *testing.T) {
	coinbase := newCoinbase(t)
	b, err := block.FromCoinbase(coinbase, block.Header{Version: block.Version})
	if err != nil {
		t.Fatalf("FromCoinbase: %s", err)
	}
	before := b.Header.MerkleRoot

	owner, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %s", err)
	}
	transfer := tx.New().From(coinbase.RawID()).At(0, 1).Colored(1).To(owner.Public())
	if err := transfer.Sign(owner, coinbase); err != nil {
		t.Fatalf("Sign: %s", err)
	}

	b.AddTransaction(transfer)
	if b.Header.MerkleRoot == before {
		t.Fatal("expected merkle root to change after adding a transaction")
	}
	if !b.ValidMerkleRoot() {
		t.Fatal("expected merkle root to validate after append")
	}
}
