package crypto_test

import (
	"testing"

	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
)

func TestSignVerify(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %s", err)
	}

	digest := crypto.DoubleSHA256([]byte("pixel at (0,1)"))

	sig, err := crypto.Sign(digest, priv)
	if err != nil {
		t.Fatalf("Sign: %s", err)
	}

	pub := priv.Public()
	if !crypto.Verify(digest, pub, sig) {
		t.Fatal("expected signature to verify")
	}
}

func TestSignDeterministic(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %s", err)
	}

	digest := crypto.DoubleSHA256([]byte("same message, twice"))

	sig1, err := crypto.Sign(digest, priv)
	if err != nil {
		t.Fatalf("Sign: %s", err)
	}
	sig2, err := crypto.Sign(digest, priv)
	if err != nil {
		t.Fatalf("Sign: %s", err)
	}

	if sig1.Bytes() != sig2.Bytes() {
		t.Fatal("expected deterministic nonce derivation to produce identical signatures")
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %s", err)
	}

	digest := crypto.DoubleSHA256([]byte("pixel at (0,1)"))

	sig, err := crypto.Sign(digest, priv)
	if err != nil {
		t.Fatalf("Sign: %s", err)
	}

	sig.R.Add(sig.R, sig.R)

	if crypto.Verify(digest, priv.Public(), sig) {
		t.Fatal("expected tampered signature to fail verification")
	}
}

func TestPublicKeyRoundTrip(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %s", err)
	}

	pub := priv.Public()
	b := pub.Bytes()

	parsed, err := crypto.ParsePublicKey(b[:])
	if err != nil {
		t.Fatalf("ParsePublicKey: %s", err)
	}

	if !pub.Equal(parsed) {
		t.Fatal("expected round-tripped public key to be equal")
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %s", err)
	}

	digest := crypto.DoubleSHA256([]byte("round trip"))
	sig, err := crypto.Sign(digest, priv)
	if err != nil {
		t.Fatalf("Sign: %s", err)
	}

	b := sig.Bytes()
	parsed, err := crypto.ParseSignature(b[:])
	if err != nil {
		t.Fatalf("ParseSignature: %s", err)
	}

	if parsed.Bytes() != b {
		t.Fatal("expected signature to round trip bit for bit")
	}
}
