package hyperliquid

import (
	"testing"
)

func TestSigner_Address(t *testing.T) {
	signer, err := NewSigner(testKey)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	// Well-known address for this key.
	if signer.Address() != "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23" {
		t.Errorf("Address() = %s", signer.Address())
	}
}

func TestSigner_RejectsGarbageKey(t *testing.T) {
	if _, err := NewSigner("not-a-key"); err == nil {
		t.Fatal("expected error for invalid key")
	}
}

func TestSigner_SignAction(t *testing.T) {
	signer, err := NewSigner(testKey)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	action := orderAction{Type: "order", Grouping: "na"}
	sig, err := signer.SignAction(action, 1700000000000)
	if err != nil {
		t.Fatalf("SignAction: %v", err)
	}

	if len(sig.R) != 66 || len(sig.S) != 66 {
		t.Errorf("malformed signature components r=%s s=%s", sig.R, sig.S)
	}
	if sig.V != 27 && sig.V != 28 {
		t.Errorf("v = %d", sig.V)
	}

	// Same action and nonce must sign identically.
	again, err := signer.SignAction(action, 1700000000000)
	if err != nil {
		t.Fatalf("SignAction: %v", err)
	}
	if again != sig {
		t.Error("signature not deterministic")
	}

	// A different nonce must change the digest.
	other, err := signer.SignAction(action, 1700000000001)
	if err != nil {
		t.Fatalf("SignAction: %v", err)
	}
	if other == sig {
		t.Error("nonce not bound into signature")
	}
}
