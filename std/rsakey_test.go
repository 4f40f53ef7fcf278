package std

import (
	"testing"

	"github.com/pkg/errors"
)

func TestParseRawPublicKey(t *testing.T) {
	key, err := ParseRawPublicKey(mustHex(t, testRawKeyHex))
	if err != nil {
		t.Fatalf("ParseRawPublicKey returned error: %v", err)
	}

	want := testPublicKey(t)
	if key.N.Cmp(want.N) != 0 {
		t.Fatalf("modulus mismatch:\n got %x\nwant %x", key.N, want.N)
	}
	if key.E != 65537 {
		t.Fatalf("expected exponent 65537, got %v", key.E)
	}
	if key.Size() != SignatureSize {
		t.Fatalf("expected %d-byte key, got %d", SignatureSize, key.Size())
	}
}

func TestParseRawPublicKeyInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "Empty", raw: nil},
		{name: "ExponentOnly", raw: []byte{1, 0, 1}},
		{name: "ZeroModulus", raw: []byte{1, 0, 1, 0, 0, 0, 0}},
		{name: "TinyModulus", raw: append([]byte{1, 0, 1, 0xff}, make([]byte, 14)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRawPublicKey(tt.raw); err == nil {
				t.Fatalf("ParseRawPublicKey expected error")
			}
		})
	}
}

func TestParseDERPublicKey(t *testing.T) {
	key, err := ParseDERPublicKey(mustHex(t, testDERKeyHex))
	if err != nil {
		t.Fatalf("ParseDERPublicKey returned error: %v", err)
	}

	want := testPublicKey(t)
	if key.N.Cmp(want.N) != 0 || key.E != 65537 {
		t.Fatalf("DER key disagrees with fixture")
	}
}

func TestParseDERPublicKeyInvalid(t *testing.T) {
	if _, err := ParseDERPublicKey([]byte{0x30, 0x00}); err == nil {
		t.Fatalf("expected error for an empty sequence")
	}
	if _, err := ParseDERPublicKey(mustHex(t, testRawKeyHex)); err == nil {
		t.Fatalf("expected error for the raw layout")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	priv := testPrivateKey(t)
	message := []byte("the artifact stands unchanged")

	sig, err := SignSHA256(priv, message)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}
	if len(sig) != SignatureSize {
		t.Fatalf("expected a %d-byte signature, got %d", SignatureSize, len(sig))
	}

	if err := VerifySHA256(&priv.PublicKey, message, sig); err != nil {
		t.Fatalf("verification of a fresh signature failed: %v", err)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	priv := testPrivateKey(t)
	message := []byte("the artifact stands unchanged")
	sig, err := SignSHA256(priv, message)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	t.Run("TamperedMessage", func(t *testing.T) {
		err := VerifySHA256(&priv.PublicKey, []byte("the artifact was altered"), sig)
		if !errors.Is(err, ErrVerification) {
			t.Fatalf("expected ErrVerification, got %v", err)
		}
	})

	t.Run("TamperedSignature", func(t *testing.T) {
		bad := append([]byte(nil), sig...)
		bad[10] ^= 1
		err := VerifySHA256(&priv.PublicKey, message, bad)
		if !errors.Is(err, ErrVerification) {
			t.Fatalf("expected ErrVerification, got %v", err)
		}
	})

	t.Run("WrongLength", func(t *testing.T) {
		err := VerifySHA256(&priv.PublicKey, message, sig[:32])
		if !errors.Is(err, ErrVerification) {
			t.Fatalf("expected ErrVerification, got %v", err)
		}
	})
}
