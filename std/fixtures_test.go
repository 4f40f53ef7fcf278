package std

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"testing"
)

// Fixed 512-bit test key, matching the 64-byte signatures the wire carries.
const (
	// PKCS#1 RSAPrivateKey DER.
	testPrivateDERHex = "3082013b020100024100bbe8b0f07364dc27c4f2a74926288c596f449a323de12537ba547554a9d55529e06d2a0c3d6044d31f33aef282c4a05dd980e829c893e3b2b48419ecf7d63e4d0203010001024100ad7ca157ee82114cda65da130c1ae5b170ac5adcc60ac74cd34844e77cc18c94bc53ce58a16c3e9e82a10c649bc018e48680793b59a292f9faf1c7e900bdcc95022100c2b38755cd37880e16ac4191a26aa0ae044f1574f037afc644d82a531289bafb022100f711b7573b16494331a59c4ad1ebd086c40f36094fcc9a5c334e51aff848a95702204148df6d46c5830a6e51ce1e9e1e30c888cb57bf8138bae8b976de2242ca09f702206235cd9e442388bdc8075fc83207bddd442413c3c1cfbff03488c659dfa4ea830221009fddbb7097c1c5f86074e4667cb978e23e277e83ceb36dbc5f4ebea559a44a6c"

	// The matching public key in the producer key file layout: 3 bytes
	// little-endian exponent, then the little-endian modulus.
	testRawKeyHex = "0100014d3ed6f7ec1984b4b2e393c829e880d95da0c482f2ae331fd344603d0c2a6de02955d5a9547554ba3725e13d329a446f598c282649a7f2c427dc6473f0b0e8bb"

	// The matching public key as a DER PKCS#1 RSAPublicKey.
	testDERKeyHex = "3048024100bbe8b0f07364dc27c4f2a74926288c596f449a323de12537ba547554a9d55529e06d2a0c3d6044d31f33aef282c4a05dd980e829c893e3b2b48419ecf7d63e4d0203010001"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad fixture hex: %v", err)
	}
	return b
}

func testPrivateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := x509.ParsePKCS1PrivateKey(mustHex(t, testPrivateDERHex))
	if err != nil {
		t.Fatalf("bad fixture key: %v", err)
	}
	return key
}

func testPublicKey(t *testing.T) *rsa.PublicKey {
	t.Helper()
	return &testPrivateKey(t).PublicKey
}
