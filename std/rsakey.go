// The MIT License (MIT)
//
// # Copyright (c) 2026 crcaudit
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package std

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// The producers ship keys in a raw two-integer layout: the first three bytes
// are the little-endian public exponent, everything after is the little-endian
// modulus. Not DER, not PEM. ParseDERPublicKey exists as a convenience for
// keys exported from standard tooling.

const rawExponentSize = 3

// minModulusSize is the smallest modulus that can hold a PKCS#1 v1.5
// envelope around a SHA-256 DigestInfo: 19 prefix + 32 digest + 11 padding.
const minModulusSize = 62

var (
	ErrVerification = rsa.ErrVerification
	ErrKeyTooShort  = errors.New("key file shorter than exponent prefix")
	ErrKeyTooSmall  = errors.New("modulus too small for a PKCS#1 v1.5 envelope")
)

// ParseRawPublicKey decodes the producer key file layout.
func ParseRawPublicKey(b []byte) (*rsa.PublicKey, error) {
	if len(b) <= rawExponentSize {
		return nil, errors.Wrapf(ErrKeyTooShort, "got %d bytes", len(b))
	}

	e := new(big.Int).SetBytes(reverse(b[:rawExponentSize]))
	n := new(big.Int).SetBytes(reverse(b[rawExponentSize:]))
	if e.Sign() == 0 || n.Sign() == 0 {
		return nil, errors.New("key file holds a zero exponent or modulus")
	}

	k := &rsa.PublicKey{N: n, E: int(e.Int64())}
	if k.Size() < minModulusSize {
		return nil, ErrKeyTooSmall
	}
	return k, nil
}

// ParseDERPublicKey decodes a PKCS#1 RSAPublicKey structure
// (SEQUENCE { modulus INTEGER, publicExponent INTEGER }).
func ParseDERPublicKey(der []byte) (*rsa.PublicKey, error) {
	var seq cryptobyte.String
	input := cryptobyte.String(der)
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, errors.New("key is not a DER sequence")
	}

	n, e := new(big.Int), new(big.Int)
	if !seq.ReadASN1Integer(n) || !seq.ReadASN1Integer(e) || !seq.Empty() {
		return nil, errors.New("key sequence is not two integers")
	}
	if !e.IsInt64() || e.Int64() <= 0 || e.Int64() > 1<<31-1 {
		return nil, errors.New("public exponent out of range")
	}

	k := &rsa.PublicKey{N: n, E: int(e.Int64())}
	if k.Size() < minModulusSize {
		return nil, ErrKeyTooSmall
	}
	return k, nil
}

// VerifySHA256 checks a PKCS#1 v1.5 signature over SHA-256(message).
func VerifySHA256(key *rsa.PublicKey, message, sig []byte) error {
	digest := sha256.Sum256(message)
	return rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], sig)
}

// SignSHA256 produces the signature VerifySHA256 accepts. Only the generator
// client signs; the server never holds private material.
func SignSHA256(key *rsa.PrivateKey, message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	return rsa.SignPKCS1v15(nil, key, crypto.SHA256, digest[:])
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
