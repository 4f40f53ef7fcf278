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

package main

import (
	"crypto/rsa"

	"github.com/crcaudit/crcaudit/std"
)

// generator produces signed packets that mirror what the auditor recomputes:
// the same chained CRC walk over the artifact, masked with the doubled xor
// key. A well-behaved run produces zero journal lines on the server side.
type generator struct {
	stream   *std.Stream
	streamID uint32
	key      *rsa.PrivateKey
	xorKey   uint16
	batch    int
	corrupt  int // 0-based index of the checksum to damage, -1 for none
	seqSkip  uint32

	sent int // checksums emitted so far, drives corrupt
}

// next builds and signs one wire frame and steps the local chain state.
func (g *generator) next() ([]byte, error) {
	p := &std.Packet{
		StreamID:  g.streamID,
		Sequence:  g.stream.NextSequence() + g.seqSkip,
		XorKey:    g.xorKey,
		Checksums: make([]uint32, g.batch),
		Signature: make([]byte, std.SignatureSize),
	}

	mask := p.Mask()
	for i := range p.Checksums {
		p.Checksums[i] = g.stream.Advance() ^ mask
		if g.sent == g.corrupt {
			p.Checksums[i] ^= 1
		}
		g.sent++
	}

	raw := p.Marshal()
	sig, err := std.SignSHA256(g.key, raw[:len(raw)-std.SignatureSize])
	if err != nil {
		return nil, err
	}
	copy(raw[len(raw)-std.SignatureSize:], sig)
	return raw, nil
}
