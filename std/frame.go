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
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// HeaderSize covers stream id, sequence, xor key and checksum count.
	HeaderSize = 12
	// SignatureSize is the trailing RSA signature, 512-bit keys on the wire.
	SignatureSize = 64
	// MinFrameSize is a header plus a signature; a legal frame additionally
	// carries at least one checksum.
	MinFrameSize = HeaderSize + SignatureSize
)

var (
	ErrShortFrame    = errors.New("frame shorter than header plus signature")
	ErrRaggedFrame   = errors.New("frame length not on a checksum boundary")
	ErrCountMismatch = errors.New("declared checksum count disagrees with frame length")
	ErrEmptyBatch    = errors.New("frame carries no checksums")
)

// Packet is one decoded datagram. The raw bytes are retained because the
// signature covers everything before it on the wire, not the decoded form.
type Packet struct {
	StreamID  uint32
	Sequence  uint32
	XorKey    uint16
	Checksums []uint32
	Signature []byte

	raw []byte
}

// ParsePacket decodes a raw datagram. It is total: any frame that does not
// satisfy the length invariants is rejected with a typed error and no partial
// packet is returned. The packet keeps a reference to raw; callers must not
// reuse the buffer afterwards.
func ParsePacket(raw []byte) (*Packet, error) {
	if len(raw) < MinFrameSize {
		return nil, errors.Wrapf(ErrShortFrame, "got %d bytes", len(raw))
	}
	if (len(raw)-MinFrameSize)%4 != 0 {
		return nil, errors.Wrapf(ErrRaggedFrame, "got %d bytes", len(raw))
	}

	declared := int(binary.BigEndian.Uint16(raw[10:12]))
	if declared == 0 {
		return nil, ErrEmptyBatch
	}
	if declared != (len(raw)-MinFrameSize)/4 {
		return nil, errors.Wrapf(ErrCountMismatch, "declared %d, frame holds %d", declared, (len(raw)-MinFrameSize)/4)
	}

	p := &Packet{
		StreamID:  binary.BigEndian.Uint32(raw[0:4]),
		Sequence:  binary.BigEndian.Uint32(raw[4:8]),
		XorKey:    binary.BigEndian.Uint16(raw[8:10]),
		Checksums: make([]uint32, declared),
		Signature: raw[len(raw)-SignatureSize:],
		raw:       raw,
	}
	for i := range p.Checksums {
		p.Checksums[i] = binary.BigEndian.Uint32(raw[HeaderSize+4*i:])
	}
	return p, nil
}

// Mask is the per-packet XOR mask: the two key bytes doubled and read
// big-endian as one 32-bit value.
func (p *Packet) Mask() uint32 {
	return uint32(p.XorKey)<<16 | uint32(p.XorKey)
}

// SignedBytes is the portion of the wire frame covered by the signature.
func (p *Packet) SignedBytes() []byte {
	return p.raw[:len(p.raw)-SignatureSize]
}

// Marshal encodes the packet back to wire form. The producer uses it to build
// outgoing datagrams; parsing the result yields an identical packet.
func (p *Packet) Marshal() []byte {
	raw := make([]byte, HeaderSize+4*len(p.Checksums)+SignatureSize)
	binary.BigEndian.PutUint32(raw[0:4], p.StreamID)
	binary.BigEndian.PutUint32(raw[4:8], p.Sequence)
	binary.BigEndian.PutUint16(raw[8:10], p.XorKey)
	binary.BigEndian.PutUint16(raw[10:12], uint16(len(p.Checksums)))
	for i, ck := range p.Checksums {
		binary.BigEndian.PutUint32(raw[HeaderSize+4*i:], ck)
	}
	copy(raw[len(raw)-SignatureSize:], p.Signature)
	p.raw = raw
	return raw
}
