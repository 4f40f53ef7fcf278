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
	"fmt"
	"sync/atomic"
)

// FaultKind discriminates journaled validation failures.
type FaultKind int

const (
	FaultMalformedFrame FaultKind = iota
	FaultUnknownStream
	FaultSequenceMismatch
	FaultChecksumMismatch
	FaultSignature
)

// Fault is one validation failure on its way to the journal.
type Fault struct {
	Kind     FaultKind
	StreamID uint32
	Sequence uint32 // sequence as declared by the sender
	Received uint32 // claimed checksum (checksum faults)
	Expected uint32 // recomputed checksum, or the expected sequence
	Detail   string // decoder reason (malformed frames)
}

// Line renders the journal line for the fault, without the trailing newline.
func (f Fault) Line() string {
	switch f.Kind {
	case FaultSequenceMismatch:
		return fmt.Sprintf("%d %d %d (expected sequence)", f.StreamID, f.Sequence, f.Expected)
	case FaultChecksumMismatch:
		return fmt.Sprintf("%d %d %08x (received hash) %08x (expected hash)", f.StreamID, f.Sequence, f.Received, f.Expected)
	case FaultUnknownStream:
		return fmt.Sprintf("%d %d (unknown stream)", f.StreamID, f.Sequence)
	case FaultSignature:
		return fmt.Sprintf("%d %d (signature verification failed)", f.StreamID, f.Sequence)
	default:
		return fmt.Sprintf("- - (malformed frame: %s)", f.Detail)
	}
}

// Validator drains the packet queue and runs the sequence, CRC chain and
// signature checks against the registry. It owns every stream's mutable
// state; Run must be the only goroutine calling into it.
type Validator struct {
	registry *Registry
	packets  <-chan []byte
	faults   chan<- Fault
}

func NewValidator(registry *Registry, packets <-chan []byte, faults chan<- Fault) *Validator {
	return &Validator{
		registry: registry,
		packets:  packets,
		faults:   faults,
	}
}

// Run validates packets until the packet channel closes.
func (v *Validator) Run() {
	for raw := range v.packets {
		v.Validate(raw)
	}
}

// Validate runs one datagram through the full check sequence. Exposed so the
// server can be exercised without a socket.
func (v *Validator) Validate(raw []byte) {
	p, err := ParsePacket(raw)
	if err != nil {
		atomic.AddUint64(&DefaultAudit.MalformedFrames, 1)
		v.emit(Fault{Kind: FaultMalformedFrame, Detail: err.Error()})
		return
	}
	atomic.AddUint64(&DefaultAudit.PacketsParsed, 1)

	stream, ok := v.registry.Lookup(p.StreamID)
	if !ok {
		atomic.AddUint64(&DefaultAudit.UnknownStreams, 1)
		v.emit(Fault{Kind: FaultUnknownStream, StreamID: p.StreamID, Sequence: p.Sequence})
		return
	}

	// Sequence check. The stream keeps its own notion of ordering: a skewed
	// packet is reported but nextSeq is not reset to the sender's value, and
	// checksum validation still runs because the bytes may be good.
	if p.Sequence != stream.NextSequence() {
		atomic.AddUint64(&DefaultAudit.SequenceMismatches, 1)
		v.emit(Fault{
			Kind:     FaultSequenceMismatch,
			StreamID: p.StreamID,
			Sequence: p.Sequence,
			Expected: stream.NextSequence(),
		})
	}

	// CRC chain check. The chain advances before each comparison, so a bad
	// claim burns exactly one window and the next checksum is still compared
	// against its correctly chained value.
	mask := p.Mask()
	for _, claimed := range p.Checksums {
		expected := stream.Advance() ^ mask
		atomic.AddUint64(&DefaultAudit.ChecksumsChecked, 1)
		if claimed != expected {
			atomic.AddUint64(&DefaultAudit.ChecksumMismatches, 1)
			v.emit(Fault{
				Kind:     FaultChecksumMismatch,
				StreamID: p.StreamID,
				Sequence: p.Sequence,
				Received: claimed,
				Expected: expected,
			})
		}
	}

	// Signature check. Failure is journaled but touches no stream state.
	atomic.AddUint64(&DefaultAudit.SignaturesChecked, 1)
	if err := VerifySHA256(stream.Key, p.SignedBytes(), p.Signature); err != nil {
		atomic.AddUint64(&DefaultAudit.SignatureFailures, 1)
		v.emit(Fault{Kind: FaultSignature, StreamID: p.StreamID, Sequence: p.Sequence})
	}
}

// emit hands a fault to the journaler without ever blocking validation. A
// full fault queue drops the record; in-flight fault loss is acceptable.
func (v *Validator) emit(f Fault) {
	select {
	case v.faults <- f:
	default:
		atomic.AddUint64(&DefaultAudit.FaultsDropped, 1)
	}
}
