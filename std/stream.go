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
	"crypto/rsa"
	"encoding/json"
	"hash/crc32"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// StreamConfig is one element of the JSON configuration array. The id is
// accepted both as a JSON number and as a quoted string, existing producer
// deployments use either.
type StreamConfig struct {
	ID         StreamID `json:"id"`
	BinaryPath string   `json:"binary_path"`
	KeyPath    string   `json:"key_path"`
}

// StreamID decodes from a JSON number or string.
type StreamID uint32

func (s *StreamID) UnmarshalJSON(b []byte) error {
	v, err := strconv.ParseUint(strings.Trim(string(b), `"`), 10, 32)
	if err != nil {
		return errors.Wrapf(err, "stream id %s", b)
	}
	*s = StreamID(v)
	return nil
}

// Stream is one configured audit stream. The artifact and key are immutable
// after LoadRegistry; the chain state belongs to the validator goroutine alone and
// needs no locking.
type Stream struct {
	ID       uint32
	Artifact []byte
	Key      *rsa.PublicKey

	nextSeq uint32
	lastCRC uint32
	started bool
}

// NextSequence is the sequence number the next incoming packet must declare.
func (s *Stream) NextSequence() uint32 { return s.nextSeq }

// LastCRC reports the most recent chain value and whether the chain has
// produced one at all.
func (s *Stream) LastCRC() (uint32, bool) { return s.lastCRC, s.started }

// Advance computes the next chained CRC over the artifact and steps the
// stream state. The first call runs from the standard initial register; every
// later call resumes from the previous output, zlib style. The state moves
// unconditionally: callers compare the returned value after advancing, so one
// bad claim cannot desynchronize the chain.
func (s *Stream) Advance() uint32 {
	if s.started {
		s.lastCRC = crc32.Update(s.lastCRC, crc32.IEEETable, s.Artifact)
	} else {
		s.lastCRC = crc32.ChecksumIEEE(s.Artifact)
		s.started = true
	}
	s.nextSeq++
	return s.lastCRC
}

// Registry maps stream ids to their live state. Built once at startup, then
// handed to the validator; nothing else touches it afterwards.
type Registry struct {
	streams map[uint32]*Stream
}

// Lookup resolves a wire stream id.
func (r *Registry) Lookup(id uint32) (*Stream, bool) {
	s, ok := r.streams[id]
	return s, ok
}

// Len reports how many streams are configured.
func (r *Registry) Len() int { return len(r.streams) }

// IDs lists the configured stream ids in ascending order.
func (r *Registry) IDs() []uint32 {
	ids := make([]uint32, 0, len(r.streams))
	for id := range r.streams {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// LoadRegistry reads the JSON configuration file and builds every configured
// stream: artifact fully in memory (CRC recomputation is hot), key parsed,
// chain state fresh.
func LoadRegistry(path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer file.Close()

	var entries []StreamConfig
	if err := json.NewDecoder(file).Decode(&entries); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	if len(entries) == 0 {
		return nil, errors.Errorf("config %s declares no streams", path)
	}

	reg := &Registry{streams: make(map[uint32]*Stream, len(entries))}
	for _, e := range entries {
		if _, dup := reg.streams[uint32(e.ID)]; dup {
			return nil, errors.Errorf("config %s declares stream %d twice", path, e.ID)
		}

		artifact, err := LoadArtifact(e.BinaryPath)
		if err != nil {
			return nil, errors.Wrapf(err, "stream %d artifact", e.ID)
		}

		keyBytes, err := os.ReadFile(e.KeyPath)
		if err != nil {
			return nil, errors.Wrapf(err, "stream %d key", e.ID)
		}
		key, err := ParseRawPublicKey(keyBytes)
		if err != nil {
			return nil, errors.Wrapf(err, "stream %d key %s", e.ID, e.KeyPath)
		}

		reg.streams[uint32(e.ID)] = &Stream{
			ID:       uint32(e.ID),
			Artifact: artifact,
			Key:      key,
		}
	}
	return reg, nil
}

// LoadArtifact reads an artifact whole. Paths with an .sz suffix are
// transparently decompressed from the snappy framed format.
func LoadArtifact(path string) ([]byte, error) {
	if !strings.HasSuffix(path, ".sz") {
		b, err := os.ReadFile(path)
		return b, errors.WithStack(err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	b, err := io.ReadAll(snappy.NewReader(f))
	return b, errors.Wrapf(err, "snappy artifact %s", path)
}
