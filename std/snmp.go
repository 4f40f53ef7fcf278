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
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

// Audit aggregates pipeline counters. All fields are updated atomically and
// may be read from any goroutine.
type Audit struct {
	DatagramsIn        uint64 // datagrams read off the socket
	BytesIn            uint64 // raw bytes read off the socket
	PacketsParsed      uint64 // frames that survived decoding
	MalformedFrames    uint64 // frames rejected by the decoder
	UnknownStreams     uint64 // packets naming an unconfigured stream
	ChecksumsChecked   uint64 // individual CRC comparisons performed
	ChecksumMismatches uint64 // individual CRC comparisons that failed
	SequenceMismatches uint64 // packets with an out-of-order sequence
	SignaturesChecked  uint64 // signature verifications performed
	SignatureFailures  uint64 // signature verifications that failed
	FaultsJournaled    uint64 // fault lines written to disk
	FaultsDropped      uint64 // fault records lost to a full queue
	JournalWriteErrors uint64 // flush cycles that hit an I/O error
}

// DefaultAudit is the process-wide counter block.
var DefaultAudit = new(Audit)

func (a *Audit) Header() []string {
	return []string{
		"DatagramsIn", "BytesIn", "PacketsParsed", "MalformedFrames",
		"UnknownStreams", "ChecksumsChecked", "ChecksumMismatches",
		"SequenceMismatches", "SignaturesChecked", "SignatureFailures",
		"FaultsJournaled", "FaultsDropped", "JournalWriteErrors",
	}
}

// ToSlice returns the counters as strings, aligned with Header.
func (a *Audit) ToSlice() []string {
	c := a.Copy()
	return []string{
		fmt.Sprint(c.DatagramsIn), fmt.Sprint(c.BytesIn),
		fmt.Sprint(c.PacketsParsed), fmt.Sprint(c.MalformedFrames),
		fmt.Sprint(c.UnknownStreams), fmt.Sprint(c.ChecksumsChecked),
		fmt.Sprint(c.ChecksumMismatches), fmt.Sprint(c.SequenceMismatches),
		fmt.Sprint(c.SignaturesChecked), fmt.Sprint(c.SignatureFailures),
		fmt.Sprint(c.FaultsJournaled), fmt.Sprint(c.FaultsDropped),
		fmt.Sprint(c.JournalWriteErrors),
	}
}

// Copy makes a snapshot for reporting.
func (a *Audit) Copy() *Audit {
	return &Audit{
		DatagramsIn:        atomic.LoadUint64(&a.DatagramsIn),
		BytesIn:            atomic.LoadUint64(&a.BytesIn),
		PacketsParsed:      atomic.LoadUint64(&a.PacketsParsed),
		MalformedFrames:    atomic.LoadUint64(&a.MalformedFrames),
		UnknownStreams:     atomic.LoadUint64(&a.UnknownStreams),
		ChecksumsChecked:   atomic.LoadUint64(&a.ChecksumsChecked),
		ChecksumMismatches: atomic.LoadUint64(&a.ChecksumMismatches),
		SequenceMismatches: atomic.LoadUint64(&a.SequenceMismatches),
		SignaturesChecked:  atomic.LoadUint64(&a.SignaturesChecked),
		SignatureFailures:  atomic.LoadUint64(&a.SignatureFailures),
		FaultsJournaled:    atomic.LoadUint64(&a.FaultsJournaled),
		FaultsDropped:      atomic.LoadUint64(&a.FaultsDropped),
		JournalWriteErrors: atomic.LoadUint64(&a.JournalWriteErrors),
	}
}

// AuditLogger periodically appends the counters to a CSV file. The filename
// part of path goes through time.Format, so a pattern like
// ./audit-20060102.log rolls daily.
func AuditLogger(path string, interval int) {
	if path == "" || interval == 0 {
		return
	}
	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		// split path into dirname and filename
		logdir, logfile := filepath.Split(path)
		// only format logfile
		f, err := os.OpenFile(logdir+time.Now().Format(logfile), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Println(err)
			return
		}
		w := csv.NewWriter(f)
		// write header in empty file
		if stat, err := f.Stat(); err == nil && stat.Size() == 0 {
			if err := w.Write(append([]string{"Unix"}, DefaultAudit.Header()...)); err != nil {
				log.Println(err)
			}
		}
		if err := w.Write(append([]string{fmt.Sprint(time.Now().Unix())}, DefaultAudit.ToSlice()...)); err != nil {
			log.Println(err)
		}
		w.Flush()
		f.Close()
	}
}
