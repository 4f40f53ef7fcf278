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
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultJournalPath is where fault lines land unless overridden.
const DefaultJournalPath = "checksum_failures.log"

// DefaultJournalCadence amortizes disk syscalls across many faults. Records
// buffered when the process dies are lost, which is acceptable.
const DefaultJournalCadence = 10 * time.Second

// Journal drains the fault queue on a fixed cadence and appends one line per
// fault. The file handle lives only for the duration of a flush.
type Journal struct {
	path    string
	cadence time.Duration
	faults  <-chan Fault
}

func NewJournal(path string, cadence time.Duration, faults <-chan Fault) *Journal {
	return &Journal{path: path, cadence: cadence, faults: faults}
}

// Run flushes every cadence tick until the fault channel closes, then flushes
// whatever is left.
func (j *Journal) Run() {
	ticker := time.NewTicker(j.cadence)
	defer ticker.Stop()
	for range ticker.C {
		if !j.Flush() {
			return
		}
	}
}

// Flush drains every currently available fault and writes the batch in one
// open-append-close cycle. Returns false once the fault channel has closed.
// Write failures go to stderr and the records are not retried.
func (j *Journal) Flush() bool {
	var sb strings.Builder
	var drained int
	open := true

drain:
	for {
		select {
		case f, ok := <-j.faults:
			if !ok {
				open = false
				break drain
			}
			sb.WriteString(f.Line())
			sb.WriteByte('\n')
			drained++
		default:
			break drain
		}
	}

	if drained == 0 {
		return open
	}

	file, err := os.OpenFile(j.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		atomic.AddUint64(&DefaultAudit.JournalWriteErrors, 1)
		log.Println("journal:", err)
		return open
	}
	if _, err := file.WriteString(sb.String()); err != nil {
		atomic.AddUint64(&DefaultAudit.JournalWriteErrors, 1)
		log.Println("journal:", err)
	} else {
		atomic.AddUint64(&DefaultAudit.FaultsJournaled, uint64(drained))
	}
	file.Close()
	return open
}
