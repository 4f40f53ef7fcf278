package std

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestJournalFlushBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checksum_failures.log")
	faults := make(chan Fault, 256)
	j := NewJournal(path, time.Hour, faults)

	// Nothing queued: no flush cycle, no file.
	j.Flush()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty flush created the journal file")
	}

	for i := 0; i < 100; i++ {
		faults <- Fault{Kind: FaultSequenceMismatch, StreamID: 1, Sequence: uint32(i), Expected: 0}
	}
	j.Flush()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("journal not written: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) != 100 {
		t.Fatalf("expected 100 lines, got %d", len(lines))
	}
	// Dequeue order is emission order.
	if lines[0] != "1 0 0 (expected sequence)" || lines[99] != "1 99 0 (expected sequence)" {
		t.Fatalf("unexpected boundary lines: %q / %q", lines[0], lines[99])
	}
}

func TestJournalAppendsAcrossFlushes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checksum_failures.log")
	faults := make(chan Fault, 16)
	j := NewJournal(path, time.Hour, faults)

	faults <- Fault{Kind: FaultUnknownStream, StreamID: 7, Sequence: 1}
	j.Flush()
	faults <- Fault{Kind: FaultUnknownStream, StreamID: 7, Sequence: 2}
	j.Flush()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("journal not written: %v", err)
	}
	if got := string(b); got != "7 1 (unknown stream)\n7 2 (unknown stream)\n" {
		t.Fatalf("unexpected journal contents: %q", got)
	}
}

func TestJournalCadence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checksum_failures.log")
	faults := make(chan Fault, 256)

	// A scaled-down cadence: errors produced now must be absent before the
	// first tick and all present after it.
	j := NewJournal(path, 200*time.Millisecond, faults)
	go j.Run()
	defer close(faults)

	for i := 0; i < 100; i++ {
		faults <- Fault{Kind: FaultChecksumMismatch, StreamID: 1, Sequence: uint32(i), Received: 1, Expected: 2}
	}

	time.Sleep(50 * time.Millisecond)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("journal written before the cadence elapsed")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		b, err := os.ReadFile(path)
		if err == nil && strings.Count(string(b), "\n") == 100 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("journal incomplete after cadence: err=%v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestJournalWriteErrorIsNonFatal(t *testing.T) {
	// Point the journal at a directory so the open fails.
	dir := t.TempDir()
	faults := make(chan Fault, 16)
	j := NewJournal(dir, time.Hour, faults)

	faults <- Fault{Kind: FaultUnknownStream, StreamID: 1, Sequence: 1}
	j.Flush()

	// The record is gone, not retried, and the journaler keeps accepting.
	faults <- Fault{Kind: FaultUnknownStream, StreamID: 1, Sequence: 2}
	j.Flush()
}
