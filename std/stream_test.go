package std

import (
	"bytes"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/snappy"
)

func TestAdvanceChainsLikeZlib(t *testing.T) {
	artifact := bytes.Repeat([]byte{0x00}, 1024)
	s := &Stream{Artifact: artifact}

	if _, started := s.LastCRC(); started {
		t.Fatalf("fresh stream claims a chain value")
	}

	first := s.Advance()
	if first != crc32.ChecksumIEEE(artifact) {
		t.Fatalf("first CRC must run from the standard initial state")
	}

	second := s.Advance()
	if second != crc32.Update(first, crc32.IEEETable, artifact) {
		t.Fatalf("second CRC must resume from the first")
	}
	// Resuming equals hashing the concatenation.
	if second != crc32.ChecksumIEEE(append(append([]byte(nil), artifact...), artifact...)) {
		t.Fatalf("chained CRC disagrees with the concatenation")
	}

	if last, started := s.LastCRC(); !started || last != second {
		t.Fatalf("chain state not advanced: %08x started=%v", last, started)
	}
	if s.NextSequence() != 2 {
		t.Fatalf("expected next sequence 2, got %d", s.NextSequence())
	}
}

func writeStreamFixture(t *testing.T, artifact []byte) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()

	binPath := filepath.Join(dir, "artifact.bin")
	if err := os.WriteFile(binPath, artifact, 0o644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}

	keyPath := filepath.Join(dir, "stream.key")
	if err := os.WriteFile(keyPath, mustHex(t, testRawKeyHex), 0o644); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}

	configPath = filepath.Join(dir, "streams.json")
	config := `[{"id": 1, "binary_path": "` + binPath + `", "key_path": "` + keyPath + `"},
	            {"id": "2", "binary_path": "` + binPath + `", "key_path": "` + keyPath + `"}]`
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return dir, configPath
}

func TestLoadRegistry(t *testing.T) {
	artifact := []byte("well-known binary artifact")
	_, configPath := writeStreamFixture(t, artifact)

	reg, err := LoadRegistry(configPath)
	if err != nil {
		t.Fatalf("LoadRegistry returned error: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 streams, got %d", reg.Len())
	}

	// id 1 came in as a number, id 2 as a string; both must resolve.
	for _, id := range []uint32{1, 2} {
		s, ok := reg.Lookup(id)
		if !ok {
			t.Fatalf("stream %d not registered", id)
		}
		if !bytes.Equal(s.Artifact, artifact) {
			t.Fatalf("stream %d artifact not loaded whole", id)
		}
		if s.Key == nil || s.Key.Size() != SignatureSize {
			t.Fatalf("stream %d key not parsed", id)
		}
		if s.NextSequence() != 0 {
			t.Fatalf("stream %d should start at sequence 0", id)
		}
	}

	if _, ok := reg.Lookup(999); ok {
		t.Fatalf("unknown stream id resolved")
	}
}

func TestLoadRegistryErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
		return path
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "Missing", path: filepath.Join(dir, "missing.json")},
		{name: "NotJSON", path: write("garbage.json", "not json")},
		{name: "NoStreams", path: write("empty.json", "[]")},
		{name: "BadArtifact", path: write("badbin.json", `[{"id":1,"binary_path":"`+filepath.Join(dir, "nope.bin")+`","key_path":"x"}]`)},
		{name: "DuplicateID", path: func() string {
			bin := write("a.bin", "x")
			key := filepath.Join(dir, "a.key")
			if err := os.WriteFile(key, mustHex(t, testRawKeyHex), 0o644); err != nil {
				t.Fatalf("failed to write key: %v", err)
			}
			return write("dup.json", `[{"id":1,"binary_path":"`+bin+`","key_path":"`+key+`"},{"id":"1","binary_path":"`+bin+`","key_path":"`+key+`"}]`)
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadRegistry(tt.path); err == nil {
				t.Fatalf("LoadRegistry expected error")
			}
		})
	}
}

func TestLoadArtifactSnappy(t *testing.T) {
	artifact := bytes.Repeat([]byte("compressible "), 512)

	path := filepath.Join(t.TempDir(), "artifact.sz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create artifact: %v", err)
	}
	w := snappy.NewBufferedWriter(f)
	if _, err := w.Write(artifact); err != nil {
		t.Fatalf("failed to compress artifact: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to flush artifact: %v", err)
	}
	f.Close()

	got, err := LoadArtifact(path)
	if err != nil {
		t.Fatalf("LoadArtifact returned error: %v", err)
	}
	if !bytes.Equal(got, artifact) {
		t.Fatalf("decompressed artifact disagrees with the original")
	}
}
