package std

import "testing"

func TestParseListenRangeValid(t *testing.T) {
	tests := []struct {
		name string
		addr string
		host string
		min  uint64
		max  uint64
	}{
		{name: "SinglePort", addr: "127.0.0.1:1337", host: "127.0.0.1", min: 1337, max: 1337},
		{name: "Range", addr: "127.0.0.1:1337-1340", host: "127.0.0.1", min: 1337, max: 1340},
		{name: "Wildcard", addr: "0.0.0.0:1-65535", host: "0.0.0.0", min: 1, max: 65535},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr, err := ParseListenRange(tt.addr)
			if err != nil {
				t.Fatalf("ParseListenRange(%q) unexpected error: %v", tt.addr, err)
			}

			if lr.Host != tt.host {
				t.Fatalf("expected host %q, got %q", tt.host, lr.Host)
			}

			if lr.MinPort != tt.min || lr.MaxPort != tt.max {
				t.Fatalf("expected ports [%d,%d], got [%d,%d]", tt.min, tt.max, lr.MinPort, lr.MaxPort)
			}
		})
	}
}

func TestParseListenRangeInvalid(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{name: "MissingPort", addr: "127.0.0.1"},
		{name: "ZeroPort", addr: "127.0.0.1:0"},
		{name: "PortTooLarge", addr: "127.0.0.1:70000"},
		{name: "MaxLessThanMin", addr: "127.0.0.1:3000-2000"},
		{name: "HighRange", addr: "127.0.0.1:65534-70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseListenRange(tt.addr); err == nil {
				t.Fatalf("ParseListenRange(%q) expected error", tt.addr)
			}
		})
	}
}
