package discovery

import "testing"

func TestDefaultAddr(t *testing.T) {
	tests := []struct {
		service string
		want    string
		listen  string
	}{
		{ServiceArena, "arena:8092", ":8092"},
		{ServiceArenaMetrics, "arena-metrics:9092", ":9092"},
		{" arena ", "arena:8092", ":8092"},
		{"unknown", "", ""},
	}
	for _, tc := range tests {
		if got := DefaultAddr(tc.service); got != tc.want {
			t.Fatalf("DefaultAddr(%q) = %q, want %q", tc.service, got, tc.want)
		}
		if got := DefaultListenAddr(tc.service); got != tc.listen {
			t.Fatalf("DefaultListenAddr(%q) = %q, want %q", tc.service, got, tc.listen)
		}
	}
}

func TestOrDefault(t *testing.T) {
	if got := OrDefault(" localhost:1 ", ServiceArena); got != "localhost:1" {
		t.Fatalf("OrDefault = %q", got)
	}
	if got := OrDefault("", ServiceArena); got != "arena:8092" {
		t.Fatalf("OrDefault = %q", got)
	}
}
