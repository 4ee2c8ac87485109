package utils

import (
	"strings"
	"testing"
)

func TestFileURL(t *testing.T) {
	got := FileURL("/tmp/some dir/a.txt")
	if got != "file:///tmp/some%20dir/a.txt" {
		t.Errorf("FileURL = %q", got)
	}

	rel := FileURL("relative.txt")
	if !strings.HasPrefix(rel, "file:///") || !strings.HasSuffix(rel, "/relative.txt") {
		t.Errorf("FileURL(relative) = %q", rel)
	}
}

func TestAddressClassification(t *testing.T) {
	tests := []struct {
		addr   string
		full   bool
		suffix bool
	}{
		{"192.168.1.23", true, false},
		{"23", false, true},
		{"1.23", false, true},
		{"256", false, false},
		{"", false, false},
		{"a.b", false, false},
		{"::1", false, false},
	}

	for _, tt := range tests {
		if got := IsFullIPv4(tt.addr); got != tt.full {
			t.Errorf("IsFullIPv4(%q) = %v; want %v", tt.addr, got, tt.full)
		}
		if got := IsIPv4Suffix(tt.addr); got != tt.suffix {
			t.Errorf("IsIPv4Suffix(%q) = %v; want %v", tt.addr, got, tt.suffix)
		}
	}
}
