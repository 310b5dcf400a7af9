package idgen

import (
	"strings"
	"testing"
)

func TestNextKey(t *testing.T) {
	key, err := NextKey("RCM", 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "RCM-1" {
		t.Errorf("NextKey = %q, want RCM-1", key)
	}
}

func TestNextKeySkipsTaken(t *testing.T) {
	taken := map[string]bool{"RCM-1": true, "RCM-2": true, "RCM-4": true}
	key, err := NextKey("RCM", 1, func(k string) bool { return taken[k] })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "RCM-3" {
		t.Errorf("NextKey = %q, want RCM-3", key)
	}
}

func TestNextKeyStart(t *testing.T) {
	key, err := NextKey("RCM", 10, func(string) bool { return false })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "RCM-10" {
		t.Errorf("NextKey = %q, want RCM-10", key)
	}
}

func TestNextKeyExhausted(t *testing.T) {
	_, err := NextKey("RCM", 1, func(string) bool { return true })
	if err == nil {
		t.Fatal("expected error when every key is taken")
	}
	if !strings.Contains(err.Error(), "no free key") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestKeyNumber(t *testing.T) {
	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"RCM-12", 12, true},
		{"RCM-WORK-3", 3, true},
		{"RCM-", 0, false},
		{"RCM", 0, false},
		{"RCM-x", 0, false},
		{"RCM-0", 0, false},
	}
	for _, tt := range tests {
		got, ok := KeyNumber(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("KeyNumber(%q) = %d, %v; want %d, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder(3)
	if p != "DRYRUN-3" {
		t.Errorf("Placeholder(3) = %q", p)
	}
	if !IsPlaceholder(p) {
		t.Error("IsPlaceholder should accept Placeholder output")
	}
	if IsPlaceholder("RCM-3") {
		t.Error("IsPlaceholder should reject real keys")
	}
}
