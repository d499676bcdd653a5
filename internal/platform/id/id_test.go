package id

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestNewFormat(t *testing.T) {
	token, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(token) != 26 {
		t.Errorf("token length = %d, want 26", len(token))
	}
	if token != strings.ToLower(token) {
		t.Errorf("token %q is not lowercase", token)
	}
	if strings.Contains(token, "=") {
		t.Errorf("token %q contains padding", token)
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := New()
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
}

func TestNewCommitToken(t *testing.T) {
	now := time.UnixMilli(1700000000000).UTC()
	token, err := NewCommitToken(now)
	if err != nil {
		t.Fatalf("NewCommitToken: %v", err)
	}
	prefix, random, ok := strings.Cut(token, "-")
	if !ok {
		t.Fatalf("token %q has no timestamp salt", token)
	}
	millis, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		t.Fatalf("prefix %q is not millis: %v", prefix, err)
	}
	if millis != 1700000000000 {
		t.Errorf("salt = %d, want 1700000000000", millis)
	}
	if len(random) != 26 {
		t.Errorf("random part length = %d, want 26", len(random))
	}
}
