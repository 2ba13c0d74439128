package cache

import (
	"strings"
	"testing"
)

func TestKeyDeterministic(t *testing.T) {
	a := Key("openf5_tts", "alice", "hello world", "EN", 1.0)
	b := Key("openf5_tts", "alice", "hello world", "EN", 1.0)
	if a != b {
		t.Error("identical inputs must yield identical keys")
	}
	if !strings.HasPrefix(a, "synth:") {
		t.Errorf("expected synth: prefix, got %s", a)
	}
}

func TestKeyVariesByField(t *testing.T) {
	base := Key("openf5_tts", "alice", "hello", "EN", 1.0)

	variants := []string{
		Key("openvoice_v2", "alice", "hello", "EN", 1.0),
		Key("openf5_tts", "bob", "hello", "EN", 1.0),
		Key("openf5_tts", "alice", "goodbye", "EN", 1.0),
		Key("openf5_tts", "alice", "hello", "ZH", 1.0),
		Key("openf5_tts", "alice", "hello", "EN", 1.5),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collides with base key", i)
		}
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New("not-a-redis-url", 0); err == nil {
		t.Error("expected error for malformed redis URL")
	}
}
