package gameid

import (
	"regexp"
	"testing"
)

var idPattern = regexp.MustCompile(`^[0-9A-Z]+_[0-9A-F]{6}$`)

func TestNew_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := New()
		if !idPattern.MatchString(id) {
			t.Fatalf("identifier %q does not match %s", id, idPattern)
		}
	}
}

func TestNew_NoImmediateCollisions(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate identifier generated: %q", id)
		}
		seen[id] = true
	}
}
