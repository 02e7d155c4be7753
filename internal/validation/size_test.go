package validation

import (
	"strings"
	"testing"
)

func newTestValidator() *Validator {
	return New(Limits{
		MaxStringLength:   100,
		MaxMessageBytes:   64,
		MaxGameStateBytes: 128,
	})
}

// ---------------------------------------------------------------------------
// Test: raw message size guard
// ---------------------------------------------------------------------------

func TestValidateMessageSize_Nil(t *testing.T) {
	v := newTestValidator()
	if !v.ValidateMessageSize(nil) {
		t.Error("nil message should be trivially valid")
	}
}

func TestValidateMessageSize_Text(t *testing.T) {
	v := newTestValidator()

	atLimit := strings.Repeat("a", 64)
	if !v.ValidateMessageSize(atLimit) {
		t.Error("text exactly at the limit should be valid")
	}
	if v.ValidateMessageSize(atLimit + "a") {
		t.Error("text one character over the limit should be invalid")
	}

	// Character count, not byte count: 64 multibyte runes are within limit.
	multibyte := strings.Repeat("界", 64)
	if !v.ValidateMessageSize(multibyte) {
		t.Error("64-character multibyte text should be valid")
	}
}

func TestValidateMessageSize_Binary(t *testing.T) {
	v := newTestValidator()

	atLimit := make([]byte, 64)
	if !v.ValidateMessageSize(atLimit) {
		t.Error("buffer exactly at the limit should be valid")
	}
	if v.ValidateMessageSize(make([]byte, 65)) {
		t.Error("buffer over the limit should be invalid")
	}
}

func TestValidateMessageSize_UnsupportedTypes(t *testing.T) {
	v := newTestValidator()

	for _, in := range []any{42, 3.14, true, map[string]any{}, []any{}} {
		if v.ValidateMessageSize(in) {
			t.Errorf("input of type %T should be rejected", in)
		}
	}
}

// ---------------------------------------------------------------------------
// Test: game state size guard
// ---------------------------------------------------------------------------

func TestValidateGameStateSize(t *testing.T) {
	v := newTestValidator()

	small := map[string]any{"players": []any{"a", "b"}, "round": 3}
	if !v.ValidateGameStateSize(small) {
		t.Error("small game state should be valid")
	}

	big := map[string]any{"blob": strings.Repeat("x", 200)}
	if v.ValidateGameStateSize(big) {
		t.Error("oversized game state should be invalid")
	}
}

func TestValidateGameStateSize_CircularState(t *testing.T) {
	v := newTestValidator()

	state := map[string]any{}
	state["self"] = state

	// Must report invalid, not panic or propagate the marshal error.
	if v.ValidateGameStateSize(state) {
		t.Error("self-referential state should be invalid")
	}
}

func TestValidateGameStateSize_UnserializableState(t *testing.T) {
	v := newTestValidator()

	state := map[string]any{"ch": make(chan int)}
	if v.ValidateGameStateSize(state) {
		t.Error("state with non-serializable values should be invalid")
	}
}
