package validation

import (
	"encoding/json"
	"unicode/utf8"
)

// ValidateMessageSize reports whether a raw inbound message fits within the
// configured message limit. Text is measured in characters, binary buffers in
// bytes; a message exactly at the limit is valid. A nil message is trivially
// valid (nothing to bound). Any other input type is rejected outright.
func (v *Validator) ValidateMessageSize(message any) bool {
	switch m := message.(type) {
	case nil:
		return true
	case string:
		return utf8.RuneCountInString(m) <= v.limits.MaxMessageBytes
	case []byte:
		return len(m) <= v.limits.MaxMessageBytes
	case json.RawMessage:
		return len(m) <= v.limits.MaxMessageBytes
	default:
		return false
	}
}

// ValidateGameStateSize serializes the candidate game state and checks the
// result against the game-state limit. States that cannot be serialized
// (circular structures, channels, and so on) report invalid rather than
// propagating an error.
func (v *Validator) ValidateGameStateSize(gameState any) bool {
	data, err := json.Marshal(gameState)
	if err != nil {
		return false
	}
	return len(data) <= v.limits.MaxGameStateBytes
}
