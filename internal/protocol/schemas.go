package protocol

import (
	"unicode/utf8"

	"github.com/playforge/arena/internal/validation"
)

// MaxChatChars bounds the character count of a single chat message.
const MaxChatChars = 500

// NewSchemaRegistry builds the fixed set of message schemas and seals it.
// VISUAL_EFFECT and GAME_STATE are deliberately absent: those kinds go
// through the composite validators instead of the generic schema walk.
func NewSchemaRegistry() *validation.Registry {
	r := validation.NewRegistry()

	r.Register(TypeCreateGame, validation.Schema{
		{Name: "playerName", Type: validation.TypeString, Required: false},
	})

	r.Register(TypeJoinGame, validation.Schema{
		{Name: "gameId", Type: validation.TypeString, Required: true, Validate: sanitizesNonEmpty},
		{Name: "playerName", Type: validation.TypeString, Required: false},
	})

	r.Register(TypeLeaveGame, validation.Schema{
		{Name: "gameId", Type: validation.TypeString, Required: true, Validate: sanitizesNonEmpty},
	})

	r.Register(TypePlayerMove, validation.Schema{
		{Name: "gameId", Type: validation.TypeString, Required: true, Validate: sanitizesNonEmpty},
		{Name: "playerId", Type: validation.TypeNumber, Required: true, Validate: nonNegative},
		{Name: "move", Type: validation.TypeObject, Required: true},
	})

	r.Register(TypeChat, validation.Schema{
		{Name: "gameId", Type: validation.TypeString, Required: true, Validate: sanitizesNonEmpty},
		{Name: "text", Type: validation.TypeString, Required: true, Validate: chatTextOK},
	})

	r.Seal()
	return r
}

// sanitizesNonEmpty accepts strings that survive sanitization.
func sanitizesNonEmpty(v any) bool {
	return validation.SanitizeString(v, 0) != ""
}

// nonNegative accepts numeric values >= 0. The type check has already run,
// so v is one of the numeric kinds.
func nonNegative(v any) bool {
	switch n := v.(type) {
	case float64:
		return n >= 0
	case float32:
		return n >= 0
	case int:
		return n >= 0
	case int8:
		return n >= 0
	case int16:
		return n >= 0
	case int32:
		return n >= 0
	case int64:
		return n >= 0
	case uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

// chatTextOK accepts non-empty, valid UTF-8 chat text within the length cap.
func chatTextOK(v any) bool {
	s, ok := v.(string)
	if !ok || s == "" {
		return false
	}
	if !utf8.ValidString(s) {
		return false
	}
	return utf8.RuneCountInString(s) <= MaxChatChars
}
