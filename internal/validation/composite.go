package validation

import "encoding/json"

// ValidateGameID checks that a raw gameId value is a string whose sanitized
// form is non-empty. On success the cleaned identifier is returned under
// Sanitized["gameId"].
func (v *Validator) ValidateGameID(raw any) Result {
	s, ok := raw.(string)
	if !ok {
		return Reject("gameId must be a string")
	}
	clean := SanitizeString(s, v.limits.MaxStringLength)
	if clean == "" {
		return Reject("gameId is empty after sanitization")
	}
	return AcceptWith(map[string]any{"gameId": clean})
}

// ValidateVisualEffectMessage runs the full check sequence for a visual
// effect message: serialized-size guard, structural check, gameId check, and
// a presence+type check that data[dataFieldName] is a keyed structure. The
// first failing stage's result is returned. On success, Sanitized carries
// the cleaned gameId.
func (v *Validator) ValidateVisualEffectMessage(data any, dataFieldName string) Result {
	payload, err := json.Marshal(data)
	if err != nil {
		return Reject("message could not be serialized")
	}
	if len(payload) > v.limits.MaxMessageBytes {
		return Reject("message exceeds size limit")
	}

	res := ValidateMessageStructure(data)
	if !res.Valid {
		return res
	}
	msg := res.Sanitized

	idRes := v.ValidateGameID(msg["gameId"])
	if !idRes.Valid {
		return idRes
	}

	value, ok := msg[dataFieldName]
	if !ok || value == nil {
		return Reject("missing %s payload", dataFieldName)
	}
	if _, isObject := value.(map[string]any); !isObject {
		return Reject("%s payload must be an object", dataFieldName)
	}

	return AcceptWith(idRes.Sanitized)
}

// ValidateGameStateMessage checks a game state sync message: structural
// check, then gameState must be a present keyed structure, then gameId must
// be present text.
func (v *Validator) ValidateGameStateMessage(data any) Result {
	res := ValidateMessageStructure(data)
	if !res.Valid {
		return res
	}
	msg := res.Sanitized

	state, ok := msg["gameState"]
	if !ok || state == nil {
		return Reject("missing gameState")
	}
	if _, isObject := state.(map[string]any); !isObject {
		return Reject("gameState must be an object")
	}

	// gameId is type-checked only here; unlike the visual effect path, state
	// sync does not run the sanitizer. Pending review whether the two paths
	// should be unified.
	id, ok := msg["gameId"]
	if !ok || id == nil {
		return Reject("missing gameId")
	}
	if _, isString := id.(string); !isString {
		return Reject("gameId must be a string")
	}

	return Accept()
}
