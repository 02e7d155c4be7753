package validation

import "encoding/json"

// FieldType is the closed set of payload value types a schema can require.
// Decoded JSON values map exactly onto this set; anything else is unknown.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeObject  FieldType = "object"
	TypeArray   FieldType = "array"
)

// TypeOf maps a decoded payload value onto the FieldType set. The second
// return is false for nil and for Go values outside the JSON model. All
// numeric kinds count as number so payloads built in Go validate the same as
// payloads decoded from the wire.
func TypeOf(value any) (FieldType, bool) {
	switch value.(type) {
	case string:
		return TypeString, true
	case bool:
		return TypeBoolean, true
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return TypeNumber, true
	case []any:
		return TypeArray, true
	case map[string]any:
		return TypeObject, true
	default:
		return "", false
	}
}

// ValidateMessageStructure confirms a payload is a keyed structure with a
// string "type" discriminator. On success the original structure is passed
// through as Sanitized; this is a shape check, nothing is copied or mutated.
func ValidateMessageStructure(data any) Result {
	m, ok := data.(map[string]any)
	if !ok || m == nil {
		return Reject("message must be a JSON object")
	}
	t, ok := m["type"]
	if !ok || t == nil {
		return Reject("message missing type field")
	}
	if _, ok := t.(string); !ok {
		return Reject("message type must be a string")
	}
	return AcceptWith(m)
}

// ValidateField checks that one named field is present and has the expected
// type. An absent or null field fails with a missing-field error; a present
// field of the wrong type fails with a mismatch error naming both types.
// Arrays and objects are distinct types.
func ValidateField(data map[string]any, fieldName string, expectedType FieldType) Result {
	value, ok := data[fieldName]
	if !ok || value == nil {
		return Reject("missing field: %s", fieldName)
	}
	actual, known := TypeOf(value)
	if !known {
		return Reject("field %s has unsupported type %T", fieldName, value)
	}
	if actual != expectedType {
		return Reject("field %s must be %s, got %s", fieldName, expectedType, actual)
	}
	return Accept()
}
