package validation

// Limits holds the size bounds consumed by the validators. A Limits value is
// injected into each Validator at construction so tests and callers control
// the bounds without shared mutable state.
type Limits struct {
	MaxStringLength   int // max characters kept by the sanitizer
	MaxMessageBytes   int // max size of a raw inbound message: bytes for binary buffers, characters for text
	MaxGameStateBytes int // max size of a serialized game state payload
}

// MaxPlayerNameLength caps sanitized player display names.
const MaxPlayerNameLength = 20

// DefaultLimits returns the production bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxStringLength:   1000,
		MaxMessageBytes:   10 * 1024,
		MaxGameStateBytes: 100 * 1024,
	}
}

// Validator evaluates inbound messages against a fixed Limits value. The zero
// value is not usable; construct with New.
type Validator struct {
	limits Limits
}

// New creates a Validator bound to the given limits.
func New(limits Limits) *Validator {
	return &Validator{limits: limits}
}

// Limits returns the bounds this validator was constructed with.
func (v *Validator) Limits() Limits {
	return v.limits
}
