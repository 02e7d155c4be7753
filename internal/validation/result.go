// Package validation is the inbound-message validation and sanitization
// boundary for the game server. Every client-supplied payload passes through
// it before any game state is touched: size guards, structural checks,
// declarative per-field schemas, and string sanitization. All checks are pure
// functions of their inputs plus an injected Limits value; nothing here does
// I/O, blocks, or keeps mutable state, so every function is safe for
// concurrent use.
package validation

import "fmt"

// Result is the outcome of a validation check. ErrorMessage is non-empty
// exactly when Valid is false. Sanitized is populated only on success paths
// that produce derived, cleaned data (never on failure).
type Result struct {
	Valid        bool
	ErrorMessage string
	Sanitized    map[string]any
}

// Accept returns a successful Result with no sanitized data.
func Accept() Result {
	return Result{Valid: true}
}

// AcceptWith returns a successful Result carrying sanitized data.
func AcceptWith(data map[string]any) Result {
	return Result{Valid: true, Sanitized: data}
}

// Reject returns a failed Result with a formatted error message.
func Reject(format string, args ...any) Result {
	return Result{ErrorMessage: fmt.Sprintf(format, args...)}
}
