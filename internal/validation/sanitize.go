package validation

import "strings"

// AnonymousName is substituted when a player name sanitizes to nothing.
const AnonymousName = "Anonymous"

// SanitizeString strips the characters < > " ' & and all ASCII control
// characters (0x00-0x1F and 0x7F) from input, then truncates the result to
// maxLength characters. Non-string input yields an empty string; this
// function never fails. A maxLength of zero or less falls back to the
// default string limit. Sanitization is idempotent: running an already
// sanitized string through again returns it unchanged.
func SanitizeString(input any, maxLength int) string {
	s, ok := input.(string)
	if !ok {
		return ""
	}
	if maxLength <= 0 {
		maxLength = DefaultLimits().MaxStringLength
	}

	var b strings.Builder
	b.Grow(len(s))
	kept := 0
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			continue
		}
		switch r {
		case '<', '>', '"', '\'', '&':
			continue
		}
		if kept == maxLength {
			break
		}
		b.WriteRune(r)
		kept++
	}
	return b.String()
}

// SanitizePlayerName cleans a player display name: it sanitizes with a
// 20-character cap, trims leading/trailing whitespace, collapses internal
// whitespace runs to single spaces, and falls back to AnonymousName when
// nothing survives. The result is never empty and never longer than
// MaxPlayerNameLength characters.
func SanitizePlayerName(name any) string {
	s := SanitizeString(name, MaxPlayerNameLength)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return AnonymousName
	}
	return s
}

// SanitizeString applies the validator's configured string limit.
func (v *Validator) SanitizeString(input any) string {
	return SanitizeString(input, v.limits.MaxStringLength)
}
