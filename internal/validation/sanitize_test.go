package validation

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Test: non-string inputs always sanitize to the empty string
// ---------------------------------------------------------------------------

func TestSanitizeString_NonStringInput(t *testing.T) {
	inputs := []any{nil, 42, 3.14, true, []any{"a"}, map[string]any{"k": "v"}}

	for _, in := range inputs {
		if got := SanitizeString(in, 100); got != "" {
			t.Errorf("SanitizeString(%v): expected empty string, got %q", in, got)
		}
	}
}

// ---------------------------------------------------------------------------
// Test: dangerous characters and control characters are stripped
// ---------------------------------------------------------------------------

func TestSanitizeString_StripsDangerousChars(t *testing.T) {
	in := `<script>alert("xss")&'</script>` + "\x00\x1f\x7f\ttab"
	got := SanitizeString(in, 100)

	if strings.ContainsAny(got, `<>"'&`) {
		t.Errorf("output still contains dangerous characters: %q", got)
	}
	for _, r := range got {
		if r < 0x20 || r == 0x7F {
			t.Errorf("output still contains control character %#x: %q", r, got)
		}
	}
	if got != "scriptalert(xss)/scripttab" {
		t.Errorf("unexpected sanitized output: %q", got)
	}
}

func TestSanitizeString_TruncatesToMaxLength(t *testing.T) {
	in := strings.Repeat("界", 50) // multibyte runes
	got := SanitizeString(in, 10)

	if n := utf8.RuneCountInString(got); n != 10 {
		t.Errorf("expected 10 characters, got %d (%q)", n, got)
	}
}

func TestSanitizeString_DefaultLimit(t *testing.T) {
	in := strings.Repeat("a", DefaultLimits().MaxStringLength+100)
	got := SanitizeString(in, 0)

	if len(got) != DefaultLimits().MaxStringLength {
		t.Errorf("expected default limit %d, got length %d", DefaultLimits().MaxStringLength, len(got))
	}
}

// ---------------------------------------------------------------------------
// Test: sanitization is idempotent
// ---------------------------------------------------------------------------

func TestSanitizeString_Idempotent(t *testing.T) {
	inputs := []string{
		`hello <world> & "friends"`,
		"plain text",
		"\x01\x02mixed\x7fcontent<>",
		strings.Repeat("x", 500),
	}

	for _, in := range inputs {
		once := SanitizeString(in, 100)
		twice := SanitizeString(once, 100)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

// ---------------------------------------------------------------------------
// Test: player name normalization
// ---------------------------------------------------------------------------

func TestSanitizePlayerName(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"empty", "", AnonymousName},
		{"whitespace_only", "   ", AnonymousName},
		{"collapses_runs", "  a   b  ", "a b"},
		{"plain", "Alice", "Alice"},
		{"strips_and_falls_back", `<>&"'`, AnonymousName},
		{"non_string", 12345, AnonymousName},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizePlayerName(tc.in); got != tc.want {
				t.Errorf("SanitizePlayerName(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizePlayerName_NeverEmptyNeverLong(t *testing.T) {
	inputs := []any{
		strings.Repeat("verylongname", 10),
		"     spaced      out      name      ",
		nil,
		"<<<>>>",
	}

	for _, in := range inputs {
		got := SanitizePlayerName(in)
		if got == "" {
			t.Errorf("SanitizePlayerName(%v) returned empty string", in)
		}
		if n := utf8.RuneCountInString(got); n > MaxPlayerNameLength {
			t.Errorf("SanitizePlayerName(%v) = %q exceeds %d characters (%d)", in, got, MaxPlayerNameLength, n)
		}
	}
}
