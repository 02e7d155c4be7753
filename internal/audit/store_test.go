package audit

import (
	"context"
	"strings"
	"testing"
)

func TestExtractGameID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"valid payload", `{"type":"CHAT","gameId":"ABC_123456","text":"hi"}`, "ABC_123456"},
		{"missing gameId", `{"type":"PING"}`, ""},
		{"gameId not a string", `{"gameId":42}`, ""},
		{"not json", `not json at all`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractGameID([]byte(tt.raw)); got != tt.want {
				t.Errorf("ExtractGameID(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCreate_RejectsUnknownReason(t *testing.T) {
	store := NewStore(nil, nil)

	err := store.Create(context.Background(), &Record{
		SessionID: "s1",
		Reason:    "mood",
	})
	if err == nil {
		t.Fatal("expected error for unknown reason")
	}
	if !strings.Contains(err.Error(), "invalid reason") {
		t.Errorf("unexpected error: %v", err)
	}
}
