package slack

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseReaction(t *testing.T) {
	tests := []struct {
		name     string
		reaction string
		want     ReviewVerdict
	}{
		{"thumbsup", "+1", VerdictApproved},
		{"thumbsup alt", "thumbsup", VerdictApproved},
		{"check mark", "white_check_mark", VerdictApproved},
		{"skin tone", "+1::skin-tone-3", VerdictApproved},
		{"thumbsdown", "-1", VerdictRejected},
		{"thumbsdown alt", "thumbsdown", VerdictRejected},
		{"cross", "x", VerdictRejected},
		{"shrug", "shrug", VerdictSkipped},
		{"unknown reaction", "heart", VerdictUnknown},
		{"empty", "", VerdictUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReaction(tt.reaction)
			if got != tt.want {
				t.Errorf("ParseReaction(%q) = %q, want %q", tt.reaction, got, tt.want)
			}
		})
	}
}

func TestParseReactionEvent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want ReactionEvent
	}{
		{"colon wrapped", ":+1:", ReactionEvent{Reaction: "+1", UserID: "U123", Channel: "C456", MessageTS: "1718000000.000100"}},
		{"bare name", "shrug", ReactionEvent{Reaction: "shrug", UserID: "U123", Channel: "C456", MessageTS: "1718000000.000100"}},
		{"skin tone suffix", ":-1::skin-tone-4:", ReactionEvent{Reaction: "-1::skin-tone-4", UserID: "U123", Channel: "C456", MessageTS: "1718000000.000100"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, _ := json.Marshal(map[string]any{"metadata": map[string]string{
				"text":       tt.text,
				"user_id":    "U123",
				"channel_id": "C456",
				"message_ts": "1718000000.000100",
			}})

			evt, err := ParseReactionEvent(payload)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *evt != tt.want {
				t.Errorf("event = %+v, want %+v", *evt, tt.want)
			}
		})
	}
}

func TestParseReactionEvent_Invalid(t *testing.T) {
	if _, err := ParseReactionEvent([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := ParseReactionEvent([]byte(`{"metadata":{"text":"+1"}}`)); err == nil {
		t.Error("expected error for missing message_ts")
	}
}
