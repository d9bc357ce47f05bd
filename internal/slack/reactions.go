package slack

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ReactionEvent is the structure received from slack-forwarder via NATS.
type ReactionEvent struct {
	Reaction  string `json:"reaction"`
	UserID    string `json:"user_id"`
	Channel   string `json:"channel"`
	MessageTS string `json:"message_ts"`
}

// ReviewVerdict is a reviewer's judgement of a generated reply.
type ReviewVerdict string

const (
	VerdictApproved ReviewVerdict = "approved"
	VerdictRejected ReviewVerdict = "rejected"
	VerdictSkipped  ReviewVerdict = "skipped"
	VerdictUnknown  ReviewVerdict = "unknown"
)

// ParseReaction converts a Slack reaction emoji name to a review verdict.
// Skin-tone suffixes such as "+1::skin-tone-2" are ignored.
func ParseReaction(reaction string) ReviewVerdict {
	if i := strings.Index(reaction, "::"); i >= 0 {
		reaction = reaction[:i]
	}
	switch reaction {
	case "+1", "thumbsup", "white_check_mark":
		return VerdictApproved
	case "-1", "thumbsdown", "x":
		return VerdictRejected
	case "shrug":
		return VerdictSkipped
	default:
		return VerdictUnknown
	}
}

// ParseReactionEvent parses a slack-forwarder payload. The forwarder wraps
// fields in a metadata map.
func ParseReactionEvent(data []byte) (*ReactionEvent, error) {
	var wrapper struct {
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse reaction wrapper: %w", err)
	}

	evt := &ReactionEvent{
		Reaction:  strings.Trim(wrapper.Metadata["text"], ":"),
		UserID:    wrapper.Metadata["user_id"],
		Channel:   wrapper.Metadata["channel_id"],
		MessageTS: wrapper.Metadata["message_ts"],
	}
	if evt.MessageTS == "" {
		return nil, fmt.Errorf("reaction event without message_ts")
	}
	return evt, nil
}
