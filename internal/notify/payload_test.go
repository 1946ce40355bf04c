package notify

import (
	"testing"

	"github.com/dispatchd/dispatchd/internal/core/domain"
)

func TestBuildPayload_ChannelNormalization(t *testing.T) {
	target := domain.Target{Name: "alerts", Channel: "oncall"}

	tests := []struct {
		name    string
		msg     domain.Message
		channel string
	}{
		{"target default", domain.Message{Text: "hi"}, "#oncall"},
		{"message override", domain.Message{Channel: "budget", Text: "hi"}, "#budget"},
		{"already prefixed", domain.Message{Channel: "#budget", Text: "hi"}, "#budget"},
		{"no channel anywhere", domain.Message{Text: "hi"}, "#oncall"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPayload(target, tt.msg)
			if p.Channel != tt.channel {
				t.Errorf("channel = %q, want %q", p.Channel, tt.channel)
			}
		})
	}

	if p := BuildPayload(domain.Target{Name: "bare"}, domain.Message{Text: "hi"}); p.Channel != "" {
		t.Errorf("no configured channel should stay empty, got %q", p.Channel)
	}
}

func TestBuildPayload_HeaderRendersBlocks(t *testing.T) {
	target := domain.Target{Name: "alerts", Channel: "oncall"}
	msg := domain.Message{Header: "Budget Performance", Text: "This is the text"}

	p := BuildPayload(target, msg)
	if p.Text != "" {
		t.Errorf("block layout should not set top-level text, got %q", p.Text)
	}
	if len(p.Blocks) != 3 {
		t.Fatalf("expected header/divider/section blocks, got %d", len(p.Blocks))
	}
	if p.Blocks[0].Type != "header" || p.Blocks[0].Text.Text != "Budget Performance" {
		t.Errorf("unexpected header block: %+v", p.Blocks[0])
	}
	if p.Blocks[1].Type != "divider" {
		t.Errorf("expected divider, got %s", p.Blocks[1].Type)
	}
	if p.Blocks[2].Type != "section" || p.Blocks[2].Text.Type != "mrkdwn" {
		t.Errorf("unexpected section block: %+v", p.Blocks[2])
	}
}

func TestBuildPayload_PlainText(t *testing.T) {
	p := BuildPayload(
		domain.Target{Name: "alerts", Channel: "oncall"},
		domain.Message{Username: "dispatchd", IconEmoji: ":robot_face:", Text: "hello"},
	)
	if p.Text != "hello" || p.Username != "dispatchd" || p.IconEmoji != ":robot_face:" {
		t.Errorf("unexpected payload: %+v", p)
	}
	if len(p.Blocks) != 0 {
		t.Errorf("plain message should have no blocks, got %d", len(p.Blocks))
	}
}
