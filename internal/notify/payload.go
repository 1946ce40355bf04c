package notify

import (
	"strings"

	"github.com/dispatchd/dispatchd/internal/core/domain"
)

// Payload is the Slack-compatible message body posted to a webhook.
type Payload struct {
	Channel   string  `json:"channel,omitempty"`
	Username  string  `json:"username,omitempty"`
	IconEmoji string  `json:"icon_emoji,omitempty"`
	Text      string  `json:"text,omitempty"`
	Blocks    []Block `json:"blocks,omitempty"`
}

// Block is one element of a rich message layout.
type Block struct {
	Type string     `json:"type"`
	Text *BlockText `json:"text,omitempty"`
}

// BlockText is the textual content of a block.
type BlockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// BuildPayload merges a message with the target's routing defaults. The
// channel is normalized to the "#name" form the webhook expects. A message
// with a header renders as header/divider/section blocks.
func BuildPayload(target domain.Target, msg domain.Message) Payload {
	channel := msg.Channel
	if channel == "" {
		channel = target.Channel
	}
	if channel != "" && !strings.HasPrefix(channel, "#") {
		channel = "#" + channel
	}

	p := Payload{
		Channel:   channel,
		Username:  msg.Username,
		IconEmoji: msg.IconEmoji,
	}

	if msg.Header != "" {
		p.Blocks = []Block{
			{Type: "header", Text: &BlockText{Type: "plain_text", Text: msg.Header}},
			{Type: "divider"},
			{Type: "section", Text: &BlockText{Type: "mrkdwn", Text: msg.Text}},
		}
		return p
	}

	p.Text = msg.Text
	return p
}
