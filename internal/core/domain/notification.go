// Package domain holds the value types shared across dispatchd.
package domain

import "time"

// Target identifies one configured webhook destination.
type Target struct {
	Name    string
	URL     string
	Channel string
}

// Message is the notification content before payload assembly.
type Message struct {
	Channel   string `json:"channel,omitempty"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
	Header    string `json:"header,omitempty"`
	Text      string `json:"text,omitempty"`
}

// Delivery is one accepted notification bound to a target, identified for
// tracking through the queue and logs.
type Delivery struct {
	ID         string    `json:"id"`
	Target     string    `json:"target"`
	Message    Message   `json:"message"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
