// Package notify delivers one-time login codes over a channel separate from
// the terminal the user types into.
package notify

import (
	"context"
	"fmt"
	"time"
)

// Message is one code delivery. Code is the only place the plaintext
// one-time code ever lives outside the caller's hands.
type Message struct {
	Username  string
	AttemptID string
	Code      string
	ExpiresAt time.Time
}

// Notifier hands a Message to an out-of-band channel.
type Notifier interface {
	Deliver(ctx context.Context, msg Message) error
	// Describe tells the user where to look for the code.
	Describe() string
}

func (m Message) body() string {
	return fmt.Sprintf("user=%s attempt=%s code=%s expires=%s\n",
		m.Username, m.AttemptID, m.Code, m.ExpiresAt.UTC().Format(time.RFC3339))
}
