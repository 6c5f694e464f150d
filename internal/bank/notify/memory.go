package notify

import (
	"context"
	"sync"
)

// MemoryNotifier keeps delivered messages in memory. Set Err to make every
// delivery fail.
type MemoryNotifier struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{}
}

func (n *MemoryNotifier) Deliver(ctx context.Context, msg Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.Err != nil {
		return n.Err
	}
	n.messages = append(n.messages, msg)
	return nil
}

func (n *MemoryNotifier) Describe() string { return "memory" }

// Last returns the most recent message for username.
func (n *MemoryNotifier) Last(username string) (Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i := len(n.messages) - 1; i >= 0; i-- {
		if n.messages[i].Username == username {
			return n.messages[i], true
		}
	}
	return Message{}, false
}

// Messages returns a copy of everything delivered so far.
func (n *MemoryNotifier) Messages() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]Message(nil), n.messages...)
}
