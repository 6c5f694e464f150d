package notify

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/dmitrijs2005/securebank/internal/filex"
)

// FileNotifier appends codes to an outbox file readable only by its owner.
// The file and its directory are created on first delivery.
type FileNotifier struct {
	mu   sync.Mutex
	path string
}

func NewFileNotifier(path string) *FileNotifier {
	return &FileNotifier{path: path}
}

func (n *FileNotifier) Deliver(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := filex.EnsureParentDir(n.path); err != nil {
		return fmt.Errorf("outbox dir: %w", err)
	}

	f, err := os.OpenFile(n.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open outbox: %w", err)
	}

	if _, err := f.WriteString(msg.body()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write outbox: %w", err)
	}

	return f.Close()
}

func (n *FileNotifier) Describe() string {
	return fmt.Sprintf("outbox file %s", n.path)
}
