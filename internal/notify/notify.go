// ABOUTME: User-facing error notification sinks
// ABOUTME: Terminal toast output and fan-out to several sinks

package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Notifier receives user-facing error messages.
type Notifier interface {
	NotifyError(message string)
}

// Terminal prints messages to a writer, red and prefixed, like a toast.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminal creates a terminal sink. A nil writer means stderr.
func NewTerminal(w io.Writer) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	return &Terminal{w: w}
}

// NotifyError implements Notifier.
func (t *Terminal) NotifyError(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%s %s\n", color.RedString("✗"), message)
}

// Multi delivers every message to each sink in order.
type Multi []Notifier

// NotifyError implements Notifier.
func (m Multi) NotifyError(message string) {
	for _, n := range m {
		if n != nil {
			n.NotifyError(message)
		}
	}
}
