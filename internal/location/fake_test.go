// ABOUTME: Deterministic fake platform and recording notifier for tests
// ABOUTME: Fixes and watch events are delivered only when the test says so

package location

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/harper/hazardwatch/internal/models"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// fakePlatform answers CurrentPosition with fix/err and records watches.
type fakePlatform struct {
	mu    sync.Mutex
	fix   models.Position
	err   error
	calls int

	// block, when set, makes CurrentPosition wait for a value or ctx.
	entered chan struct{}
	block   chan struct{}

	onFix   func(models.Position)
	onErr   func(error)
	watches int
	stopped int
}

func (p *fakePlatform) CurrentPosition(ctx context.Context, _ Options) (models.Position, error) {
	p.mu.Lock()
	p.calls++
	fix, err, block, entered := p.fix, p.err, p.block, p.entered
	p.entered = nil
	p.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return models.Position{}, ctx.Err()
		}
	}
	return fix, err
}

func (p *fakePlatform) WatchPosition(_ Options, onFix func(models.Position), onErr func(error)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onFix, p.onErr = onFix, onErr
	p.watches++
	return func() {
		p.mu.Lock()
		p.stopped++
		p.onFix, p.onErr = nil, nil
		p.mu.Unlock()
	}
}

func (p *fakePlatform) emit(pos models.Position) {
	p.mu.Lock()
	fn := p.onFix
	p.mu.Unlock()
	if fn != nil {
		fn(pos)
	}
}

func (p *fakePlatform) emitErr(err error) {
	p.mu.Lock()
	fn := p.onErr
	p.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (p *fakePlatform) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// queryingPlatform also reports its permission state.
type queryingPlatform struct {
	*fakePlatform
	state   models.PermissionState
	err     error
	queries int
}

func (p *queryingPlatform) QueryPermission(context.Context) (models.PermissionState, error) {
	p.queries++
	return p.state, p.err
}

// recordingNotifier collects messages.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) NotifyError(message string) {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	n.mu.Unlock()
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}
