// ABOUTME: Shared helpers for polling platforms
// ABOUTME: Fix cache honouring MaximumAge and a sequential watch loop

package platform

import (
	"context"
	"sync"
	"time"

	"github.com/harper/hazardwatch/internal/location"
	"github.com/harper/hazardwatch/internal/models"
)

// fixCache remembers the last fix so requests with a MaximumAge can reuse it.
type fixCache struct {
	mu  sync.Mutex
	fix models.Position
	at  time.Time
	now func() time.Time
}

func (c *fixCache) get(maxAge time.Duration) (models.Position, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.at.IsZero() || maxAge <= 0 {
		return models.Position{}, false
	}
	if c.clock()().Sub(c.at) > maxAge {
		return models.Position{}, false
	}
	return c.fix, true
}

func (c *fixCache) put(fix models.Position) {
	c.mu.Lock()
	c.fix = fix
	c.at = c.clock()()
	c.mu.Unlock()
}

func (c *fixCache) clock() func() time.Time {
	if c.now != nil {
		return c.now
	}
	return time.Now
}

type fetchFunc func(ctx context.Context, opts location.Options) (models.Position, error)

// pollWatch calls fetch immediately and then every interval until stopped.
// Callbacks run on the polling goroutine, one at a time, in order. The
// returned func waits for the goroutine to exit, so no callback runs after
// it returns; it must not be called from a callback.
func pollWatch(interval time.Duration, opts location.Options, fetch fetchFunc, onFix func(models.Position), onErr func(error)) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			reqCtx, reqCancel := context.WithTimeout(ctx, opts.Timeout)
			pos, err := fetch(reqCtx, opts)
			reqCancel()

			if ctx.Err() != nil {
				return
			}
			if err != nil {
				onErr(err)
			} else {
				onFix(pos)
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
