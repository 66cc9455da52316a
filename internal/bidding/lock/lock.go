// Package lock serialises work per listing. Memory is a keyed mutex for a
// single process; Redis coordinates several instances.
package lock

import (
	"context"
	"time"
)

// Release gives the lock back. It is safe to call once.
type Release func(ctx context.Context) error

// DefaultWait bounds how long Acquire blocks when ctx has no deadline.
const DefaultWait = 5 * time.Second

func waitContext(ctx context.Context, wait time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || wait <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, wait)
}
