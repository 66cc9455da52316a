package audit

import (
	"context"
	"log/slog"
	"sync/atomic"

	"maklarsystem/pkg/requestcontext"
)

// DefaultBuffer is the queue depth used when NewPublisher gets zero.
const DefaultBuffer = 1024

// Publisher queues events for Worker. Emit never blocks the caller: when the
// queue is full the event is dropped and counted.
type Publisher struct {
	queue   chan Event
	logger  *slog.Logger
	dropped atomic.Int64
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		queue:  make(chan Event, buffer),
		logger: logger,
	}
}

// Emit stamps the event with the request time and id from ctx and queues it.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case p.queue <- event:
	default:
		p.dropped.Add(1)
		p.logger.WarnContext(ctx, "audit queue full, event dropped",
			"action", event.Action,
			"bid_id", event.BidID,
		)
	}
}

// Dropped reports how many events were discarded on a full queue.
func (p *Publisher) Dropped() int64 { return p.dropped.Load() }

// Events is the queue Worker drains.
func (p *Publisher) Events() <-chan Event { return p.queue }
