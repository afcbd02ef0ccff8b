package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/civicdesk/issue-tracker/internal/core/domain"
	"github.com/civicdesk/issue-tracker/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher mirrors timeline entries to the audit collection asynchronously.
// Events are sharded across a fixed set of workers by issue id, so events for
// a single issue are recorded in enqueue order while requests never wait on
// the audit write.
type Dispatcher struct {
	workers  []chan domain.IssueEvent
	recorder ports.AuditRecorder
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recorder ports.AuditRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.IssueEvent, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.IssueEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its issue. It never
// blocks the caller: when a shard's buffer is full (workers stopped or
// falling behind) the event is dropped and logged. The embedded timeline is
// the authoritative record; the audit mirror is best effort.
func (d *Dispatcher) Enqueue(event domain.IssueEvent) {
	select {
	case d.workers[d.shardIndex(event.IssueID)] <- event:
	default:
		d.log.Warn().
			Str("issue_id", event.IssueID).
			Str("status", event.Status).
			Msg("audit event dropped, worker queue full")
	}
}

// shardIndex maps an issue id deterministically to a worker index.
func (d *Dispatcher) shardIndex(issueID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(issueID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.IssueEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.recorder.Record(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("issue_id", event.IssueID).
					Int("worker_id", id).
					Msg("audit event recording failed")
			}
		}
	}
}
