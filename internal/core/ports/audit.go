package ports

import (
	"context"

	"github.com/civicdesk/issue-tracker/internal/core/domain"
)

// AuditRecorder persists issue events to the standalone audit stream.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.IssueEvent) error
}

// AuditSink accepts issue events for asynchronous recording. Enqueue never
// blocks the calling request beyond channel buffering and never reports
// failure: the audit stream is a best-effort mirror of the timeline.
type AuditSink interface {
	Enqueue(event domain.IssueEvent)
}
