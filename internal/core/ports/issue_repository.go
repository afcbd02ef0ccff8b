package ports

import (
	"context"

	"github.com/civicdesk/issue-tracker/internal/core/domain"
)

// ListIssuesFilter carries all query parameters for listing issues.
type ListIssuesFilter struct {
	Category string // optional: exact match
	Status   string // optional: exact match
	Priority string // optional: exact match
	Search   string // optional: case-insensitive substring over title/location/category
	Page     int    // 1-based
	Limit    int    // rows per page
}

// IssueFieldPatch holds the mutable descriptive fields of an issue.
// Nil pointers mean "leave unchanged". Status, priority, votes and the
// timeline are never edited through a patch.
type IssueFieldPatch struct {
	Title       *string
	Description *string
	Category    *string
	Location    *string
	ImageURL    *string
}

// IssueRepository defines persistence operations for issues. Each mutation is
// a single-document atomic update: the status/priority write and its timeline
// append land together or not at all.
type IssueRepository interface {
	// Insert stores a new issue and returns its generated identifier.
	Insert(ctx context.Context, issue *domain.Issue) (string, error)
	FindByID(ctx context.Context, id string) (*domain.Issue, error)
	// CountByReporter returns how many issues the reporter has created.
	CountByReporter(ctx context.Context, reporterEmail string) (int64, error)
	// UpdateFields patches descriptive fields and appends the edit entry atomically.
	UpdateFields(ctx context.Context, id string, patch IssueFieldPatch, entry domain.TimelineEntry) error
	Delete(ctx context.Context, id string) error
	// SetAssignee stores the staff snapshot, moves the status and appends the
	// assignment entry in one write.
	SetAssignee(ctx context.Context, id string, staff domain.StaffRef, status domain.IssueStatus, entry domain.TimelineEntry) error
	// UpdateStatus moves the status and appends the transition entry in one write.
	UpdateStatus(ctx context.Context, id string, status domain.IssueStatus, entry domain.TimelineEntry) error
	// AddVote adds the voter to the upvote set if absent (set semantics are
	// enforced by the store, not by the caller).
	AddVote(ctx context.Context, id, voterEmail string) error
	// SetPriority escalates the priority and appends the boost entry in one write.
	SetPriority(ctx context.Context, id string, priority domain.IssuePriority, entry domain.TimelineEntry) error
	// List returns a page of issues matching filter, newest first, plus the
	// total matching count.
	List(ctx context.Context, filter ListIssuesFilter) ([]*domain.Issue, int64, error)
}
