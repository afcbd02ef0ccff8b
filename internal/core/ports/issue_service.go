package ports

import (
	"context"

	"github.com/civicdesk/issue-tracker/internal/core/domain"
)

// CreateIssueInput carries all data needed to report a new issue.
type CreateIssueInput struct {
	ReporterEmail string
	Title         string
	Description   string
	Category      string
	Location      string
	ImageURL      string
	Priority      string // optional; defaults to normal
}

// EditIssueInput patches descriptive fields while the issue is still pending.
type EditIssueInput struct {
	Patch      IssueFieldPatch
	ActorEmail string
}

// ListIssuesInput carries all parameters for the list endpoint.
type ListIssuesInput struct {
	Category string
	Status   string
	Priority string
	Search   string
	Page     int
	Limit    int
}

// ListIssuesResult is returned by List.
type ListIssuesResult struct {
	Items      []*domain.Issue
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// IssueService defines the lifecycle use cases for issues.
type IssueService interface {
	// Create reports a new issue, subject to the free-tier quota.
	Create(ctx context.Context, in CreateIssueInput) (string, error)
	Get(ctx context.Context, id string) (*domain.Issue, error)
	List(ctx context.Context, in ListIssuesInput) (*ListIssuesResult, error)
	// Edit patches descriptive fields; only valid while status is pending.
	Edit(ctx context.Context, id string, in EditIssueInput) error
	// Delete removes an issue; only valid while status is pending.
	Delete(ctx context.Context, id string) error
	// Assign snapshots the staff member and moves the issue to in-progress.
	Assign(ctx context.Context, id string, staff domain.StaffRef) error
	// ChangeStatus applies a state machine transition attributed to actor.
	ChangeStatus(ctx context.Context, id string, newStatus, actor string) error
	// Reject moves a pending issue to rejected.
	Reject(ctx context.Context, id string, actor string) error
	// Upvote records one vote per voter and returns the new vote count.
	Upvote(ctx context.Context, id, voterEmail string) (int, error)
}
