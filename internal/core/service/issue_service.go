package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicdesk/issue-tracker/internal/core/domain"
	"github.com/civicdesk/issue-tracker/internal/core/ports"
)

const (
	defaultListPage  = 1
	defaultListLimit = 6
)

// IssueService implements the issue lifecycle: creation behind the free-tier
// quota, assignment, status transitions, edits, deletion and voting. Every
// status or priority change lands together with its timeline entry in a
// single atomic write, and is mirrored to the audit stream asynchronously.
type IssueService struct {
	issues ports.IssueRepository
	users  ports.UserRepository
	quota  *QuotaGuard
	audit  ports.AuditSink
	logger zerolog.Logger
}

func NewIssueService(
	issues ports.IssueRepository,
	users ports.UserRepository,
	quota *QuotaGuard,
	audit ports.AuditSink,
	logger zerolog.Logger,
) *IssueService {
	return &IssueService{issues: issues, users: users, quota: quota, audit: audit, logger: logger}
}

// Create reports a new issue. The reporter's premium flag is snapshotted onto
// the issue and does not change retroactively.
func (s *IssueService) Create(ctx context.Context, in ports.CreateIssueInput) (string, error) {
	if in.Title == "" {
		return "", fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if in.ReporterEmail == "" {
		return "", fmt.Errorf("%w: reporter email is required", domain.ErrValidation)
	}

	reporter, err := s.users.FindByEmail(ctx, in.ReporterEmail)
	if err != nil {
		return "", fmt.Errorf("create issue: %w", err)
	}

	if err := s.quota.CheckAndReserve(ctx, reporter); err != nil {
		s.logger.Info().Str("reporter", in.ReporterEmail).Msg("issue creation denied by quota")
		return "", err
	}

	priority := domain.PriorityNormal
	if in.Priority == string(domain.PriorityHigh) {
		priority = domain.PriorityHigh
	}

	seed := domain.NewTimelineEntry(string(domain.StatusPending), "Issue created", in.ReporterEmail)
	issue := &domain.Issue{
		Title:           in.Title,
		Description:     in.Description,
		ReporterEmail:   in.ReporterEmail,
		ReporterPremium: reporter.Premium,
		Category:        in.Category,
		Location:        in.Location,
		ImageURL:        in.ImageURL,
		Priority:        priority,
		Status:          domain.StatusPending,
		Upvotes:         []string{},
		Timeline:        []domain.TimelineEntry{seed},
		CreatedAt:       time.Now().UTC(),
	}

	id, err := s.issues.Insert(ctx, issue)
	if err != nil {
		s.logger.Error().Err(err).Str("reporter", in.ReporterEmail).Msg("failed to insert issue")
		return "", fmt.Errorf("create issue: %w", err)
	}

	s.mirror(id, seed)
	s.logger.Info().Str("issue_id", id).Str("reporter", in.ReporterEmail).Str("category", in.Category).Msg("issue created")
	return id, nil
}

func (s *IssueService) Get(ctx context.Context, id string) (*domain.Issue, error) {
	return s.issues.FindByID(ctx, id)
}

// List returns a filtered, newest-first page of issues. Absent or
// non-positive paging parameters fall back to page 1, six per page.
func (s *IssueService) List(ctx context.Context, in ports.ListIssuesInput) (*ports.ListIssuesResult, error) {
	page := in.Page
	if page <= 0 {
		page = defaultListPage
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	items, total, err := s.issues.List(ctx, ports.ListIssuesFilter{
		Category: in.Category,
		Status:   in.Status,
		Priority: in.Priority,
		Search:   in.Search,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	totalPages := int(total / int64(limit))
	if total%int64(limit) != 0 {
		totalPages++
	}

	return &ports.ListIssuesResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Edit patches descriptive fields. Issues under assignment or in a terminal
// state are immutable.
func (s *IssueService) Edit(ctx context.Context, id string, in ports.EditIssueInput) error {
	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if issue.Status != domain.StatusPending {
		return fmt.Errorf("%w: cannot edit issue in status %s", domain.ErrInvalidTransition, issue.Status)
	}

	entry := domain.NewTimelineEntry(domain.TimelineEdited, "Issue details edited", in.ActorEmail)
	if err := s.issues.UpdateFields(ctx, id, in.Patch, entry); err != nil {
		return fmt.Errorf("edit issue: %w", err)
	}

	s.mirror(id, entry)
	s.logger.Info().Str("issue_id", id).Str("by", in.ActorEmail).Msg("issue edited")
	return nil
}

// Delete removes an issue; only pending issues may be deleted.
func (s *IssueService) Delete(ctx context.Context, id string) error {
	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if issue.Status != domain.StatusPending {
		return fmt.Errorf("%w: cannot delete issue in status %s", domain.ErrInvalidTransition, issue.Status)
	}

	if err := s.issues.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	s.logger.Info().Str("issue_id", id).Msg("issue deleted")
	return nil
}

// Assign snapshots the staff member onto the issue and moves it to
// in-progress. Re-assignment of an in-progress issue is allowed; terminal
// issues reject assignment.
func (s *IssueService) Assign(ctx context.Context, id string, staff domain.StaffRef) error {
	if staff.Email == "" {
		return fmt.Errorf("%w: staff email is required", domain.ErrValidation)
	}

	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if issue.Status != domain.StatusPending && issue.Status != domain.StatusInProgress {
		return fmt.Errorf("%w: cannot assign issue in status %s", domain.ErrInvalidTransition, issue.Status)
	}

	entry := domain.NewTimelineEntry(domain.TimelineAssigned, "Assigned to "+staff.Name, "admin")
	if err := s.issues.SetAssignee(ctx, id, staff, domain.StatusInProgress, entry); err != nil {
		return fmt.Errorf("assign issue: %w", err)
	}

	s.mirror(id, entry)
	s.logger.Info().Str("issue_id", id).Str("staff", staff.Email).Msg("issue assigned")
	return nil
}

// ChangeStatus applies a state machine transition attributed to actor.
func (s *IssueService) ChangeStatus(ctx context.Context, id string, newStatus, actor string) error {
	next, ok := domain.ParseIssueStatus(newStatus)
	if !ok {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, newStatus)
	}

	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !issue.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, issue.Status, next)
	}

	entry := domain.NewTimelineEntry(string(next), "Status changed to "+string(next), actor)
	if err := s.issues.UpdateStatus(ctx, id, next, entry); err != nil {
		return fmt.Errorf("change status: %w", err)
	}

	s.mirror(id, entry)
	s.logger.Info().
		Str("issue_id", id).
		Str("from", string(issue.Status)).
		Str("to", string(next)).
		Str("by", actor).
		Msg("issue status changed")
	return nil
}

// Reject moves a pending issue to rejected. The transition table already
// restricts rejection to pending issues.
func (s *IssueService) Reject(ctx context.Context, id string, actor string) error {
	return s.ChangeStatus(ctx, id, string(domain.StatusRejected), actor)
}

// Upvote records one vote per voter. Reporters cannot vote for their own
// issues and blocked accounts cannot vote at all. Returns the new vote count.
func (s *IssueService) Upvote(ctx context.Context, id, voterEmail string) (int, error) {
	if voterEmail == "" {
		return 0, fmt.Errorf("%w: voter email is required", domain.ErrValidation)
	}

	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if issue.ReporterEmail == voterEmail {
		return 0, fmt.Errorf("%w: reporters cannot vote for their own issue", domain.ErrForbidden)
	}

	voter, err := s.users.FindByEmail(ctx, voterEmail)
	if err != nil {
		return 0, fmt.Errorf("upvote: %w", err)
	}
	if voter.Blocked() {
		return 0, fmt.Errorf("%w: account is blocked", domain.ErrForbidden)
	}

	if issue.HasVote(voterEmail) {
		return 0, domain.ErrDuplicateVote
	}

	// The store adds to the set only if absent, so a concurrent duplicate
	// cannot slip past the check above.
	if err := s.issues.AddVote(ctx, id, voterEmail); err != nil {
		return 0, fmt.Errorf("upvote: %w", err)
	}

	count := len(issue.Upvotes) + 1
	s.logger.Info().Str("issue_id", id).Str("voter", voterEmail).Int("votes", count).Msg("issue upvoted")
	return count, nil
}

// mirror forwards a timeline entry to the audit stream. Best effort: the
// embedded timeline is authoritative.
func (s *IssueService) mirror(issueID string, entry domain.TimelineEntry) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(domain.IssueEvent{
		IssueID: issueID,
		Status:  entry.Status,
		Message: entry.Message,
		By:      entry.By,
		At:      entry.At,
	})
}
