package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/civicdesk/issue-tracker/internal/core/domain"
	"github.com/civicdesk/issue-tracker/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub issue repository
// ---------------------------------------------------------------------------

type stubIssueRepo struct {
	byID      map[string]*domain.Issue
	seq       int
	insertErr error // if set, Insert returns this error
	updateErr error // if set, mutations return this error
}

func newStubIssueRepo() *stubIssueRepo {
	return &stubIssueRepo{byID: make(map[string]*domain.Issue)}
}

func (r *stubIssueRepo) Insert(_ context.Context, issue *domain.Issue) (string, error) {
	if r.insertErr != nil {
		return "", r.insertErr
	}
	r.seq++
	issue.ID = fmt.Sprintf("issue-%d", r.seq)
	clone := cloneIssue(issue)
	r.byID[issue.ID] = clone
	return issue.ID, nil
}

func (r *stubIssueRepo) FindByID(_ context.Context, id string) (*domain.Issue, error) {
	issue, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}
	return cloneIssue(issue), nil
}

func (r *stubIssueRepo) CountByReporter(_ context.Context, reporterEmail string) (int64, error) {
	var n int64
	for _, issue := range r.byID {
		if issue.ReporterEmail == reporterEmail {
			n++
		}
	}
	return n, nil
}

func (r *stubIssueRepo) UpdateFields(_ context.Context, id string, patch ports.IssueFieldPatch, entry domain.TimelineEntry) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	issue, ok := r.byID[id]
	if !ok {
		return domain.ErrIssueNotFound
	}
	if patch.Title != nil {
		issue.Title = *patch.Title
	}
	if patch.Description != nil {
		issue.Description = *patch.Description
	}
	if patch.Category != nil {
		issue.Category = *patch.Category
	}
	if patch.Location != nil {
		issue.Location = *patch.Location
	}
	if patch.ImageURL != nil {
		issue.ImageURL = *patch.ImageURL
	}
	issue.Timeline = append(issue.Timeline, entry)
	return nil
}

func (r *stubIssueRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrIssueNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubIssueRepo) SetAssignee(_ context.Context, id string, staff domain.StaffRef, status domain.IssueStatus, entry domain.TimelineEntry) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	issue, ok := r.byID[id]
	if !ok {
		return domain.ErrIssueNotFound
	}
	staffCopy := staff
	issue.AssignedStaff = &staffCopy
	issue.Status = status
	issue.Timeline = append(issue.Timeline, entry)
	return nil
}

func (r *stubIssueRepo) UpdateStatus(_ context.Context, id string, status domain.IssueStatus, entry domain.TimelineEntry) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	issue, ok := r.byID[id]
	if !ok {
		return domain.ErrIssueNotFound
	}
	issue.Status = status
	issue.Timeline = append(issue.Timeline, entry)
	return nil
}

// AddVote mirrors the real repo's $addToSet semantics.
func (r *stubIssueRepo) AddVote(_ context.Context, id, voterEmail string) error {
	issue, ok := r.byID[id]
	if !ok {
		return domain.ErrIssueNotFound
	}
	if issue.HasVote(voterEmail) {
		return domain.ErrDuplicateVote
	}
	issue.Upvotes = append(issue.Upvotes, voterEmail)
	return nil
}

func (r *stubIssueRepo) SetPriority(_ context.Context, id string, priority domain.IssuePriority, entry domain.TimelineEntry) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	issue, ok := r.byID[id]
	if !ok {
		return domain.ErrIssueNotFound
	}
	issue.Priority = priority
	issue.Timeline = append(issue.Timeline, entry)
	return nil
}

// List applies the same filters the real Mongo repo would use.
func (r *stubIssueRepo) List(_ context.Context, f ports.ListIssuesFilter) ([]*domain.Issue, int64, error) {
	var matched []*domain.Issue
	for _, issue := range r.byID {
		if f.Category != "" && issue.Category != f.Category {
			continue
		}
		if f.Status != "" && string(issue.Status) != f.Status {
			continue
		}
		if f.Priority != "" && string(issue.Priority) != f.Priority {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			titleMatch := strings.Contains(strings.ToLower(issue.Title), needle)
			locationMatch := strings.Contains(strings.ToLower(issue.Location), needle)
			categoryMatch := strings.Contains(strings.ToLower(issue.Category), needle)
			if !titleMatch && !locationMatch && !categoryMatch {
				continue
			}
		}
		matched = append(matched, cloneIssue(issue))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))

	skip := (f.Page - 1) * f.Limit
	if skip < 0 {
		skip = 0
	}
	if skip > len(matched) {
		return []*domain.Issue{}, total, nil
	}
	end := skip + f.Limit
	if f.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func cloneIssue(i *domain.Issue) *domain.Issue {
	clone := *i
	if i.Upvotes != nil {
		clone.Upvotes = append([]string{}, i.Upvotes...)
	}
	if i.Timeline != nil {
		clone.Timeline = append([]domain.TimelineEntry{}, i.Timeline...)
	}
	if i.AssignedStaff != nil {
		staff := *i.AssignedStaff
		clone.AssignedStaff = &staff
	}
	return &clone
}

// ---------------------------------------------------------------------------
// In-memory stub user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byEmail    map[string]*domain.User
	premiumErr error // if set, SetPremium returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *stubUserRepo) add(user *domain.User) {
	clone := *user
	r.byEmail[user.Email] = &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, domain.ErrUserExists
	}
	r.add(user)
	clone := *user
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *stubUserRepo) SetPremium(_ context.Context, email string, premium bool) error {
	if r.premiumErr != nil {
		return r.premiumErr
	}
	user, ok := r.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Premium = premium
	return nil
}

func (r *stubUserRepo) CountPremium(_ context.Context) (int64, error) {
	var n int64
	for _, user := range r.byEmail {
		if user.Premium {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// In-memory stub payment repository
// ---------------------------------------------------------------------------

type stubPaymentRepo struct {
	byUser      map[string]*domain.PaymentRecord
	upsertCalls int
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{byUser: make(map[string]*domain.PaymentRecord)}
}

func (r *stubPaymentRepo) FindByUser(_ context.Context, userEmail string) (*domain.PaymentRecord, error) {
	rec, ok := r.byUser[userEmail]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *stubPaymentRepo) UpsertByUser(_ context.Context, rec *domain.PaymentRecord) error {
	r.upsertCalls++
	clone := *rec
	r.byUser[rec.UserEmail] = &clone
	return nil
}

func (r *stubPaymentRepo) TotalPaid(_ context.Context) (int64, error) {
	var total int64
	for _, rec := range r.byUser {
		if rec.Status == domain.PaymentPaid {
			total += rec.Amount
		}
	}
	return total, nil
}

// ---------------------------------------------------------------------------
// Stub checkout gateway and replay guard
// ---------------------------------------------------------------------------

type stubGateway struct {
	seq        int
	lastParams ports.CheckoutParams
	err        error
}

func (g *stubGateway) CreateSession(_ context.Context, params ports.CheckoutParams) (*ports.CheckoutSession, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.seq++
	g.lastParams = params
	return &ports.CheckoutSession{
		ID:  fmt.Sprintf("sess_%d", g.seq),
		URL: fmt.Sprintf("https://pay.example.com/c/sess_%d", g.seq),
	}, nil
}

type stubReplayGuard struct {
	mu      sync.Mutex
	seen    map[string]bool
	seenErr error // if set, Seen returns this error (guard down)
	markErr error
}

func newStubReplayGuard() *stubReplayGuard {
	return &stubReplayGuard{seen: make(map[string]bool)}
}

func (g *stubReplayGuard) Seen(_ context.Context, sessionRef string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seenErr != nil {
		return false, g.seenErr
	}
	return g.seen[sessionRef], nil
}

func (g *stubReplayGuard) Mark(_ context.Context, sessionRef string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.markErr != nil {
		return g.markErr
	}
	g.seen[sessionRef] = true
	return nil
}

// ---------------------------------------------------------------------------
// Recording audit sink
// ---------------------------------------------------------------------------

type recordingAuditSink struct {
	mu     sync.Mutex
	events []domain.IssueEvent
}

func (s *recordingAuditSink) Enqueue(event domain.IssueEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingAuditSink) all() []domain.IssueEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.IssueEvent(nil), s.events...)
}
