package service

import (
	"context"
	"fmt"

	"github.com/civicdesk/issue-tracker/internal/core/domain"
	"github.com/civicdesk/issue-tracker/internal/core/ports"
)

const defaultFreeIssueLimit = 3

// QuotaGuard caps free-tier issue creation. Premium reporters are never
// limited; everyone else may hold at most `limit` issues.
//
// The count-then-insert sequence is not atomic against the store: two
// concurrent creations by the same reporter can both observe limit-1 and both
// pass. The store only guarantees single-document atomicity, and the count
// spans documents, so the cap is eventual under concurrency. Callers that
// need a hard cap must serialize creation per reporter.
type QuotaGuard struct {
	issues ports.IssueRepository
	limit  int64
}

// NewQuotaGuard builds a guard; a non-positive limit falls back to the default.
func NewQuotaGuard(issues ports.IssueRepository, limit int64) *QuotaGuard {
	if limit <= 0 {
		limit = defaultFreeIssueLimit
	}
	return &QuotaGuard{issues: issues, limit: limit}
}

// CheckAndReserve decides whether the reporter may create another issue.
// Returns nil to allow, domain.ErrQuotaExceeded to deny.
func (g *QuotaGuard) CheckAndReserve(ctx context.Context, reporter *domain.User) error {
	if reporter.Premium {
		return nil
	}

	n, err := g.issues.CountByReporter(ctx, reporter.Email)
	if err != nil {
		return fmt.Errorf("quota count: %w", err)
	}
	if n >= g.limit {
		return domain.ErrQuotaExceeded
	}
	return nil
}
