package ports

import (
	"context"

	"github.com/civicdesk/issue-tracker/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// SetPremium flips the paid entitlement flag. Only payment reconciliation
	// may call this.
	SetPremium(ctx context.Context, email string, premium bool) error
	// CountPremium returns how many users currently hold the premium flag.
	CountPremium(ctx context.Context) (int64, error)
}
