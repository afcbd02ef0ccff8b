package ports

import (
	"context"

	"github.com/civicdesk/issue-tracker/internal/core/domain"
)

// AuthService handles account registration and login for the surrounding
// system. Trust decisions (which routes require which role) live in the
// transport layer.
type AuthService interface {
	Register(ctx context.Context, name, email, password, role string) (*domain.User, error)
	// Login returns a signed token and the authenticated user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
