package ports

import (
	"context"

	"github.com/civicdesk/issue-tracker/internal/core/domain"
)

// PaymentRepository defines persistence for the payment ledger. The ledger is
// keyed by user email: UpsertByUser replaces any previous record for the same
// user rather than appending.
type PaymentRepository interface {
	FindByUser(ctx context.Context, userEmail string) (*domain.PaymentRecord, error)
	UpsertByUser(ctx context.Context, rec *domain.PaymentRecord) error
	// TotalPaid sums the amounts of all records with status paid.
	TotalPaid(ctx context.Context) (int64, error)
}

// CheckoutParams is the request the external payment gateway needs to open a
// hosted checkout session.
type CheckoutParams struct {
	Amount        int64 // minor units
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the opaque handle returned by the gateway.
type CheckoutSession struct {
	ID  string // gateway-defined session reference
	URL string // hosted checkout page the caller is redirected to
}

// CheckoutGateway abstracts the external payment provider. Only session
// creation is needed here; settlement confirmations arrive out of band at
// the ConfirmPayment entrypoint.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
}

// ConfirmPaymentInput is the confirmation contract the gateway must satisfy.
type ConfirmPaymentInput struct {
	UserEmail      string
	SessionRef     string
	BoostedIssueID string // optional: set when the purchase was a priority boost
}

// RevenueSummary aggregates the paid ledger.
type RevenueSummary struct {
	TotalRevenue int64
	PremiumUsers int64
}

// PaymentService reconciles external payment confirmations into durable
// entitlement state.
type PaymentService interface {
	// RequestPremiumCheckout opens a premium checkout and returns the redirect URL.
	RequestPremiumCheckout(ctx context.Context, userEmail string) (string, error)
	// RequestBoostCheckout opens a priority-boost checkout for one issue.
	RequestBoostCheckout(ctx context.Context, userEmail, issueID string) (string, error)
	// ConfirmPayment applies a settled checkout: boost, premium flag, ledger
	// record. Safe to replay with the same session reference.
	ConfirmPayment(ctx context.Context, in ConfirmPaymentInput) error
	RevenueSummary(ctx context.Context) (*RevenueSummary, error)
}
