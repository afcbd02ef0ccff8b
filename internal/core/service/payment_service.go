package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicdesk/issue-tracker/internal/core/domain"
	"github.com/civicdesk/issue-tracker/internal/core/ports"
)

// Fixed checkout prices in minor units.
const (
	premiumAmount = 1000
	boostAmount   = 100
)

// ReplayGuard abstracts the fast-path idempotency store (Redis). It is
// advisory only: the durable replay check is the session reference stored on
// the payment record.
type ReplayGuard interface {
	Seen(ctx context.Context, sessionRef string) (bool, error)
	Mark(ctx context.Context, sessionRef string) error
}

// PaymentConfig carries the checkout settings the reconciler needs.
type PaymentConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

// PaymentService reconciles external payment confirmations into entitlement
// state: the user's premium flag, an issue's priority boost, and the payment
// ledger.
//
// ConfirmPayment sets premium unconditionally, even when the confirmation was
// for a boost: both products share one confirmation endpoint and the
// entitlement contract is intentionally permissive.
type PaymentService struct {
	users    ports.UserRepository
	issues   ports.IssueRepository
	payments ports.PaymentRepository
	gateway  ports.CheckoutGateway
	replay   ReplayGuard
	audit    ports.AuditSink
	cfg      PaymentConfig
	logger   zerolog.Logger
}

func NewPaymentService(
	users ports.UserRepository,
	issues ports.IssueRepository,
	payments ports.PaymentRepository,
	gateway ports.CheckoutGateway,
	replay ReplayGuard,
	audit ports.AuditSink,
	cfg PaymentConfig,
	logger zerolog.Logger,
) *PaymentService {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &PaymentService{
		users:    users,
		issues:   issues,
		payments: payments,
		gateway:  gateway,
		replay:   replay,
		audit:    audit,
		cfg:      cfg,
		logger:   logger,
	}
}

// RequestPremiumCheckout opens a premium checkout session and returns the
// hosted page URL the caller should redirect to.
func (s *PaymentService) RequestPremiumCheckout(ctx context.Context, userEmail string) (string, error) {
	if userEmail == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, userEmail)
	if err != nil {
		return "", fmt.Errorf("premium checkout: %w", err)
	}
	if user.Premium {
		return "", domain.ErrAlreadyPremium
	}

	session, err := s.gateway.CreateSession(ctx, ports.CheckoutParams{
		Amount:        premiumAmount,
		Currency:      s.cfg.Currency,
		CustomerEmail: userEmail,
		SuccessURL:    s.cfg.SuccessURL,
		CancelURL:     s.cfg.CancelURL,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user", userEmail).Msg("gateway session creation failed")
		return "", fmt.Errorf("%w: create checkout session: %v", domain.ErrUpstream, err)
	}

	s.logger.Info().Str("user", userEmail).Str("session", session.ID).Msg("premium checkout opened")
	return session.URL, nil
}

// RequestBoostCheckout opens a priority-boost checkout for one issue. The
// issue reference travels through the success-redirect query string so the
// confirmation can attribute the boost.
func (s *PaymentService) RequestBoostCheckout(ctx context.Context, userEmail, issueID string) (string, error) {
	if userEmail == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if issueID == "" {
		return "", fmt.Errorf("%w: issue id is required", domain.ErrValidation)
	}

	if _, err := s.issues.FindByID(ctx, issueID); err != nil {
		return "", fmt.Errorf("boost checkout: %w", err)
	}

	session, err := s.gateway.CreateSession(ctx, ports.CheckoutParams{
		Amount:        boostAmount,
		Currency:      s.cfg.Currency,
		CustomerEmail: userEmail,
		SuccessURL:    s.cfg.SuccessURL + "?boost_issue=" + url.QueryEscape(issueID),
		CancelURL:     s.cfg.CancelURL,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user", userEmail).Str("issue_id", issueID).Msg("gateway session creation failed")
		return "", fmt.Errorf("%w: create checkout session: %v", domain.ErrUpstream, err)
	}

	s.logger.Info().Str("user", userEmail).Str("issue_id", issueID).Str("session", session.ID).Msg("boost checkout opened")
	return session.URL, nil
}

// ConfirmPayment applies a settled checkout. The sequence is best effort, not
// transactional: boost first, then the premium flag, then the ledger upsert.
// Replaying the same session reference is a no-op for all three.
func (s *PaymentService) ConfirmPayment(ctx context.Context, in ports.ConfirmPaymentInput) error {
	if in.UserEmail == "" || in.SessionRef == "" {
		return fmt.Errorf("%w: email and session reference are required", domain.ErrValidation)
	}

	// Fast-path replay check. Advisory: on error, fall through to the
	// durable check.
	seen, err := s.replay.Seen(ctx, in.SessionRef)
	if err != nil {
		s.logger.Warn().Err(err).Str("session", in.SessionRef).Msg("replay guard check failed, using ledger check")
	} else if seen {
		s.logger.Debug().Str("session", in.SessionRef).Msg("confirmation replay skipped")
		return nil
	}

	// Durable replay check: the ledger record already carries this session.
	existing, err := s.payments.FindByUser(ctx, in.UserEmail)
	if err == nil && existing.SessionRef == in.SessionRef {
		s.markReplayed(ctx, in.SessionRef)
		s.logger.Info().Str("session", in.SessionRef).Str("user", in.UserEmail).Msg("confirmation already reconciled")
		return nil
	}

	kind := domain.PaymentPremium
	amount := int64(premiumAmount)

	// 1. Boost the linked issue. Failure here does not abort the
	// reconciliation: the entitlement and the ledger still land.
	if in.BoostedIssueID != "" {
		kind = domain.PaymentBoost
		amount = boostAmount
		if err := s.applyBoost(ctx, in); err != nil {
			s.logger.Warn().Err(err).Str("issue_id", in.BoostedIssueID).Msg("failed to apply priority boost")
		}
	}

	// 2. Premium entitlement.
	if err := s.users.SetPremium(ctx, in.UserEmail, true); err != nil {
		return fmt.Errorf("%w: set premium: %v", domain.ErrUpstream, err)
	}

	// 3. Ledger record, keyed by user.
	record := &domain.PaymentRecord{
		UserEmail:  in.UserEmail,
		Kind:       kind,
		SessionRef: in.SessionRef,
		Amount:     amount,
		Currency:   s.cfg.Currency,
		Status:     domain.PaymentPaid,
		IssueID:    in.BoostedIssueID,
		PaidAt:     time.Now().UTC(),
	}
	if err := s.payments.UpsertByUser(ctx, record); err != nil {
		return fmt.Errorf("%w: upsert payment record: %v", domain.ErrUpstream, err)
	}

	s.markReplayed(ctx, in.SessionRef)
	s.logger.Info().
		Str("user", in.UserEmail).
		Str("session", in.SessionRef).
		Str("kind", string(kind)).
		Int64("amount", amount).
		Msg("payment reconciled")
	return nil
}

func (s *PaymentService) applyBoost(ctx context.Context, in ports.ConfirmPaymentInput) error {
	entry := domain.NewTimelineEntry(domain.TimelineBoosted, "Priority boosted to high", in.UserEmail)
	if err := s.issues.SetPriority(ctx, in.BoostedIssueID, domain.PriorityHigh, entry); err != nil {
		return err
	}
	if s.audit != nil {
		s.audit.Enqueue(domain.IssueEvent{
			IssueID: in.BoostedIssueID,
			Status:  entry.Status,
			Message: entry.Message,
			By:      entry.By,
			At:      entry.At,
		})
	}
	return nil
}

func (s *PaymentService) markReplayed(ctx context.Context, sessionRef string) {
	if err := s.replay.Mark(ctx, sessionRef); err != nil {
		s.logger.Warn().Err(err).Str("session", sessionRef).Msg("failed to mark replay guard")
	}
}

// RevenueSummary aggregates all paid ledger records and counts premium users.
func (s *PaymentService) RevenueSummary(ctx context.Context) (*ports.RevenueSummary, error) {
	total, err := s.payments.TotalPaid(ctx)
	if err != nil {
		return nil, fmt.Errorf("revenue summary: %w", err)
	}
	premium, err := s.users.CountPremium(ctx)
	if err != nil {
		return nil, fmt.Errorf("revenue summary: %w", err)
	}
	return &ports.RevenueSummary{TotalRevenue: total, PremiumUsers: premium}, nil
}
