package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicdesk/issue-tracker/internal/api/metrics"
	"github.com/civicdesk/issue-tracker/internal/core/domain"
	"github.com/civicdesk/issue-tracker/internal/core/ports"
)

// PaymentHandler handles checkout and payment reconciliation requests.
type PaymentHandler struct {
	service ports.PaymentService
}

func NewPaymentHandler(service ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// PremiumCheckout handles POST /v1/checkout/premium.
//
// @Summary      Open a premium checkout session
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      premiumCheckoutRequest  true  "Buyer"
// @Success      200   {object}  checkoutResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/checkout/premium [post]
func (h *PaymentHandler) PremiumCheckout(c echo.Context) error {
	var req premiumCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	url, err := h.service.RequestPremiumCheckout(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}

	metrics.CheckoutSessionsTotal.WithLabelValues(string(domain.PaymentPremium)).Inc()
	return c.JSON(http.StatusOK, checkoutResponse{URL: url})
}

// BoostCheckout handles POST /v1/checkout/boost.
//
// @Summary      Open a priority-boost checkout session for one issue
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      boostCheckoutRequest  true  "Buyer and issue"
// @Success      200   {object}  checkoutResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/checkout/boost [post]
func (h *PaymentHandler) BoostCheckout(c echo.Context) error {
	var req boostCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	url, err := h.service.RequestBoostCheckout(c.Request().Context(), req.Email, req.IssueID)
	if err != nil {
		return err
	}

	metrics.CheckoutSessionsTotal.WithLabelValues(string(domain.PaymentBoost)).Inc()
	return c.JSON(http.StatusOK, checkoutResponse{URL: url})
}

// Confirm handles POST /v1/payments/confirm — the reconciliation entrypoint
// the gateway calls after a successful checkout. Safe to replay.
//
// @Summary      Reconcile a settled checkout
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      confirmPaymentRequest  true  "Settlement confirmation"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/payments/confirm [post]
func (h *PaymentHandler) Confirm(c echo.Context) error {
	var req confirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.service.ConfirmPayment(c.Request().Context(), ports.ConfirmPaymentInput{
		UserEmail:      req.Email,
		SessionRef:     req.SessionID,
		BoostedIssueID: req.BoostIssue,
	})
	if err != nil {
		return err
	}

	kind := domain.PaymentPremium
	if req.BoostIssue != "" {
		kind = domain.PaymentBoost
	}
	metrics.PaymentsConfirmedTotal.WithLabelValues(string(kind)).Inc()
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// RevenueSummary handles GET /v1/admin/payments/summary.
//
// @Summary      Aggregate paid revenue and premium user count
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  revenueSummaryResponse
// @Router       /v1/admin/payments/summary [get]
func (h *PaymentHandler) RevenueSummary(c echo.Context) error {
	summary, err := h.service.RevenueSummary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, revenueSummaryResponse{
		TotalRevenue: summary.TotalRevenue,
		PremiumUsers: summary.PremiumUsers,
	})
}
