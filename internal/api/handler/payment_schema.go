package handler

type premiumCheckoutRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type boostCheckoutRequest struct {
	Email   string `json:"email"    validate:"required,email"`
	IssueID string `json:"issue_id" validate:"required"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// confirmPaymentRequest is the confirmation contract the payment gateway
// delivers out of band after a successful checkout.
type confirmPaymentRequest struct {
	Email      string `json:"email"       validate:"required,email"`
	SessionID  string `json:"session_id"  validate:"required"`
	BoostIssue string `json:"boost_issue,omitempty"`
}

type revenueSummaryResponse struct {
	TotalRevenue int64 `json:"total_revenue"`
	PremiumUsers int64 `json:"premium_users"`
}
