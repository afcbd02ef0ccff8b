package domain

import (
	"errors"
	"time"
)

// PaymentKind distinguishes what a payment bought.
type PaymentKind string

const (
	PaymentPremium PaymentKind = "premium"
	PaymentBoost   PaymentKind = "boost"
)

// PaymentStatus is the settlement state reported by the gateway.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentFailed  PaymentStatus = "failed"
)

var ErrAlreadyPremium = errors.New("user is already premium")
var ErrPaymentNotFound = errors.New("payment record not found")

// ErrUpstream marks failures of external collaborators (payment gateway,
// store) that the core does not retry; callers own retry policy.
var ErrUpstream = errors.New("upstream failure")

// PaymentRecord is the ledger entry for a settled checkout. Records are
// upserted per user: a later purchase by the same user replaces the record.
type PaymentRecord struct {
	UserEmail  string        `json:"user_email" bson:"user_email"`
	Kind       PaymentKind   `json:"kind" bson:"kind"`
	SessionRef string        `json:"session_ref" bson:"session_ref"`
	Amount     int64         `json:"amount" bson:"amount"`
	Currency   string        `json:"currency" bson:"currency"`
	Status     PaymentStatus `json:"status" bson:"status"`
	IssueID    string        `json:"issue_id,omitempty" bson:"issue_id,omitempty"`
	PaidAt     time.Time     `json:"paid_at" bson:"paid_at"`
}
