package domain

import (
	"errors"
	"time"
)

// IssueStatus represents the lifecycle state of a reported issue.
type IssueStatus string

const (
	StatusPending    IssueStatus = "pending"
	StatusInProgress IssueStatus = "in-progress"
	StatusResolved   IssueStatus = "resolved"
	StatusCompleted  IssueStatus = "completed"
	StatusRejected   IssueStatus = "rejected"
)

// validTransitions defines the allowed state machine transitions.
// resolved, completed and rejected are terminal.
var validTransitions = map[IssueStatus][]IssueStatus{
	StatusPending:    {StatusInProgress, StatusRejected},
	StatusInProgress: {StatusResolved, StatusCompleted},
}

var ErrIssueNotFound = errors.New("issue not found")
var ErrInvalidIssueID = errors.New("invalid issue id")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrValidation = errors.New("validation failed")
var ErrForbidden = errors.New("access forbidden")
var ErrDuplicateVote = errors.New("already voted")
var ErrQuotaExceeded = errors.New("free issue quota exceeded")

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s IssueStatus) CanTransitionTo(next IssueStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status accepts no further transitions.
func (s IssueStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// ParseIssueStatus validates a raw status string.
func ParseIssueStatus(raw string) (IssueStatus, bool) {
	switch IssueStatus(raw) {
	case StatusPending, StatusInProgress, StatusResolved, StatusCompleted, StatusRejected:
		return IssueStatus(raw), true
	}
	return "", false
}

// IssuePriority is an attribute orthogonal to the status state machine.
type IssuePriority string

const (
	PriorityNormal IssuePriority = "normal"
	PriorityHigh   IssuePriority = "high"
)

// Timeline labels that are not lifecycle statuses. Assignment, edits and
// priority boosts are audited on the timeline without moving the state machine.
const (
	TimelineAssigned = "assigned"
	TimelineEdited   = "edited"
	TimelineBoosted  = "boosted"
)

// TimelineEntry is a single immutable audit record on an issue. Entries are
// only ever appended, never edited or removed.
type TimelineEntry struct {
	Status  string    `json:"status" bson:"status"`
	Message string    `json:"message" bson:"message"`
	By      string    `json:"by" bson:"by"`
	At      time.Time `json:"at" bson:"at"`
}

// NewTimelineEntry builds a timeline entry stamped with the current UTC time.
func NewTimelineEntry(status, message, by string) TimelineEntry {
	return TimelineEntry{
		Status:  status,
		Message: message,
		By:      by,
		At:      time.Now().UTC(),
	}
}

// StaffRef is a snapshot of the staff member an issue was assigned to.
// It is not a live foreign key: later changes to the staff directory do
// not rewrite past assignments.
type StaffRef struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}

// Issue is the core aggregate root.
type Issue struct {
	ID              string          `json:"id" bson:"_id,omitempty"`
	Title           string          `json:"title" bson:"title"`
	Description     string          `json:"description" bson:"description"`
	ReporterEmail   string          `json:"reporter_email" bson:"reporter_email"`
	ReporterPremium bool            `json:"reporter_premium" bson:"reporter_premium"`
	Category        string          `json:"category" bson:"category"`
	Location        string          `json:"location" bson:"location"`
	ImageURL        string          `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Priority        IssuePriority   `json:"priority" bson:"priority"`
	Status          IssueStatus     `json:"status" bson:"status"`
	AssignedStaff   *StaffRef       `json:"assigned_staff,omitempty" bson:"assigned_staff,omitempty"`
	Upvotes         []string        `json:"upvotes" bson:"upvotes"`
	Timeline        []TimelineEntry `json:"timeline" bson:"timeline"`
	CreatedAt       time.Time       `json:"created_at" bson:"created_at"`
}

// HasVote reports whether the voter already appears in the upvote set.
func (i *Issue) HasVote(voterEmail string) bool {
	for _, v := range i.Upvotes {
		if v == voterEmail {
			return true
		}
	}
	return false
}
