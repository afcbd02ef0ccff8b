package domain

import "time"

// IssueEvent mirrors a timeline entry into the standalone audit collection.
// The issue's embedded timeline is authoritative; this stream exists so audit
// queries do not have to unwind issue documents.
type IssueEvent struct {
	IssueID string    `json:"issue_id" bson:"issue_id"`
	Status  string    `json:"status" bson:"status"`
	Message string    `json:"message" bson:"message"`
	By      string    `json:"by" bson:"by"`
	At      time.Time `json:"at" bson:"at"`
}
