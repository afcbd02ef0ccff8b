package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/civicdesk/issue-tracker/internal/core/domain"
	"github.com/civicdesk/issue-tracker/internal/core/ports"
)

const collectionIssueEvents = "issue_events"

// AuditRepository persists timeline mirrors to the issue_events collection.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) ports.AuditRecorder {
	return &AuditRepository{col: db.Collection(collectionIssueEvents)}
}

func (r *AuditRepository) Record(ctx context.Context, event domain.IssueEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"issue_id":    event.IssueID,
		"status":      event.Status,
		"message":     event.Message,
		"by":          event.By,
		"at":          event.At.UTC(),
		"recorded_at": time.Now().UTC(),
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}
