package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicdesk/issue-tracker/internal/core/domain"
	"github.com/civicdesk/issue-tracker/internal/core/ports"
)

const collectionIssues = "issues"

// IssueRepository implements ports.IssueRepository on MongoDB. Every mutation
// that touches status, priority or assignment carries its timeline entry in
// the same UpdateOne, so the state and its audit record land atomically.
type IssueRepository struct {
	col *mongo.Collection
}

func NewIssueRepository(db *mongo.Database) *IssueRepository {
	return &IssueRepository{col: db.Collection(collectionIssues)}
}

// idFilter validates the identifier format and builds the _id filter.
// Identifiers are ObjectID hex strings assigned at insert time.
func idFilter(id string) (bson.M, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, domain.ErrInvalidIssueID
	}
	return bson.M{"_id": id}, nil
}

// Insert stores a new issue document and returns the generated identifier.
func (r *IssueRepository) Insert(ctx context.Context, issue *domain.Issue) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	issue.ID = primitive.NewObjectID().Hex()
	if _, err := r.col.InsertOne(ctx, issue); err != nil {
		return "", err
	}
	return issue.ID, nil
}

func (r *IssueRepository) FindByID(ctx context.Context, id string) (*domain.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := idFilter(id)
	if err != nil {
		return nil, err
	}

	var issue domain.Issue
	if err := r.col.FindOne(ctx, filter).Decode(&issue); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIssueNotFound
		}
		return nil, err
	}
	return &issue, nil
}

func (r *IssueRepository) CountByReporter(ctx context.Context, reporterEmail string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"reporter_email": reporterEmail})
}

// UpdateFields patches descriptive fields and appends the edit entry in one write.
func (r *IssueRepository) UpdateFields(ctx context.Context, id string, patch ports.IssueFieldPatch, entry domain.TimelineEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := idFilter(id)
	if err != nil {
		return err
	}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.ImageURL != nil {
		set["image_url"] = *patch.ImageURL
	}

	update := bson.M{"$push": bson.M{"timeline": entry}}
	if len(set) > 0 {
		update["$set"] = set
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

func (r *IssueRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := idFilter(id)
	if err != nil {
		return err
	}

	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

// SetAssignee stores the staff snapshot, moves the status and appends the
// assignment entry atomically.
func (r *IssueRepository) SetAssignee(ctx context.Context, id string, staff domain.StaffRef, status domain.IssueStatus, entry domain.TimelineEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := idFilter(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set":  bson.M{"assigned_staff": staff, "status": string(status)},
		"$push": bson.M{"timeline": entry},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

// UpdateStatus moves the status and appends the transition entry atomically.
func (r *IssueRepository) UpdateStatus(ctx context.Context, id string, status domain.IssueStatus, entry domain.TimelineEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := idFilter(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set":  bson.M{"status": string(status)},
		"$push": bson.M{"timeline": entry},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

// AddVote adds the voter to the upvote set if absent. $addToSet makes the
// write idempotent; a concurrent duplicate surfaces as ErrDuplicateVote.
func (r *IssueRepository) AddVote(ctx context.Context, id, voterEmail string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := idFilter(id)
	if err != nil {
		return err
	}

	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$addToSet": bson.M{"upvotes": voterEmail}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrIssueNotFound
	}
	if res.ModifiedCount == 0 {
		return domain.ErrDuplicateVote
	}
	return nil
}

// SetPriority escalates the priority and appends the boost entry atomically.
func (r *IssueRepository) SetPriority(ctx context.Context, id string, priority domain.IssuePriority, entry domain.TimelineEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := idFilter(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set":  bson.M{"priority": string(priority)},
		"$push": bson.M{"timeline": entry},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

// List returns a page of issues matching filter, newest first, plus the total count.
func (r *IssueRepository) List(ctx context.Context, filter ports.ListIssuesFilter) ([]*domain.Issue, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.Search != "" {
		pattern := regexp.QuoteMeta(filter.Search)
		regex := bson.M{"$regex": pattern, "$options": "i"}
		query["$or"] = []bson.M{
			{"title": regex},
			{"location": regex},
			{"category": regex},
		}
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Page-1) * int64(filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var issues []*domain.Issue
	if err := cur.All(ctx, &issues); err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

// EnsureIndexes creates the indexes the list and quota queries rely on.
func (r *IssueRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "reporter_email", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
