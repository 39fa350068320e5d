package submissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hairalyzer-backend/internal/analyses"
)

// CollectionName is the Mongo collection holding submissions.
const CollectionName = "submissions"

// MongoRepo implements Repo on a MongoDB collection.
type MongoRepo struct {
	coll *mongo.Collection
}

// NewMongoRepo binds the submissions collection of db.
func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the owner listing index.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

// Create inserts one document.
func (r *MongoRepo) Create(ctx context.Context, s Submission) (Submission, error) {
	s = s.normalize()
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return Submission{}, fmt.Errorf("insert submission: %w", err)
	}
	return s, nil
}

// GetByID returns a submission by ID.
func (r *MongoRepo) GetByID(ctx context.Context, id string) (Submission, error) {
	var s Submission
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Submission{}, ErrNotFound
	}
	if err != nil {
		return Submission{}, err
	}
	return s.normalize(), nil
}

// ListByUser returns the user's submissions, newest first.
func (r *MongoRepo) ListByUser(ctx context.Context, userID string) ([]Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cursor)
}

// UpdateAnalysis sets the analysis sub-document.
func (r *MongoRepo) UpdateAnalysis(ctx context.Context, id string, a analyses.Analysis, updatedAt time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"analysis":  a.Normalize(),
		"updatedAt": updatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignOwner claims an ownerless submission for userID.
func (r *MongoRepo) AssignOwner(ctx context.Context, id, userID string, updatedAt time.Time) error {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"userId": bson.M{"$exists": false}},
			bson.M{"userId": ""},
		},
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"userId":    userID,
		"updatedAt": updatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrOwnerConflict
}

// List pages through all submissions oldest first.
func (r *MongoRepo) List(ctx context.Context, limit, offset int) ([]Submission, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cursor)
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]Submission, error) {
	defer cursor.Close(ctx)
	out := []Submission{}
	for cursor.Next(ctx) {
		var s Submission
		if err := cursor.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, s.normalize())
	}
	return out, cursor.Err()
}
