package chats

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding chat messages.
const CollectionName = "chat_messages"

type messageDocument struct {
	SubmissionID string `bson:"submissionId"`
	Seq          int64  `bson:"seq"`
	Message      `bson:",inline"`
}

// MongoRepo implements Repo with one document per message.
type MongoRepo struct {
	coll *mongo.Collection
}

// NewMongoRepo binds the chat collection of db.
func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the conversation ordering index.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "submissionId", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "seq", Value: 1}},
	})
	return err
}

// Append inserts msgs with an ordered InsertMany so they share one round trip.
func (r *MongoRepo) Append(ctx context.Context, submissionID string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	docs := make([]any, len(msgs))
	for i, m := range msgs {
		docs[i] = messageDocument{SubmissionID: submissionID, Seq: int64(i), Message: m}
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert chat messages: %w", err)
	}
	return nil
}

// History returns messages ordered by time then position within one append.
func (r *MongoRepo) History(ctx context.Context, submissionID string) ([]Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "seq", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"submissionId": submissionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []Message{}
	for cursor.Next(ctx) {
		var doc messageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.Message)
	}
	return out, cursor.Err()
}
