package chats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("append", func(mt *mtest.T) {
		repo := NewMongoRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Append(context.Background(), "sub-1",
			Message{Role: "user", Content: "hi", Timestamp: time.Now()},
			Message{Role: "assistant", Content: "hello", Timestamp: time.Now()},
		)
		require.NoError(mt, err)
		require.NoError(mt, repo.Append(context.Background(), "sub-1"))
	})

	mt.Run("history", func(mt *mtest.T) {
		repo := NewMongoRepo(mt.DB)
		at := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
		ns := mt.DB.Name() + "." + CollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "submissionId", Value: "sub-1"}, {Key: "seq", Value: int64(0)}, {Key: "role", Value: "user"}, {Key: "content", Value: "hi"}, {Key: "createdAt", Value: at}},
			bson.D{{Key: "submissionId", Value: "sub-1"}, {Key: "seq", Value: int64(1)}, {Key: "role", Value: "assistant"}, {Key: "content", Value: "hello"}, {Key: "createdAt", Value: at}},
		))

		msgs, err := repo.History(context.Background(), "sub-1")
		require.NoError(mt, err)
		require.Len(mt, msgs, 2)
		assert.Equal(mt, "hi", msgs[0].Content)
		assert.Equal(mt, "assistant", msgs[1].Role)
		assert.True(mt, at.Equal(msgs[1].Timestamp))
	})
}
