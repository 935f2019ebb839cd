package db

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"weibo-sentiment/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements CommentStore on a MongoDB collection. It keeps
// the same natural-key update and user-scoped search contract as the
// SQL store; only the store-assigned numeric id is absent (documents
// carry ObjectIDs instead, and StoredComment.ID stays zero).
type MongoStore struct {
	mongoClient *mongo.Client
	collection  *mongo.Collection
}

// NewMongoStore creates a new Mongo-backed comment store.
func NewMongoStore(connectionString, databaseName, collectionName string) (*MongoStore, error) {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	return &MongoStore{
		mongoClient: mongoClient,
		collection:  mongoClient.Database(databaseName).Collection(collectionName),
	}, nil
}

// Connect verifies connectivity to MongoDB.
func (s *MongoStore) Connect(ctx context.Context) error {
	if s.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return s.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.mongoClient == nil {
		return nil
	}
	return s.mongoClient.Disconnect(ctx)
}

// Insert persists a batch of comments for one user. Mongo has no batch
// rollback here: the ordered InsertMany stops at the first failure but
// keeps every document before it, so each document gets a pre-assigned
// id and a failed batch is compensated by deleting them all.
func (s *MongoStore) Insert(ctx context.Context, userID int64, comments []domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	docs, ids := insertDocs(userID, comments, time.Now().UTC())

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		if _, delErr := s.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); delErr != nil {
			return fmt.Errorf("insert comments: %v (batch cleanup failed: %w)", err, delErr)
		}
		return fmt.Errorf("insert comments: %w", err)
	}
	return nil
}

// insertDocs builds the documents for one insert batch alongside their
// pre-assigned ids, which the compensating delete targets on failure.
func insertDocs(userID int64, comments []domain.Comment, now time.Time) ([]interface{}, []interface{}) {
	docs := make([]interface{}, 0, len(comments))
	ids := make([]interface{}, 0, len(comments))
	for _, c := range comments {
		id := primitive.NewObjectID()
		ids = append(ids, id)
		docs = append(docs, bson.M{
			"_id":         id,
			"user_id":     userID,
			"created_at":  c.CreatedAt,
			"text":        c.Text,
			"source":      c.Source,
			"screen_name": c.ScreenName,
			"description": c.Desc,
			"crawl_time":  now,
		})
	}
	return docs, ids
}

// UpdateSentiment writes sentiment results onto stored documents
// matched by the natural key. Zero matches for a record is a no-op.
func (s *MongoStore) UpdateSentiment(ctx context.Context, userID int64, comments []domain.Comment) error {
	for _, c := range comments {
		filter := bson.M{
			"user_id":     userID,
			"created_at":  c.CreatedAt,
			"screen_name": c.ScreenName,
			"text":        c.Text,
		}
		update := bson.M{"$set": bson.M{
			"sentiment_score": c.SentimentScore,
			"sentiment_label": c.SentimentLabel,
		}}

		if _, err := s.collection.UpdateMany(ctx, filter, update); err != nil {
			return fmt.Errorf("update sentiment: %w", err)
		}
	}
	return nil
}

// AllComments returns every stored comment across all users, oldest
// first. It exists for replication, which copies whole collections.
func (s *MongoStore) AllComments(ctx context.Context) ([]domain.StoredComment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query all comments: %w", err)
	}
	defer cursor.Close(ctx)

	var result []domain.StoredComment
	for cursor.Next(ctx) {
		var c domain.StoredComment
		if err := cursor.Decode(&c); err != nil {
			continue // Skip invalid documents
		}
		result = append(result, c)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return result, nil
}

// Search returns the user's comments newest first, optionally filtered
// by a text substring and a created_at lower bound.
func (s *MongoStore) Search(ctx context.Context, userID int64, keyword, startTime string) ([]domain.StoredComment, error) {
	filter := bson.M{"user_id": userID}
	if keyword != "" {
		filter["text"] = bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(keyword)}}
	}
	if startTime != "" {
		filter["created_at"] = bson.M{"$gte": startTime}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer cursor.Close(ctx)

	var result []domain.StoredComment
	for cursor.Next(ctx) {
		var c domain.StoredComment
		if err := cursor.Decode(&c); err != nil {
			continue // Skip invalid documents
		}
		result = append(result, c)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return result, nil
}
