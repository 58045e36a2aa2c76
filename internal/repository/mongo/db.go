// Package mongo stores users, posts and comments as MongoDB documents.
package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blog-server/internal/repository"
)

// Collection names.
const (
	UsersCollection    = "users"
	PostsCollection    = "posts"
	CommentsCollection = "comments"
)

// Connect dials uri, verifies the connection and returns the named database.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, client.Database(database), nil
}

func uniqueIndexName(field string) string {
	return field + "_unique"
}

// asDuplicate converts a duplicate key error into a repository.DuplicateError,
// naming the first of fields whose unique index appears in the message.
func asDuplicate(err error, fields ...string) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	msg := err.Error()
	for _, field := range fields {
		if strings.Contains(msg, uniqueIndexName(field)) {
			return &repository.DuplicateError{Field: field, Err: err}
		}
	}
	return &repository.DuplicateError{Err: err}
}

// objectID parses a hex id. Ids that cannot be ObjectIDs cannot exist.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	return oid, nil
}
