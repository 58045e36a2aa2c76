package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blog-server/internal/domain"
	"blog-server/internal/repository"
)

type commentDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Comment   string             `bson:"comment"`
	Author    string             `bson:"author"`
	PostID    primitive.ObjectID `bson:"postId"`
	UserID    primitive.ObjectID `bson:"userId"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d commentDocument) toDomain() domain.Comment {
	return domain.Comment{
		ID:        d.ID.Hex(),
		Comment:   d.Comment,
		Author:    d.Author,
		PostID:    d.PostID.Hex(),
		UserID:    d.UserID.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) repository.CommentRepository {
	return &CommentRepository{col: db.Collection(CommentsCollection)}
}

func (r *CommentRepository) Init(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create comments indexes: %w", err)
	}
	return nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	postID, err := primitive.ObjectIDFromHex(comment.PostID)
	if err != nil {
		return fmt.Errorf("comment post id %q: %w", comment.PostID, err)
	}
	userID, err := primitive.ObjectIDFromHex(comment.UserID)
	if err != nil {
		return fmt.Errorf("comment owner id %q: %w", comment.UserID, err)
	}

	now := time.Now().UTC()
	doc := commentDocument{
		ID:        primitive.NewObjectID(),
		Comment:   comment.Comment,
		Author:    comment.Author,
		PostID:    postID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo insert comment: %w", err)
	}
	comment.ID = doc.ID.Hex()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	return nil
}

func (r *CommentRepository) Get(ctx context.Context, id string) (*domain.Comment, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc commentDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("mongo find comment: %w", err)
	}
	comment := doc.toDomain()
	return &comment, nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return []domain.Comment{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"postId": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list comments: %w", err)
	}
	defer cur.Close(ctx)

	var docs []commentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode comments: %w", err)
	}
	comments := make([]domain.Comment, len(docs))
	for i := range docs {
		comments[i] = docs[i].toDomain()
	}
	return comments, nil
}

func (r *CommentRepository) UpdateText(ctx context.Context, id, text string) (*domain.Comment, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc commentDocument
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"comment": text, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("mongo update comment: %w", err)
	}
	comment := doc.toDomain()
	return &comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return 0, nil
	}
	res, err := r.col.DeleteMany(ctx, bson.M{"postId": oid})
	if err != nil {
		return 0, fmt.Errorf("mongo delete post comments: %w", err)
	}
	return res.DeletedCount, nil
}
