package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blog-server/internal/domain"
	"blog-server/internal/repository"
)

type postDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Username    string             `bson:"username"`
	UserID      primitive.ObjectID `bson:"userId"`
	Categories  []string           `bson:"categories"`
	Photo       string             `bson:"photo"`
	Slug        string             `bson:"slug"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d postDocument) toDomain() domain.Post {
	categories := d.Categories
	if categories == nil {
		categories = []string{}
	}
	return domain.Post{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Username:    d.Username,
		UserID:      d.UserID.Hex(),
		Categories:  categories,
		Photo:       d.Photo,
		Slug:        d.Slug,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) repository.PostRepository {
	return &PostRepository{col: db.Collection(PostsCollection)}
}

func (r *PostRepository) Init(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(uniqueIndexName("slug")),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create posts indexes: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	owner, err := primitive.ObjectIDFromHex(post.UserID)
	if err != nil {
		return fmt.Errorf("post owner id %q: %w", post.UserID, err)
	}

	now := time.Now().UTC()
	doc := postDocument{
		ID:          primitive.NewObjectID(),
		Title:       post.Title,
		Description: post.Description,
		Username:    post.Username,
		UserID:      owner,
		Categories:  nonNil(post.Categories),
		Photo:       post.Photo,
		Slug:        post.Slug,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if dup := asDuplicate(err, "slug"); dup != nil {
			return dup
		}
		return fmt.Errorf("mongo insert post: %w", err)
	}
	post.ID = doc.ID.Hex()
	post.CreatedAt = now
	post.UpdatedAt = now
	return nil
}

func (r *PostRepository) Get(ctx context.Context, id string) (*domain.Post, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *PostRepository) List(ctx context.Context, search string) ([]domain.Post, error) {
	return r.find(ctx, searchFilter(search))
}

func (r *PostRepository) ListByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []domain.Post{}, nil
	}
	return r.find(ctx, bson.M{"userId": oid})
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	oid, err := objectID(post.ID)
	if err != nil {
		return err
	}
	post.UpdatedAt = time.Now().UTC()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"title":       post.Title,
		"description": post.Description,
		"username":    post.Username,
		"categories":  nonNil(post.Categories),
		"photo":       post.Photo,
		"slug":        post.Slug,
		"updatedAt":   post.UpdatedAt,
	}})
	if err != nil {
		if dup := asDuplicate(err, "slug"); dup != nil {
			return dup
		}
		return fmt.Errorf("mongo update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) UpdateUsername(ctx context.Context, userID, username string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, nil
	}
	res, err := r.col.UpdateMany(ctx,
		bson.M{"userId": oid, "username": bson.M{"$ne": username}},
		bson.M{"$set": bson.M{"username": username, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return 0, fmt.Errorf("mongo update posts username: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) findOne(ctx context.Context, filter bson.M) (*domain.Post, error) {
	var doc postDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("mongo find post: %w", err)
	}
	post := doc.toDomain()
	return &post, nil
}

func (r *PostRepository) find(ctx context.Context, filter bson.M) ([]domain.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list posts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode posts: %w", err)
	}
	posts := make([]domain.Post, len(docs))
	for i := range docs {
		posts[i] = docs[i].toDomain()
	}
	return posts, nil
}

// searchFilter matches search as literal text, case-insensitively, against
// title, description and any category.
func searchFilter(search string) bson.M {
	search = strings.TrimSpace(search)
	if search == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"title": pattern},
		bson.M{"description": pattern},
		bson.M{"categories": pattern},
	}}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
