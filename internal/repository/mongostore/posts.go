package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"devconnector/internal/docstore"
	"devconnector/internal/model"
	"devconnector/internal/repository"
)

type postRepository struct {
	posts *mongo.Collection
}

func NewPostRepository(db *mongo.Database) repository.PostRepository {
	return &postRepository{posts: db.Collection(docstore.Posts)}
}

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now()
	p.Likes = []model.Like{}
	p.Comments = []model.Comment{}

	if _, err := r.posts.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	var p model.Post
	err := r.posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	normalize(&p)
	return &p, nil
}

func (r *postRepository) List(ctx context.Context) ([]model.Post, error) {
	cur, err := r.posts.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}

	posts := []model.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	for i := range posts {
		normalize(&posts[i])
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, postID string) error {
	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": postID})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

// Like pushes only when no like by the same user is present.
func (r *postRepository) Like(ctx context.Context, postID string, like *model.Like) error {
	like.ID = uuid.NewString()
	like.PostID = postID
	like.CreatedAt = now()

	res, err := r.posts.UpdateOne(ctx,
		notLikedBy(postID, like.UserID),
		prependTo("likes", like),
	)
	if err != nil {
		return fmt.Errorf("push like: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missing(ctx, postID, model.ErrAlreadyLiked)
	}
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, postID, userID string) error {
	res, err := r.posts.UpdateOne(ctx,
		likedBy(postID, userID),
		pullLikeOf(userID),
	)
	if err != nil {
		return fmt.Errorf("pull like: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missing(ctx, postID, model.ErrNotYetLiked)
	}
	return nil
}

func (r *postRepository) AddComment(ctx context.Context, postID string, c *model.Comment) error {
	c.ID = uuid.NewString()
	c.PostID = postID
	c.CreatedAt = now()

	res, err := r.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		prependTo("comments", c),
	)
	if err != nil {
		return fmt.Errorf("push comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) DeleteComment(ctx context.Context, postID, commentID string) error {
	res, err := r.posts.UpdateOne(ctx,
		elemFilter("_id", postID, "comments", commentID),
		pullByID("comments", commentID),
	)
	if err != nil {
		return fmt.Errorf("pull comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missing(ctx, postID, model.ErrCommentNotFound)
	}
	return nil
}

// missing tells a missing post apart from a failed array condition.
func (r *postRepository) missing(ctx context.Context, postID string, conflict error) error {
	n, err := r.posts.CountDocuments(ctx, bson.M{"_id": postID})
	if err != nil {
		return fmt.Errorf("count posts: %w", err)
	}
	if n == 0 {
		return model.ErrPostNotFound
	}
	return conflict
}

func normalize(p *model.Post) {
	if p.Likes == nil {
		p.Likes = []model.Like{}
	}
	if p.Comments == nil {
		p.Comments = []model.Comment{}
	}
}
