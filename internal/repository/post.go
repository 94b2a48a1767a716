package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"devconnector/internal/model"
)

const postColumns = `id, user_id, title, content, avatar, username, created_at`

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query := `
		INSERT INTO posts (id, user_id, title, content, avatar, username, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.UserID, p.Title, p.Content, p.Avatar, p.Username,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	p.Likes = []model.Like{}
	p.Comments = []model.Comment{}
	return nil
}

// GetByID retrieves a single post with its likes and comments.
func (r *postRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	if !validID(postID) {
		return nil, model.ErrPostNotFound
	}

	var post model.Post
	err := r.db.GetContext(ctx, &post, `SELECT `+postColumns+` FROM posts WHERE id = $1`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	posts := []model.Post{post}
	if err := r.loadChildren(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (r *postRepository) List(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if posts == nil {
		posts = []model.Post{}
	}

	if err := r.loadChildren(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, postID string) error {
	if !validID(postID) {
		return model.ErrPostNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return expectRow(res, model.ErrPostNotFound)
}

// Like inserts the like unless the user already has one on this post.
func (r *postRepository) Like(ctx context.Context, postID string, like *model.Like) error {
	return r.withPost(ctx, postID, func(tx *sqlx.Tx) error {
		like.ID = uuid.NewString()
		like.PostID = postID
		like.CreatedAt = time.Now().UTC()

		res, err := tx.ExecContext(ctx, `
			INSERT INTO post_likes (id, post_id, user_id, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (post_id, user_id) DO NOTHING
		`, like.ID, postID, like.UserID, like.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert like: %w", err)
		}
		return expectRow(res, model.ErrAlreadyLiked)
	})
}

func (r *postRepository) Unlike(ctx context.Context, postID, userID string) error {
	return r.withPost(ctx, postID, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		return expectRow(res, model.ErrNotYetLiked)
	})
}

func (r *postRepository) AddComment(ctx context.Context, postID string, c *model.Comment) error {
	return r.withPost(ctx, postID, func(tx *sqlx.Tx) error {
		c.ID = uuid.NewString()
		c.PostID = postID
		c.CreatedAt = time.Now().UTC()

		_, err := tx.ExecContext(ctx, `
			INSERT INTO post_comments (id, post_id, user_id, text, avatar, username, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, c.ID, postID, c.UserID, c.Text, c.Avatar, c.Username, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		return nil
	})
}

func (r *postRepository) DeleteComment(ctx context.Context, postID, commentID string) error {
	if !validID(commentID) {
		return model.ErrCommentNotFound
	}
	return r.withPost(ctx, postID, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM post_comments WHERE id = $1 AND post_id = $2`, commentID, postID)
		if err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		return expectRow(res, model.ErrCommentNotFound)
	})
}

// withPost runs fn in a transaction holding the post's row lock.
func (r *postRepository) withPost(ctx context.Context, postID string, fn func(tx *sqlx.Tx) error) error {
	if !validID(postID) {
		return model.ErrPostNotFound
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.GetContext(ctx, &id, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrPostNotFound
	}
	if err != nil {
		return fmt.Errorf("lock post: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// loadChildren batch loads likes and comments, newest first.
func (r *postRepository) loadChildren(ctx context.Context, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, len(posts))
	index := make(map[string]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		index[posts[i].ID] = i
		posts[i].Likes = []model.Like{}
		posts[i].Comments = []model.Comment{}
	}

	var likes []model.Like
	err := r.db.SelectContext(ctx, &likes, `
		SELECT id, post_id, user_id, created_at
		FROM post_likes
		WHERE post_id = ANY($1)
		ORDER BY created_at DESC
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("get post likes: %w", err)
	}
	for _, l := range likes {
		i := index[l.PostID]
		posts[i].Likes = append(posts[i].Likes, l)
	}

	var comments []model.Comment
	err = r.db.SelectContext(ctx, &comments, `
		SELECT id, post_id, user_id, text, avatar, username, created_at
		FROM post_comments
		WHERE post_id = ANY($1)
		ORDER BY created_at DESC
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("get post comments: %w", err)
	}
	for _, c := range comments {
		i := index[c.PostID]
		posts[i].Comments = append(posts[i].Comments, c)
	}

	return nil
}
