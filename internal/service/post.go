package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"devconnector/internal/logging"
	"devconnector/internal/model"
	"devconnector/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	log      zerolog.Logger
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		log:      logging.For("post_service"),
	}
}

// Create stores a post with the author's current avatar and username.
func (s *PostService) Create(ctx context.Context, userID string, req *model.CreatePostRequest) (*model.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID:   userID,
		Title:    req.Title,
		Content:  req.Content,
		Avatar:   author.Avatar,
		Username: author.Username,
		Likes:    []model.Like{},
		Comments: []model.Comment{},
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.log.Info().Str("post_id", post.ID).Str(logging.UserID, userID).Msg("post created")
	return post, nil
}

func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

func (s *PostService) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// Delete removes a post owned by userID. ErrNotPostOwner otherwise.
func (s *PostService) Delete(ctx context.Context, postID, userID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return model.ErrNotPostOwner
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	s.log.Info().Str("post_id", postID).Str(logging.UserID, userID).Msg("post deleted")
	return nil
}

// Like returns the updated post, or ErrAlreadyLiked.
func (s *PostService) Like(ctx context.Context, postID, userID string) (*model.Post, error) {
	if err := s.postRepo.Like(ctx, postID, &model.Like{UserID: userID}); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// Unlike returns the updated post, or ErrNotYetLiked.
func (s *PostService) Unlike(ctx context.Context, postID, userID string) (*model.Post, error) {
	if err := s.postRepo.Unlike(ctx, postID, userID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// Comment adds a comment with the author's snapshots and returns the post.
func (s *PostService) Comment(ctx context.Context, postID, userID string, req *model.CreateCommentRequest) (*model.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		UserID:   userID,
		Text:     req.Text,
		Avatar:   author.Avatar,
		Username: author.Username,
	}
	if err := s.postRepo.AddComment(ctx, postID, comment); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// DeleteComment removes a comment written by userID and returns the post.
func (s *PostService) DeleteComment(ctx context.Context, postID, commentID, userID string) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := post.FindComment(commentID)
	if comment == nil {
		return nil, model.ErrCommentNotFound
	}
	if comment.UserID != userID {
		return nil, model.ErrNotCommentOwner
	}

	if err := s.postRepo.DeleteComment(ctx, postID, commentID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}
