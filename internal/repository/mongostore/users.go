// Package mongostore implements the repository interfaces on MongoDB.
// Profiles embed their experience and education, posts embed their likes
// and comments, and every mutation is a single conditional update.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"devconnector/internal/docstore"
	"devconnector/internal/model"
	"devconnector/internal/repository"
)

type userRepository struct {
	users    *mongo.Collection
	profiles *mongo.Collection
	posts    *mongo.Collection
}

func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepository{
		users:    db.Collection(docstore.Users),
		profiles: db.Collection(docstore.Profiles),
		posts:    db.Collection(docstore.Posts),
	}
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "username") {
				return model.ErrUsernameExists
			}
			return model.ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, model.ErrUserNotFound)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, model.ErrUserNotFound)
}

func (r *userRepository) GetByResetToken(ctx context.Context, token string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"reset_password_token": token}, model.ErrResetTokenNotFound)
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M, notFound error) (*model.User, error) {
	var u model.User
	err := r.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *userRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.users.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (r *userRepository) SetResetToken(ctx context.Context, userID string, token *string, expires *time.Time) error {
	return r.updateOne(ctx, userID, resetTokenUpdate(token, expires))
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHashed string) error {
	return r.updateOne(ctx, userID, passwordUpdate(passwordHashed))
}

func (r *userRepository) updateOne(ctx context.Context, userID string, update bson.M) error {
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// Delete removes the user's posts, likes, comments and profile. The account
// document goes last.
func (r *userRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.posts.DeleteMany(ctx, bson.M{"user": userID}); err != nil {
		return fmt.Errorf("delete user posts: %w", err)
	}
	_, err := r.posts.UpdateMany(ctx, activityOf(userID), stripActivityOf(userID))
	if err != nil {
		return fmt.Errorf("delete user likes and comments: %w", err)
	}
	if _, err := r.profiles.DeleteOne(ctx, bson.M{"user": userID}); err != nil {
		return fmt.Errorf("delete user profile: %w", err)
	}

	res, err := r.users.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
