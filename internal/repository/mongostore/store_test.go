package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"devconnector/internal/docstore"
	"devconnector/internal/model"
)

// setupMongo connects to TEST_MONGO_URI and returns a throwaway database.
func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set, skipping mongo store tests")
	}

	ctx := context.Background()
	db, err := docstore.Connect(ctx, uri, "devconnector_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	require.NoError(t, docstore.EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = db.Client().Disconnect(context.Background())
	})
	return db
}

func createUser(t *testing.T, repo interface {
	Create(context.Context, *model.User) error
}, name string) *model.User {
	t.Helper()
	u := &model.User{Email: name + "@example.com", Username: name, PasswordHashed: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository_Duplicates(t *testing.T) {
	db := setupMongo(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	createUser(t, users, "alice")

	err := users.Create(ctx, &model.User{Email: "alice@example.com", Username: "other"})
	assert.ErrorIs(t, err, model.ErrEmailExists)

	err = users.Create(ctx, &model.User{Email: "other@example.com", Username: "alice"})
	assert.ErrorIs(t, err, model.ErrUsernameExists)
}

func TestUserRepository_ResetToken(t *testing.T) {
	db := setupMongo(t)
	users := NewUserRepository(db)
	ctx := context.Background()
	u := createUser(t, users, "bob")

	token := "abc123"
	expires := time.Now().Add(time.Hour)
	require.NoError(t, users.SetResetToken(ctx, u.ID, &token, &expires))

	found, err := users.GetByResetToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	require.NoError(t, users.UpdatePassword(ctx, u.ID, "newhash"))
	_, err = users.GetByResetToken(ctx, token)
	assert.ErrorIs(t, err, model.ErrResetTokenNotFound)
}

func TestPostRepository_LikeOnce(t *testing.T) {
	db := setupMongo(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()
	u := createUser(t, users, "carol")

	p := &model.Post{UserID: u.ID, Title: "t", Content: "c"}
	require.NoError(t, posts.Create(ctx, p))

	require.NoError(t, posts.Like(ctx, p.ID, &model.Like{UserID: u.ID}))
	assert.ErrorIs(t, posts.Like(ctx, p.ID, &model.Like{UserID: u.ID}), model.ErrAlreadyLiked)

	got, err := posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Likes, 1)

	require.NoError(t, posts.Unlike(ctx, p.ID, u.ID))
	assert.ErrorIs(t, posts.Unlike(ctx, p.ID, u.ID), model.ErrNotYetLiked)
	assert.ErrorIs(t, posts.Like(ctx, uuid.NewString(), &model.Like{UserID: u.ID}), model.ErrPostNotFound)
}

func TestProfileRepository_Entries(t *testing.T) {
	db := setupMongo(t)
	users := NewUserRepository(db)
	profiles := NewProfileRepository(db)
	ctx := context.Background()
	u := createUser(t, users, "dave")

	require.NoError(t, profiles.Create(ctx, &model.Profile{UserID: u.ID, Status: "Dev", Skills: []string{"Go"}}))
	assert.ErrorIs(t, profiles.Create(ctx, &model.Profile{UserID: u.ID, Status: "Dev"}), model.ErrProfileExists)

	first := &model.Experience{Title: "A", Company: "X", From: time.Now()}
	second := &model.Experience{Title: "B", Company: "Y", From: time.Now()}
	require.NoError(t, profiles.AddExperience(ctx, u.ID, first))
	require.NoError(t, profiles.AddExperience(ctx, u.ID, second))

	first.Title = "A2"
	require.NoError(t, profiles.UpdateExperience(ctx, u.ID, first))

	p, err := profiles.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, p.Experience, 2)
	assert.Equal(t, "B", p.Experience[0].Title)
	assert.Equal(t, "A2", p.Experience[1].Title)
	require.NotNil(t, p.User)
	assert.Equal(t, "dave", p.User.Username)

	assert.ErrorIs(t, profiles.DeleteExperience(ctx, u.ID, uuid.NewString()), model.ErrExperienceNotFound)
	assert.ErrorIs(t, profiles.DeleteExperience(ctx, uuid.NewString(), first.ID), model.ErrProfileNotFound)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	db := setupMongo(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()
	owner := createUser(t, users, "erin")
	other := createUser(t, users, "frank")

	mine := &model.Post{UserID: owner.ID, Title: "mine", Content: "c"}
	theirs := &model.Post{UserID: other.ID, Title: "theirs", Content: "c"}
	require.NoError(t, posts.Create(ctx, mine))
	require.NoError(t, posts.Create(ctx, theirs))
	require.NoError(t, posts.Like(ctx, theirs.ID, &model.Like{UserID: owner.ID}))
	require.NoError(t, posts.AddComment(ctx, theirs.ID, &model.Comment{UserID: owner.ID, Text: "hi"}))

	require.NoError(t, users.Delete(ctx, owner.ID))

	_, err := posts.GetByID(ctx, mine.ID)
	assert.ErrorIs(t, err, model.ErrPostNotFound)

	got, err := posts.GetByID(ctx, theirs.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
	assert.Empty(t, got.Comments)
}
