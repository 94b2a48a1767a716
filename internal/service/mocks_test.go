package service

import (
	"context"
	"sync"
	"time"

	"devconnector/internal/model"
	"devconnector/internal/queue"
)

// Function-field stubs. A nil field falls back to a neutral result so each
// test only wires the calls it cares about.

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id string) (*model.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*model.User, error)
	getByResetTokenFn  func(ctx context.Context, token string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	setResetTokenFn    func(ctx context.Context, userID string, token *string, expires *time.Time) error
	updatePasswordFn   func(ctx context.Context, userID, hash string) error
	deleteFn           func(ctx context.Context, userID string) error

	createCalls        []*model.User
	setResetTokenCalls []resetTokenCall
	deleteCalls        []string
}

type resetTokenCall struct {
	UserID  string
	Token   *string
	Expires *time.Time
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	if user.ID == "" {
		user.ID = "u-1"
	}
	user.CreatedAt = time.Now()
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByResetToken(ctx context.Context, token string) (*model.User, error) {
	if m.getByResetTokenFn != nil {
		return m.getByResetTokenFn(ctx, token)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) SetResetToken(ctx context.Context, userID string, token *string, expires *time.Time) error {
	m.setResetTokenCalls = append(m.setResetTokenCalls, resetTokenCall{UserID: userID, Token: token, Expires: expires})
	if m.setResetTokenFn != nil {
		return m.setResetTokenFn(ctx, userID, token, expires)
	}
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, userID, hash)
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, userID string) error {
	m.deleteCalls = append(m.deleteCalls, userID)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID)
	}
	return nil
}

type mockProfileRepository struct {
	createFn           func(ctx context.Context, p *model.Profile) error
	updateFn           func(ctx context.Context, p *model.Profile) error
	getByUserIDFn      func(ctx context.Context, userID string) (*model.Profile, error)
	listFn             func(ctx context.Context) ([]model.Profile, error)
	addExperienceFn    func(ctx context.Context, userID string, exp *model.Experience) error
	updateExperienceFn func(ctx context.Context, userID string, exp *model.Experience) error
	deleteExperienceFn func(ctx context.Context, userID, id string) error
	addEducationFn     func(ctx context.Context, userID string, edu *model.Education) error
	updateEducationFn  func(ctx context.Context, userID string, edu *model.Education) error
	deleteEducationFn  func(ctx context.Context, userID, id string) error
}

func (m *mockProfileRepository) Create(ctx context.Context, p *model.Profile) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockProfileRepository) Update(ctx context.Context, p *model.Profile) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, p)
	}
	return nil
}

func (m *mockProfileRepository) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	if m.getByUserIDFn != nil {
		return m.getByUserIDFn(ctx, userID)
	}
	return nil, model.ErrProfileNotFound
}

func (m *mockProfileRepository) List(ctx context.Context) ([]model.Profile, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockProfileRepository) AddExperience(ctx context.Context, userID string, exp *model.Experience) error {
	if m.addExperienceFn != nil {
		return m.addExperienceFn(ctx, userID, exp)
	}
	return nil
}

func (m *mockProfileRepository) UpdateExperience(ctx context.Context, userID string, exp *model.Experience) error {
	if m.updateExperienceFn != nil {
		return m.updateExperienceFn(ctx, userID, exp)
	}
	return nil
}

func (m *mockProfileRepository) DeleteExperience(ctx context.Context, userID, id string) error {
	if m.deleteExperienceFn != nil {
		return m.deleteExperienceFn(ctx, userID, id)
	}
	return nil
}

func (m *mockProfileRepository) AddEducation(ctx context.Context, userID string, edu *model.Education) error {
	if m.addEducationFn != nil {
		return m.addEducationFn(ctx, userID, edu)
	}
	return nil
}

func (m *mockProfileRepository) UpdateEducation(ctx context.Context, userID string, edu *model.Education) error {
	if m.updateEducationFn != nil {
		return m.updateEducationFn(ctx, userID, edu)
	}
	return nil
}

func (m *mockProfileRepository) DeleteEducation(ctx context.Context, userID, id string) error {
	if m.deleteEducationFn != nil {
		return m.deleteEducationFn(ctx, userID, id)
	}
	return nil
}

type mockPostRepository struct {
	createFn        func(ctx context.Context, p *model.Post) error
	getByIDFn       func(ctx context.Context, id string) (*model.Post, error)
	listFn          func(ctx context.Context) ([]model.Post, error)
	deleteFn        func(ctx context.Context, id string) error
	likeFn          func(ctx context.Context, postID string, like *model.Like) error
	unlikeFn        func(ctx context.Context, postID, userID string) error
	addCommentFn    func(ctx context.Context, postID string, c *model.Comment) error
	deleteCommentFn func(ctx context.Context, postID, commentID string) error

	deleteCalls        []string
	deleteCommentCalls []string
}

func (m *mockPostRepository) Create(ctx context.Context, p *model.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	p.ID = "p-1"
	p.CreatedAt = time.Now()
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) List(ctx context.Context) ([]model.Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockPostRepository) Delete(ctx context.Context, id string) error {
	m.deleteCalls = append(m.deleteCalls, id)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPostRepository) Like(ctx context.Context, postID string, like *model.Like) error {
	if m.likeFn != nil {
		return m.likeFn(ctx, postID, like)
	}
	return nil
}

func (m *mockPostRepository) Unlike(ctx context.Context, postID, userID string) error {
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, postID, userID)
	}
	return nil
}

func (m *mockPostRepository) AddComment(ctx context.Context, postID string, c *model.Comment) error {
	if m.addCommentFn != nil {
		return m.addCommentFn(ctx, postID, c)
	}
	return nil
}

func (m *mockPostRepository) DeleteComment(ctx context.Context, postID, commentID string) error {
	m.deleteCommentCalls = append(m.deleteCommentCalls, commentID)
	if m.deleteCommentFn != nil {
		return m.deleteCommentFn(ctx, postID, commentID)
	}
	return nil
}

type mockMailer struct {
	mu   sync.Mutex
	err  error
	sent []Mail
}

func (m *mockMailer) Send(_ context.Context, msg Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

type mockPublisher struct {
	err    error
	events []queue.AccountEvent
}

func (m *mockPublisher) Publish(_ context.Context, _ string, event queue.AccountEvent) (string, error) {
	m.events = append(m.events, event)
	if m.err != nil {
		return "", m.err
	}
	return "1-0", nil
}

type mockAvatars struct {
	saveErr error
	saved   []string
	removed []string
}

func (m *mockAvatars) Save(_ context.Context, userID string, _ *model.AvatarUpload) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved = append(m.saved, userID)
	return "https://cdn.example.com/avatars/" + userID + ".jpg", nil
}

func (m *mockAvatars) Remove(_ context.Context, userID string) error {
	m.removed = append(m.removed, userID)
	return nil
}
