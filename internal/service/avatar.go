package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"

	"devconnector/internal/model"
)

// Avatars keeps at most one uploaded avatar per user, keyed by user id.
type Avatars interface {
	Save(ctx context.Context, userID string, upload *model.AvatarUpload) (string, error)
	Remove(ctx context.Context, userID string) error
}

// ObjectStore is the bucket the avatars live in. Implemented by
// storage.Bucket.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType, cacheControl string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

const (
	avatarQuality = 85
	// Keys are reused per user, so the CDN copy must not outlive a day.
	avatarCacheControl = "public, max-age=86400"
)

// AvatarService normalises registration avatars and stores them.
type AvatarService struct {
	store ObjectStore
}

func NewAvatarService(store ObjectStore) *AvatarService {
	return &AvatarService{store: store}
}

// Save checks the upload, crops it to a square JPEG and stores it under
// model.AvatarKey(userID). It returns the public URL.
func (s *AvatarService) Save(ctx context.Context, userID string, upload *model.AvatarUpload) (string, error) {
	if err := upload.Check(); err != nil {
		return "", err
	}
	body, err := squareJPEG(upload.Data, model.AvatarSize)
	if err != nil {
		return "", err
	}

	key := model.AvatarKey(userID)
	if err := s.store.Put(ctx, key, body, "image/jpeg", avatarCacheControl); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	return s.store.URL(key), nil
}

// Remove deletes the user's avatar object. Users without one are a no-op on
// the bucket side.
func (s *AvatarService) Remove(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, model.AvatarKey(userID))
}

func squareJPEG(data []byte, size int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidImageType, err)
	}
	img = imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(avatarQuality)); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
