package model

import (
	"errors"
	"net/http"
)

// Avatars are stored as AvatarSize x AvatarSize JPEGs under AvatarKey.
const (
	MaxAvatarSizeBytes = 5 << 20
	AvatarSize         = 200
)

const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
)

var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
)

var avatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// AvatarUpload is an image sent with registration. ContentType is sniffed
// from Data, not taken from the client.
type AvatarUpload struct {
	Data        []byte
	ContentType string
}

// NewAvatarUpload wraps raw bytes and sniffs their type.
func NewAvatarUpload(data []byte) *AvatarUpload {
	return &AvatarUpload{Data: data, ContentType: http.DetectContentType(data)}
}

// Check enforces the size limit and the accepted formats.
func (a *AvatarUpload) Check() error {
	if len(a.Data) > MaxAvatarSizeBytes {
		return ErrFileTooLarge
	}
	if !avatarTypes[a.ContentType] {
		return ErrInvalidImageType
	}
	return nil
}

// AvatarKey is the object key of a user's uploaded avatar.
func AvatarKey(userID string) string {
	return "avatars/" + userID + ".jpg"
}
