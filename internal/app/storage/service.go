/*
Package storage implements avatar ingestion: validated image bytes go in, a
stable public resource path comes out. The caller records that path on the
user's profile; this package never touches the user store.
*/
package storage

import (
	"context"
	"net/http"
	"strings"

	"beacon/internal/configs"
	"beacon/internal/pkg/errs"
)

const (
	// MaxAvatarSizeMB is the maximum allowed decoded image size in megabytes.
	MaxAvatarSizeMB = 5

	// MaxAvatarSize is the maximum allowed decoded image size in bytes.
	MaxAvatarSize = MaxAvatarSizeMB * 1024 * 1024
)

// MIMEToExt maps the permitted avatar MIME types to their file extension.
var MIMEToExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// AvatarStore is the public interface for avatar persistence backends.
type AvatarStore interface {
	// Save stores the image bytes for the given username and returns the
	// public path under which the avatar is reachable. Re-uploading for the
	// same username overwrites the previous avatar.
	Save(ctx context.Context, username string, data []byte, mimeType string) (string, error)
}

// NewAvatarStore is the factory function for AvatarStore, selecting the
// concrete implementation from the configured backend.
func NewAvatarStore(cfg *configs.AppConfig) (AvatarStore, error) {
	switch cfg.AvatarBackend {
	case configs.AvatarBackendS3:
		return newS3Store(cfg)
	default:
		return newLocalStore(cfg.AvatarDir, cfg.AvatarBaseURL)
	}
}

// ValidateAvatar checks the decoded image against the size cap and the
// permitted formats. The MIME type is sniffed from the content, never trusted
// from the client. It returns the detected MIME type on success.
func ValidateAvatar(data []byte) (string, *errs.CustomError) {
	if len(data) == 0 {
		return "", errs.NewError(errs.ErrInvalidParams)
	}

	if len(data) > MaxAvatarSize {
		return "", errs.NewError(errs.ErrAvatarTooLarge)
	}

	mimeType := strings.ToLower(http.DetectContentType(data))
	if _, ok := MIMEToExt[mimeType]; !ok {
		return "", errs.NewError(errs.ErrAvatarInvalid)
	}

	return mimeType, nil
}
