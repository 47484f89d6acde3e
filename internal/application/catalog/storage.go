package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AllowedImageContentTypes is the whitelist of item image content types.
// SVG is excluded because it can carry scripts.
var AllowedImageContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectStorageService defines the object storage operations used for item images.
// It is implemented by the infrastructure layer (S3 or compatible stores).
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error
}

// ImageURLResolver resolves item image keys to downloadable URLs
type ImageURLResolver struct {
	storage ObjectStorageService
	expiry  time.Duration
}

// NewImageURLResolver creates a resolver; a nil storage resolves nothing
func NewImageURLResolver(storage ObjectStorageService, expiry time.Duration) *ImageURLResolver {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &ImageURLResolver{storage: storage, expiry: expiry}
}

// Resolve returns a presigned download URL for the key.
// Empty keys and storage failures yield an empty URL.
func (r *ImageURLResolver) Resolve(ctx context.Context, key string) string {
	if r == nil || r.storage == nil || key == "" {
		return ""
	}
	url, _, err := r.storage.GenerateDownloadURL(ctx, key, r.expiry)
	if err != nil {
		return ""
	}
	return url
}

// imageStorageKey builds the object key for an item image
func imageStorageKey(tenantID, itemID uuid.UUID, fileName, contentType string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || len(ext) > 6 {
		ext = AllowedImageContentTypes[contentType]
	}
	return fmt.Sprintf("items/%s/%s/%s%s", tenantID, itemID, uuid.New().String(), ext)
}
