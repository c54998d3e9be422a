package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultAllowedImageTypes are the photo formats accepted for listings
var DefaultAllowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// PresignedURLResult contains a presigned URL for direct upload/download
type PresignedURLResult struct {
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Storage is the object store used for listing photos. Clients upload
// directly with a presigned URL; the API never proxies image bytes.
type Storage interface {
	// GetURL returns the public URL for a key
	GetURL(key string) string

	// GetPresignedUploadURL generates a presigned PUT for direct upload
	GetPresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (*PresignedURLResult, error)

	// Exists reports whether an object was uploaded under key
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes an object
	Delete(ctx context.Context, key string) error
}

// GenerateCarImageKey generates a unique storage key for a listing photo
func GenerateCarImageKey(carID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	uniqueID := uuid.New().String()[:8]
	timestamp := time.Now().UTC().Format("20060102")

	// cars/{car_id}/images/{yyyymmdd}_{unique}{ext}
	return fmt.Sprintf("cars/%s/images/%s_%s%s", carID.String(), timestamp, uniqueID, ext)
}

// KeyBelongsToCar checks that a client-supplied key was issued for carID
func KeyBelongsToCar(carID uuid.UUID, key string) bool {
	prefix := fmt.Sprintf("cars/%s/images/", carID.String())
	return strings.HasPrefix(key, prefix) && !strings.Contains(key, "..") && len(key) > len(prefix)
}

// ValidateMimeType checks if the mime type is allowed
func ValidateMimeType(mimeType string, allowedTypes []string) bool {
	if len(allowedTypes) == 0 {
		return true
	}

	mimeType = strings.ToLower(mimeType)
	for _, allowed := range allowedTypes {
		if strings.ToLower(allowed) == mimeType {
			return true
		}
		// "image/*"
		if strings.HasSuffix(allowed, "/*") {
			prefix := strings.TrimSuffix(allowed, "*")
			if strings.HasPrefix(mimeType, prefix) {
				return true
			}
		}
	}
	return false
}

// GetMimeTypeFromExtension returns the MIME type for common photo extensions
func GetMimeTypeFromExtension(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}
