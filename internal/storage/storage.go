package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ObjectInfo represents metadata for a stored document blob.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations the document
// service needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}

// NewObjectKey builds a collision-free key under the user's prefix while
// keeping the original extension, e.g. "users/7/3f2a...-invoice.pdf".
func NewObjectKey(userID int64, fileName string) string {
	base := sanitizeName(filepath.Base(fileName))
	return path.Join(UserPrefix(userID), uuid.NewString()+"-"+base)
}

// UserPrefix is the key prefix shared by all of a user's documents.
func UserPrefix(userID int64) string {
	return fmt.Sprintf("users/%d", userID)
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return "document"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
