// Package storage stores uploaded pitch files in object storage.
package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectPath builds `{userId}/{startupId}/{unixMillis}-{fileName}`.
// Only the base name of fileName is kept so callers cannot escape the prefix.
func ObjectPath(userID, startupID uuid.UUID, uploadedAt time.Time, fileName string) string {
	return fmt.Sprintf("%s/%s/%d-%s", userID, startupID, uploadedAt.UnixMilli(), BaseName(fileName))
}

// BaseName reduces an uploaded file name to its last path element.
func BaseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return "file"
	}
	return name
}

// validKey rejects keys that would resolve outside the storage root.
func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return fmt.Errorf("invalid object key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return fmt.Errorf("invalid object key %q", key)
		}
	}
	return nil
}
