package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MediaStore persists downloaded vendor media into a scratch directory
// and deletes it once a product has been forwarded.
type MediaStore struct {
	dir string
}

// NewMediaStore creates the scratch directory if needed.
func NewMediaStore(dir string) (*MediaStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("media: create dir %q: %w", dir, err)
	}
	return &MediaStore{dir: dir}, nil
}

// Save writes media bytes under a timestamp-derived filename. The
// extension follows the declared mimetype: mp4 for video, jpg for
// everything else.
func (m *MediaStore) Save(data []byte, mimetype string) (string, error) {
	ext := "jpg"
	if strings.Contains(mimetype, "video") {
		ext = "mp4"
	}

	path := filepath.Join(m.dir, fmt.Sprintf("vendor_%d.%s", time.Now().UnixNano(), ext))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("media: write %q: %w", path, err)
	}
	return path, nil
}

// Delete removes one stored file.
func (m *MediaStore) Delete(path string) error {
	return os.Remove(path)
}
