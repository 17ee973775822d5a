package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lms/config"
)

// Uploader is the object-storage contract used for thumbnails and rendered
// certificates. Keys are opaque; delivery happens through signed URLs.
type Uploader interface {
	Upload(src io.Reader, pathPrefix, filename string) (string, error)
	GetSignedURL(storageKey string) (string, error)
}

// LocalStore keeps objects on the local disk under a base directory and
// serves them from the static uploads route. Stands in for a cloud bucket in
// development and tests.
type LocalStore struct {
	BaseDir string
	BaseURL string
}

// NewLocalStore builds a LocalStore from the app configuration
func NewLocalStore() *LocalStore {
	return &LocalStore{
		BaseDir: config.AppConfig.StorageDir,
		BaseURL: config.AppConfig.StorageBaseURL,
	}
}

// Upload writes the content under pathPrefix with a timestamped unique name
// and returns the storage key.
func (s *LocalStore) Upload(src io.Reader, pathPrefix, filename string) (string, error) {
	destDir := filepath.Join(s.BaseDir, pathPrefix)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	ext := filepath.Ext(filename)
	newFilename := time.Now().Format("20060102150405") + "-" + strings.TrimSuffix(filepath.Base(filename), ext) + ext
	filePath := filepath.Join(destDir, newFilename)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return filepath.ToSlash(filepath.Join(pathPrefix, newFilename)), nil
}

// GetSignedURL returns a temporary URL for the key. The local store has no
// real signing; it appends an expiry marker so callers treat it as ephemeral.
func (s *LocalStore) GetSignedURL(storageKey string) (string, error) {
	if storageKey == "" {
		return "", fmt.Errorf("empty storage key")
	}
	expires := time.Now().Add(1 * time.Hour).Unix()
	return fmt.Sprintf("%s/%s?expires=%d", strings.TrimRight(s.BaseURL, "/"), storageKey, expires), nil
}
