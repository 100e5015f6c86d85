package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// MaxUploadSizeBytes is the largest photo the portal accepts
const MaxUploadSizeBytes int64 = 10 * 1024 * 1024

const thumbnailWidth = 400

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ErrUnsupportedType is returned when the MIME type is not an accepted image
var ErrUnsupportedType = errors.New("unsupported image type")

// ErrTooLarge is returned when the upload exceeds MaxUploadSizeBytes
var ErrTooLarge = errors.New("file size exceeds 10MB limit")

// StoredPhoto describes a saved photo and its generated thumbnail
type StoredPhoto struct {
	ObjectKey    string
	URL          string
	ThumbnailKey string
	ThumbnailURL string
}

// LocalStorage saves photos on the local filesystem and serves them from a
// public URL prefix
type LocalStorage struct {
	rootDir   string
	publicURL string
}

// NewLocalStorage creates a filesystem-backed photo store. rootDir is
// created if it does not exist.
func NewLocalStorage(rootDir, publicURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{
		rootDir:   rootDir,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// SavePhoto validates, stores, and thumbnails an uploaded photo. The object
// key is namespaced under the given prefix (e.g. "guitars/<id>").
func (s *LocalStorage) SavePhoto(prefix, fileName, mimeType string, r io.Reader) (*StoredPhoto, error) {
	if !imageMimeTypes[mimeType] {
		return nil, ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > MaxUploadSizeBytes {
		return nil, ErrTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = extensionFromMimeType(mimeType)
	}

	objectKey := path.Join(sanitizeSegment(prefix), uuid.New().String()+ext)
	if err := s.writeFile(objectKey, data); err != nil {
		return nil, err
	}

	thumbnail := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	thumbnailKey := thumbnailObjectKey(objectKey)
	if err := s.writeFile(thumbnailKey, buf.Bytes()); err != nil {
		return nil, err
	}

	return &StoredPhoto{
		ObjectKey:    objectKey,
		URL:          s.ObjectURL(objectKey),
		ThumbnailKey: thumbnailKey,
		ThumbnailURL: s.ObjectURL(thumbnailKey),
	}, nil
}

// Delete removes an object and its thumbnail if present
func (s *LocalStorage) Delete(objectKey string) error {
	if objectKey == "" {
		return nil
	}
	if err := s.removeFile(objectKey); err != nil {
		return err
	}
	// Thumbnails are best-effort; the original may not have one
	_ = s.removeFile(thumbnailObjectKey(objectKey))
	return nil
}

// ObjectURL returns the public URL for an object key
func (s *LocalStorage) ObjectURL(objectKey string) string {
	return s.publicURL + "/" + objectKey
}

// Owns reports whether a URL points at this store
func (s *LocalStorage) Owns(url string) bool {
	return strings.HasPrefix(url, s.publicURL+"/")
}

// RootDir returns the directory served as the public URL prefix
func (s *LocalStorage) RootDir() string {
	return s.rootDir
}

func (s *LocalStorage) writeFile(objectKey string, data []byte) error {
	full, err := s.resolve(objectKey)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}

func (s *LocalStorage) removeFile(objectKey string) error {
	full, err := s.resolve(objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

func (s *LocalStorage) resolve(objectKey string) (string, error) {
	if objectKey == "" || strings.Contains(objectKey, "..") || strings.HasPrefix(objectKey, "/") {
		return "", fmt.Errorf("invalid object key: %q", objectKey)
	}
	return filepath.Join(s.rootDir, filepath.FromSlash(objectKey)), nil
}

func thumbnailObjectKey(objectKey string) string {
	dir := path.Dir(objectKey)
	filename := path.Base(objectKey)
	return path.Join(dir, "thumbnails", filename)
}

func sanitizeSegment(input string) string {
	var out strings.Builder
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '/' {
			out.WriteRune(r)
		}
	}
	return strings.Trim(out.String(), "/")
}

func extensionFromMimeType(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
