// Package uploads validates and persists image uploads under per-category
// directories.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/auric/jewelry-be/internal/apperr"
)

// Category selects the directory an upload is stored under. It is a
// structural property of the route group, never derived from request
// content.
type Category string

const (
	CategoryDesigns  Category = "designs"
	CategoryProducts Category = "products"
)

// Categories lists every category the store manages.
var Categories = []Category{CategoryDesigns, CategoryProducts}

// Both the file extension and the declared content type must appear in the
// allow-lists; a mismatched pair is rejected even when one signal passes.
var (
	allowedExtensions = map[string]bool{
		".jpeg": true,
		".jpg":  true,
		".png":  true,
		".gif":  true,
		".webp": true,
	}
	allowedContentTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	}
)

// StoredFile describes a validated upload persisted on disk. It outlives
// the request that created it; ownership transfers to the domain row that
// references Filename.
type StoredFile struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// Store writes validated uploads under a base directory, one subdirectory
// per category. Generated names are unique, so concurrent writers never
// collide.
type Store struct {
	baseDir  string
	maxBytes int64
}

// NewStore creates a Store rooted at baseDir with the given size ceiling.
func NewStore(baseDir string, maxBytes int64) *Store {
	return &Store{baseDir: baseDir, maxBytes: maxBytes}
}

// EnsureDirs creates the category directories. Called once at startup, not
// per request.
func (s *Store) EnsureDirs() error {
	for _, cat := range Categories {
		if err := os.MkdirAll(s.dir(cat), 0755); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) dir(cat Category) string {
	return filepath.Join(s.baseDir, string(cat))
}

// Save reads the named multipart field, validates it and writes it under
// the category directory with a generated name. The caller-supplied
// filename is never used for storage. A request that carries no file in the
// field is not an error; Save returns (nil, nil) so uploads stay optional.
func (s *Store) Save(r *http.Request, field string, cat Category) (*StoredFile, error) {
	if err := r.ParseMultipartForm(s.maxBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, nil
		}
		return nil, apperr.Validation("malformed multipart body")
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperr.Validation(fmt.Sprintf("could not read file field %q", field))
	}
	defer file.Close()

	if header.Size > s.maxBytes {
		return nil, apperr.PayloadTooLarge(fmt.Sprintf("file size too large, maximum is %d bytes", s.maxBytes))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType := header.Header.Get("Content-Type")
	if !allowedExtensions[ext] || !allowedContentTypes[contentType] {
		return nil, apperr.UnsupportedMedia("only image files are allowed (jpeg, jpg, png, gif, webp)")
	}

	name := fmt.Sprintf("%s-%s%s", field, uuid.New().String(), ext)
	dst := filepath.Join(s.dir(cat), name)

	out, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	// The declared size passed the check above, but the stream itself can
	// still be longer.
	written, err := io.Copy(out, io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("failed to write upload file: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(dst)
		return nil, apperr.PayloadTooLarge(fmt.Sprintf("file size too large, maximum is %d bytes", s.maxBytes))
	}

	return &StoredFile{Filename: name, Path: dst, Size: written}, nil
}

// Remove unlinks a stored file. A file already gone is not an error, so
// replace and delete flows stay idempotent.
func (s *Store) Remove(cat Category, filename string) error {
	if filename == "" {
		return nil
	}
	if filepath.Base(filename) != filename {
		return apperr.Validation("invalid stored filename")
	}
	if err := os.Remove(filepath.Join(s.dir(cat), filename)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ListOlderThan returns the filenames under a category whose modification
// time is before the cutoff. Used by the orphan sweeper; the age guard
// keeps in-flight uploads, written before their row exists, off the list.
func (s *Store) ListOlderThan(cat Category, age time.Duration) ([]string, error) {
	entries, err := os.ReadDir(s.dir(cat))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	cutoff := time.Now().Add(-age)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
