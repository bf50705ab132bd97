// Package media stores producer-supplied recipe images. The API accepts
// images as base64 data URIs (the shape browser clients produce); this
// package decodes them and writes the bytes under a configured directory,
// returning the relative path recorded on the recipe row.
package media

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidDataURI is returned when the payload is not a decodable
// base64 image.
var ErrInvalidDataURI = errors.New("invalid base64 image payload")

// extByMIME maps the accepted image MIME subtypes to file extensions.
var extByMIME = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"jpg":  ".jpg",
	"gif":  ".gif",
	"webp": ".webp",
}

// Store writes images into a directory on local disk.
type Store struct {
	// Dir is the destination directory; created on first save.
	Dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Save decodes a base64 data URI (or bare base64 payload, treated as PNG)
// and writes it to a uniquely named file. It returns the path of the stored
// file relative to the store's parent, e.g. "recipes/3f2a….png".
func (s *Store) Save(dataURI string) (string, error) {
	payload, ext, err := splitDataURI(dataURI)
	if err != nil {
		return "", err
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrInvalidDataURI
	}
	if len(raw) == 0 {
		return "", ErrInvalidDataURI
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.Dir, name), raw, 0o644); err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Join(filepath.Base(s.Dir), name)), nil
}

// splitDataURI separates the base64 payload from an optional
// "data:image/<subtype>;base64," prefix.
func splitDataURI(s string) (payload, ext string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", ErrInvalidDataURI
	}
	if !strings.HasPrefix(s, "data:") {
		return s, ".png", nil
	}
	head, rest, ok := strings.Cut(s, ",")
	if !ok {
		return "", "", ErrInvalidDataURI
	}
	head = strings.TrimPrefix(head, "data:")
	if !strings.HasSuffix(head, ";base64") {
		return "", "", ErrInvalidDataURI
	}
	mime := strings.TrimSuffix(head, ";base64")
	sub := strings.TrimPrefix(mime, "image/")
	e, ok := extByMIME[strings.ToLower(sub)]
	if !ok {
		return "", "", ErrInvalidDataURI
	}
	return rest, e, nil
}
