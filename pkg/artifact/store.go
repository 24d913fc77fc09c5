// Package artifact writes rendered artwork files to the gallery directory
// and maps them to public URLs.
//
// Each piece owns one directory:
//
//	<root>/<id>/artwork.svg
//	<root>/<id>/artwork.png
//	<root>/<id>/artwork.json
//
// served by the API under <base_url>/gallery/<id>/artwork.<ext>.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
)

// Formats written by the store.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatPDF  = "pdf"
)

const baseName = "artwork"

// Store is a directory of piece artifacts.
type Store struct {
	mu      sync.RWMutex
	root    string
	baseURL string
}

// NewStore creates root if needed. baseURL is the public origin of the API;
// a trailing slash is ignored.
func NewStore(root, baseURL string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("artifact root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create gallery dir: %w", err)
	}
	return &Store{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the gallery directory.
func (s *Store) Root() string { return s.root }

// Path returns the file path of the artifact of piece id in format.
func (s *Store) Path(id, format string) string {
	return filepath.Join(s.root, id, baseName+"."+format)
}

// URL returns the public URL of the artifact of piece id in format.
func (s *Store) URL(id, format string) string {
	return fmt.Sprintf("%s/gallery/%s/%s.%s", s.baseURL, id, baseName, format)
}

// Write stores data as the artifact of piece id in format and returns its
// public URL.
func (s *Store) Write(id, format string, data []byte) (string, error) {
	if err := derrors.ValidatePieceID(id); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Join(s.root, id), 0o755); err != nil {
		return "", fmt.Errorf("create piece dir: %w", err)
	}
	path := s.Path(id, format)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", format, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("write %s: %w", format, err)
	}
	return s.URL(id, format), nil
}

// Read returns the artifact of piece id in format.
func (s *Store) Read(id, format string) ([]byte, error) {
	if err := derrors.ValidatePieceID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(id, format))
	if os.IsNotExist(err) {
		return nil, derrors.New(derrors.ErrCodeNotFound, "no %s artifact for piece %s", format, id)
	}
	return data, err
}

// Remove deletes every artifact of piece id. Removing an unknown piece is
// not an error.
func (s *Store) Remove(id string) error {
	if err := derrors.ValidatePieceID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(s.root, id)); err != nil {
		return fmt.Errorf("remove piece dir: %w", err)
	}
	return nil
}
