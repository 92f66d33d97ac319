package omsvalues

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// MaxResourceSize is the maximum size of a single resource document (100MB).
const MaxResourceSize = 100 * 1024 * 1024

// Snapshot errors.
var (
	// ErrResourceTooLarge is returned when a resource exceeds MaxResourceSize.
	ErrResourceTooLarge = errors.New("omsvalues: resource exceeds 100MB size limit")

	// ErrResourceNotFound is returned when a snapshot has no document with the requested name.
	ErrResourceNotFound = errors.New("omsvalues: resource not found")

	// ErrInvalidResourceName is returned for absolute names or names escaping the snapshot root.
	ErrInvalidResourceName = errors.New("omsvalues: invalid resource name")
)

// Snapshot gives access to the documents of a packaged project
// (e.g. "resources/gains.ssv"). Names are slash-separated and relative.
type Snapshot interface {
	// ReadResource returns the content of name or an error wrapping ErrResourceNotFound.
	ReadResource(name string) ([]byte, error)

	// WriteResource stores data under name, replacing any previous content.
	WriteResource(name string, data []byte) error

	// DeleteResource removes name. Removing a missing document is not an error.
	DeleteResource(name string) error
}

// DirSnapshot is a Snapshot backed by a directory of an afero file system.
type DirSnapshot struct {
	fs   afero.Fs
	root string
}

// NewDirSnapshot returns a snapshot rooted at root on fs.
func NewDirSnapshot(fs afero.Fs, root string) *DirSnapshot {
	return &DirSnapshot{fs: fs, root: root}
}

// NewMemSnapshot returns a snapshot held in memory.
func NewMemSnapshot() *DirSnapshot {
	return NewDirSnapshot(afero.NewMemMapFs(), "/")
}

// Fs returns the underlying file system.
func (s *DirSnapshot) Fs() afero.Fs {
	return s.fs
}

// Root returns the directory the snapshot is rooted at.
func (s *DirSnapshot) Root() string {
	return s.root
}

func (s *DirSnapshot) resolve(name string) (string, error) {
	clean := path.Clean(name)
	if name == "" || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidResourceName, name)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// ReadResource reads name from the snapshot directory.
func (s *DirSnapshot) ReadResource(name string) ([]byte, error) {
	p, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	info, err := s.fs.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, name)
		}
		return nil, err
	}
	if info.Size() > MaxResourceSize {
		return nil, ErrResourceTooLarge
	}
	return afero.ReadFile(s.fs, p)
}

// WriteResource persists data with atomic write semantics: the content is
// written to a temporary file in the same directory and renamed into place.
func (s *DirSnapshot) WriteResource(name string, data []byte) error {
	if len(data) > MaxResourceSize {
		return ErrResourceTooLarge
	}
	targetPath, err := s.resolve(name)
	if err != nil {
		return err
	}

	dir := filepath.Dir(targetPath)
	if dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tempPath, err := generateTempFileName(targetPath)
	if err != nil {
		return err
	}

	// Ensure temp file is cleaned up on any error
	var tempFileCreated bool
	defer func() {
		if tempFileCreated {
			_ = s.fs.Remove(tempPath)
		}
	}()

	if err := afero.WriteFile(s.fs, tempPath, data, 0o644); err != nil {
		return err
	}
	tempFileCreated = true

	if err := s.fs.Rename(tempPath, targetPath); err != nil {
		return err
	}
	tempFileCreated = false

	return nil
}

// DeleteResource removes name from the snapshot directory.
func (s *DirSnapshot) DeleteResource(name string) error {
	p, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// generateTempFileName generates a unique temporary file name for atomic writes.
// Format: targetPath + ".tmp." + randomHex
func generateTempFileName(targetPath string) (string, error) {
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return targetPath + ".tmp." + hex.EncodeToString(randomBytes), nil
}
