package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"Yui-Editor/studio/internal/models"
)

// FileStore keeps uploaded resource bytes on disk, laid out as
// <dir>/<project id>/<resource type>/<name>.
type FileStore struct {
	directory string
	mu        sync.Mutex
}

func NewFileStore(directory string) (*FileStore, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{directory: directory}, nil
}

// cleanName rejects anything that is not a plain file name
func cleanName(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

// Path returns where a resource lives on disk
func (s *FileStore) Path(id models.ProjectID, rtype models.ResourceType, name string) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	project, err := cleanName(string(id))
	if err != nil {
		return "", err
	}
	return filepath.Join(s.directory, project, string(rtype), name), nil
}

// Put writes a resource, replacing any previous upload of the same name
func (s *FileStore) Put(id models.ProjectID, rtype models.ResourceType, name string, r io.Reader) (int64, error) {
	path, err := s.Path(id, rtype, name)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create resource directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create resource: %w", err)
	}
	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to write resource: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to store resource: %w", err)
	}
	return n, nil
}

// Remove deletes a resource. A missing file is not an error.
func (s *FileStore) Remove(id models.ProjectID, rtype models.ResourceType, name string) error {
	path, err := s.Path(id, rtype, name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove resource: %w", err)
	}
	return nil
}

// Rename moves a resource to a new name. A missing file is not an error.
func (s *FileStore) Rename(id models.ProjectID, rtype models.ResourceType, oldName, newName string) error {
	from, err := s.Path(id, rtype, oldName)
	if err != nil {
		return err
	}
	to, err := s.Path(id, rtype, newName)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Rename(from, to); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to rename resource: %w", err)
	}
	return nil
}

// RemoveAll deletes every file kept for a project
func (s *FileStore) RemoveAll(id models.ProjectID) error {
	project, err := cleanName(string(id))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(s.directory, project)); err != nil {
		return fmt.Errorf("failed to remove project files: %w", err)
	}
	return nil
}
