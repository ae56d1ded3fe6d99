package policy

import (
	"os"
	"path/filepath"

	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// Store persists one policy document per component, keyed by
// component ID.
type Store interface {
	// Load returns the document for componentID, or a fresh
	// NewDocument if none has been persisted yet.
	Load(componentID string) (*Document, error)

	// Save atomically persists the document for componentID.
	Save(componentID string, doc *Document) error

	// Delete removes any persisted document for componentID. It is
	// not an error for none to exist.
	Delete(componentID string) error
}

// FileStore is a Store backed by one YAML file per component under a
// base directory, written via temp-file-fsync-then-rename so a crash
// mid write never leaves a truncated or unflushed policy on disk.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a FileStore rooted at baseDir, creating the
// directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to create policy directory", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(componentID string) string {
	return filepath.Join(s.baseDir, componentID+".policy.yaml")
}

func (s *FileStore) Load(componentID string) (*Document, error) {
	data, err := os.ReadFile(s.path(componentID))
	if os.IsNotExist(err) {
		return NewDocument(), nil
	}
	if err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to read policy file", err)
	}
	doc, parseErr := ParseDocument(data)
	if parseErr != nil {
		return nil, parseErr
	}
	return doc, nil
}

func (s *FileStore) Save(componentID string, doc *Document) error {
	data, err := Serialize(doc)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(s.path(componentID), data, 0o644); err != nil {
		return wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to persist policy file", err).
			WithDetail("component_id", componentID)
	}
	return nil
}

// writeFileAtomic writes data to path through a sibling temp file that
// is fsynced to stable storage before being renamed into place, so a
// crash at any point leaves either the prior file or the complete new
// one.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (s *FileStore) Delete(componentID string) error {
	err := os.Remove(s.path(componentID))
	if err != nil && !os.IsNotExist(err) {
		return wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to delete policy file", err)
	}
	return nil
}
