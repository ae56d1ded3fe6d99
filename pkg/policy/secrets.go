package policy

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// SecretStore persists per-component secret values (credentials a
// component needs to present to an allow-listed network host, for
// instance) separately from the policy document itself: secrets are
// never serialized alongside the allow-lists and never appear in
// Document.Serialize output.
type SecretStore struct {
	baseDir string
}

// NewSecretStore creates a SecretStore rooted at baseDir. The
// directory and every secrets file written under it are restricted to
// owner-only access, since these files hold plaintext credentials.
func NewSecretStore(baseDir string) (*SecretStore, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to create secrets directory", err)
	}
	return &SecretStore{baseDir: baseDir}, nil
}

func (s *SecretStore) path(componentID string) string {
	return filepath.Join(s.baseDir, componentID+".secrets.json")
}

func (s *SecretStore) load(componentID string) (map[string]string, error) {
	data, err := os.ReadFile(s.path(componentID))
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to read secrets file", err)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to parse secrets file", err)
	}
	return m, nil
}

func (s *SecretStore) save(componentID string, m map[string]string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to marshal secrets", err)
	}
	if err := writeFileAtomic(s.path(componentID), data, 0o600); err != nil {
		return wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to persist secrets file", err)
	}
	return nil
}

// Set stores a secret value under key for componentID, overwriting
// any existing value.
func (s *SecretStore) Set(componentID, key, value string) error {
	m, err := s.load(componentID)
	if err != nil {
		return err
	}
	m[key] = value
	return s.save(componentID, m)
}

// Delete removes a secret value. It is not an error for the key to be
// absent.
func (s *SecretStore) Delete(componentID, key string) error {
	m, err := s.load(componentID)
	if err != nil {
		return err
	}
	delete(m, key)
	return s.save(componentID, m)
}

// Get returns a secret value and whether it was present.
func (s *SecretStore) Get(componentID, key string) (string, bool, error) {
	m, err := s.load(componentID)
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

// Keys lists the secret keys configured for componentID, without
// their values, for display purposes (e.g. `wassette get-policy`).
func (s *SecretStore) Keys(componentID string) ([]string, error) {
	m, err := s.load(componentID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys, nil
}
