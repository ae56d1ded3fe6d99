package lifecycle

import (
	"context"
	"encoding/json"
	"os"

	"github.com/wassette-go/wassette/pkg/policy"
	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// SnapshotEntry is one component's portable state: enough to reload it
// on another host and restore its grants. It never carries the
// component's wasm bytes (those are re-fetched from SourceURI) or
// secret values (those stay local to the secrets store).
type SnapshotEntry struct {
	ComponentID string           `json:"component_id"`
	SourceURI   string           `json:"source_uri"`
	Mode        Mode             `json:"mode"`
	ToolFilter  string           `json:"tool_filter,omitempty"`
	Policy      *policy.Document `json:"policy"`
}

// Snapshot is the top-level exported state document.
type Snapshot struct {
	Version    int             `json:"version"`
	Components []SnapshotEntry `json:"components"`
}

const snapshotVersion = 1

// Export captures every loaded component's source URI, mode, and
// current policy document into a Snapshot. The tool_filter a
// component was loaded with is not tracked by ComponentRecord and is
// omitted; a reload after Import re-admits every exported function.
func (m *Manager) Export() (*Snapshot, error) {
	m.mu.RLock()
	records := make([]*ComponentRecord, 0, len(m.components))
	for _, rec := range m.components {
		records = append(records, rec)
	}
	m.mu.RUnlock()

	snap := &Snapshot{Version: snapshotVersion}
	for _, rec := range records {
		doc, err := m.policy.Get(rec.ComponentID)
		if err != nil {
			return nil, err
		}
		snap.Components = append(snap.Components, SnapshotEntry{
			ComponentID: rec.ComponentID,
			SourceURI:   rec.SourceURI,
			Mode:        rec.Mode,
			Policy:      doc,
		})
	}
	return snap, nil
}

// WriteSnapshotFile serializes snap and writes it to path atomically.
func WriteSnapshotFile(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to encode snapshot", err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to write snapshot file", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to write snapshot file", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to sync snapshot file", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to write snapshot file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to finalize snapshot file", err)
	}
	return nil
}

// ReadSnapshotFile reads and parses a Snapshot previously written by
// WriteSnapshotFile.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodePolicyPersistFailed, "failed to read snapshot file", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodePolicyParseFailed, "failed to parse snapshot file", err)
	}
	return &snap, nil
}

// Import loads every component named in snap (re-fetching each from
// its SourceURI) and then overwrites its policy document with the
// snapshot's, so grants travel with the component across hosts. A
// component that fails to load is skipped and reported via the
// returned error slice rather than aborting the whole import.
func (m *Manager) Import(ctx context.Context, snap *Snapshot) []error {
	var errs []error
	for _, entry := range snap.Components {
		if _, err := m.Load(ctx, entry.SourceURI, entry.ToolFilter, entry.Mode); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := m.policy.Reset(entry.ComponentID); err != nil {
			errs = append(errs, err)
			continue
		}
		if entry.Policy != nil {
			if err := restorePolicy(m.policy, entry.ComponentID, entry.Policy); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}

func restorePolicy(engine *policy.Engine, componentID string, doc *policy.Document) error {
	if doc.Permissions.Storage != nil {
		for _, rule := range doc.Permissions.Storage.Allow {
			if err := engine.GrantStorage(componentID, rule.URI, rule.Access); err != nil {
				return err
			}
		}
	}
	if doc.Permissions.Network != nil {
		for _, rule := range doc.Permissions.Network.Allow {
			if err := engine.GrantNetwork(componentID, rule.Host); err != nil {
				return err
			}
		}
	}
	if doc.Permissions.Environment != nil {
		for _, rule := range doc.Permissions.Environment.Allow {
			if err := engine.GrantEnvironment(componentID, rule.Key); err != nil {
				return err
			}
		}
	}
	return nil
}
