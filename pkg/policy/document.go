// Package policy owns the per-component capability allow-lists: storage,
// network, and environment-variable rules, their grant/revoke/reset
// algebra, on-disk persistence, and capability-context materialization.
package policy

import (
	"gopkg.in/yaml.v3"

	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// Version is the only policy document schema version this engine
// understands.
const Version = "1.0"

// Access identifies a storage access mode.
type Access string

const (
	AccessRead  Access = "read"
	AccessWrite Access = "write"
)

// StorageRule allow-lists a storage URI for the given access modes.
type StorageRule struct {
	URI    string   `yaml:"uri"`
	Access []string `yaml:"access"`
}

// NetworkRule allow-lists a network host (bare or single-label wildcard).
type NetworkRule struct {
	Host string `yaml:"host"`
}

// EnvironmentRule allow-lists an environment variable name.
type EnvironmentRule struct {
	Key string `yaml:"key"`
}

// Permissions groups the three allow-lists. A nil sub-key means "no rules
// of that kind", matching the external YAML format where the sub-keys
// may be omitted entirely.
type Permissions struct {
	Storage     *StoragePermissions     `yaml:"storage,omitempty"`
	Network     *NetworkPermissions     `yaml:"network,omitempty"`
	Environment *EnvironmentPermissions `yaml:"environment,omitempty"`
}

type StoragePermissions struct {
	Allow []StorageRule `yaml:"allow,omitempty"`
}

type NetworkPermissions struct {
	Allow []NetworkRule `yaml:"allow,omitempty"`
}

type EnvironmentPermissions struct {
	Allow []EnvironmentRule `yaml:"allow,omitempty"`
}

// Document is a component's full policy: deny-by-default allow-lists
// across storage, network, and environment variables.
type Document struct {
	Version     string      `yaml:"version"`
	Description string      `yaml:"description,omitempty"`
	Permissions Permissions `yaml:"permissions,omitempty"`
}

// NewDocument returns an empty (deny-everything) policy document.
func NewDocument() *Document {
	return &Document{Version: Version}
}

// Clone returns a deep copy, used to give callers a copy-on-write
// snapshot that won't be mutated out from under them by a concurrent
// grant/revoke.
func (d *Document) Clone() *Document {
	if d == nil {
		return NewDocument()
	}
	out := &Document{Version: d.Version, Description: d.Description}
	if d.Permissions.Storage != nil {
		out.Permissions.Storage = &StoragePermissions{Allow: append([]StorageRule(nil), d.Permissions.Storage.Allow...)}
		for i, r := range out.Permissions.Storage.Allow {
			out.Permissions.Storage.Allow[i].Access = append([]string(nil), r.Access...)
		}
	}
	if d.Permissions.Network != nil {
		out.Permissions.Network = &NetworkPermissions{Allow: append([]NetworkRule(nil), d.Permissions.Network.Allow...)}
	}
	if d.Permissions.Environment != nil {
		out.Permissions.Environment = &EnvironmentPermissions{Allow: append([]EnvironmentRule(nil), d.Permissions.Environment.Allow...)}
	}
	return out
}

// ParseDocument parses a policy YAML document, rejecting unknown
// top-level keys.
func ParseDocument(data []byte) (*Document, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodePolicyParseFailed, "invalid YAML", err)
	}
	for k := range raw {
		switch k {
		case "version", "description", "permissions":
		default:
			return nil, wassetteerr.New(wassetteerr.CodePolicyParseFailed, "unknown top-level key: "+k)
		}
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodePolicyParseFailed, "failed to parse policy document", err)
	}
	if doc.Version == "" {
		doc.Version = Version
	}
	if doc.Version != Version {
		return nil, wassetteerr.New(wassetteerr.CodePolicyParseFailed, "unsupported policy version: "+doc.Version)
	}
	return &doc, nil
}

// Serialize marshals a policy document to YAML in the external format.
func Serialize(doc *Document) ([]byte, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodePolicyParseFailed, "failed to serialize policy document", err)
	}
	return out, nil
}
