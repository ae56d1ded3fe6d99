// Package builtintools translates the built-in tool surface
// (load-component, unload-component, grant/revoke-*-permission, ...)
// onto pkg/lifecycle and pkg/policy calls and returns the structured
// status objects the external protocol expects. No wire framing lives
// here; every function takes and returns plain Go values a transport
// layer marshals however it likes.
package builtintools

import (
	"context"

	"github.com/wassette-go/wassette/pkg/lifecycle"
	"github.com/wassette-go/wassette/pkg/policy"
	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// Dispatcher holds the lifecycle manager, policy engine, and secrets
// store every built-in tool delegates to.
type Dispatcher struct {
	manager *lifecycle.Manager
	policy  *policy.Engine
	secrets *policy.SecretStore
}

// New creates a Dispatcher. secrets may be nil if the embedder never
// wires set-secret/delete-secret.
func New(manager *lifecycle.Manager, policyEngine *policy.Engine, secrets *policy.SecretStore) *Dispatcher {
	return &Dispatcher{manager: manager, policy: policyEngine, secrets: secrets}
}

// Status is the common shape every built-in tool returns on failure;
// successful responses embed their own fields alongside Status "ok".
type Status struct {
	Status string `json:"status"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error,omitempty"`
}

func failure(err error) Status {
	s := Status{Status: "error", Error: err.Error()}
	if werr, ok := err.(*wassetteerr.Error); ok {
		s.Kind = string(werr.Code)
	}
	return s
}

// LoadComponentResult is load-component's success shape.
type LoadComponentResult struct {
	Status string   `json:"status"`
	ID     string   `json:"id"`
	Tools  []string `json:"tools"`
}

// LoadComponent implements `load-component(path, tools?)`. path is a
// source URI (file:// or oci://); tools is an optional tool_filter HCL
// expression restricting which exports become tools.
func (d *Dispatcher) LoadComponent(ctx context.Context, path, toolFilter string) (interface{}, error) {
	result, err := d.manager.Load(ctx, path, toolFilter, lifecycle.Stateless)
	if err != nil {
		return failure(err), err
	}
	info, _, findErr := d.findComponent(result.ComponentID)
	if findErr != nil {
		return failure(findErr), findErr
	}
	return LoadComponentResult{Status: "ok", ID: result.ComponentID, Tools: toolNames(info)}, nil
}

// UnloadComponentResult is unload-component's success shape.
type UnloadComponentResult struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// UnloadComponent implements `unload-component(id)`.
func (d *Dispatcher) UnloadComponent(ctx context.Context, componentID string) (interface{}, error) {
	if err := d.manager.Unload(ctx, componentID); err != nil {
		return failure(err), err
	}
	return UnloadComponentResult{Status: "ok", ID: componentID}, nil
}

// ComponentSummary is one entry of list-components' components array.
type ComponentSummary struct {
	ID        string   `json:"id"`
	SourceURI string   `json:"source_uri"`
	Mode      string   `json:"mode"`
	Tools     []string `json:"tools"`
}

// ListComponentsResult is list-components' success shape.
type ListComponentsResult struct {
	Components []ComponentSummary `json:"components"`
	Total      int                `json:"total"`
}

// ListComponents implements `list-components()`.
func (d *Dispatcher) ListComponents() ListComponentsResult {
	infos := d.manager.List()
	out := make([]ComponentSummary, 0, len(infos))
	for _, info := range infos {
		out = append(out, ComponentSummary{
			ID:        info.ComponentID,
			SourceURI: info.SourceURI,
			Mode:      string(info.Mode),
			Tools:     toolNames(info),
		})
	}
	return ListComponentsResult{Components: out, Total: len(out)}
}

// SearchComponentsResult is search-components' success shape.
type SearchComponentsResult struct {
	Status     string                   `json:"status"`
	Components []lifecycle.CatalogEntry `json:"components"`
}

// SearchComponents implements `search-components()`.
func (d *Dispatcher) SearchComponents() SearchComponentsResult {
	return SearchComponentsResult{Status: "ok", Components: d.manager.Search()}
}

// PolicyInfo is the policy_info field of get-policy's response: the
// allow-lists plus the configured secret keys (never the values).
type PolicyInfo struct {
	Description string                   `json:"description,omitempty"`
	Storage     []policy.StorageRule     `json:"storage,omitempty"`
	Network     []policy.NetworkRule     `json:"network,omitempty"`
	Environment []policy.EnvironmentRule `json:"environment,omitempty"`
	SecretKeys  []string                 `json:"secret_keys,omitempty"`
}

// GetPolicyResult is get-policy's success shape.
type GetPolicyResult struct {
	Status      string     `json:"status"`
	ComponentID string     `json:"component_id"`
	PolicyInfo  PolicyInfo `json:"policy_info"`
}

// GetPolicy implements `get-policy(component_id)`.
func (d *Dispatcher) GetPolicy(componentID string) (interface{}, error) {
	doc, err := d.policy.Get(componentID)
	if err != nil {
		return failure(err), err
	}

	info := PolicyInfo{Description: doc.Description}
	if doc.Permissions.Storage != nil {
		info.Storage = doc.Permissions.Storage.Allow
	}
	if doc.Permissions.Network != nil {
		info.Network = doc.Permissions.Network.Allow
	}
	if doc.Permissions.Environment != nil {
		info.Environment = doc.Permissions.Environment.Allow
	}
	if d.secrets != nil {
		keys, err := d.secrets.Keys(componentID)
		if err != nil {
			return failure(err), err
		}
		info.SecretKeys = keys
	}

	return GetPolicyResult{Status: "ok", ComponentID: componentID, PolicyInfo: info}, nil
}

// GrantStoragePermission implements `grant-storage-permission(component_id, {uri, access[]})`.
func (d *Dispatcher) GrantStoragePermission(componentID, uri string, access []string) (interface{}, error) {
	if err := d.policy.GrantStorage(componentID, uri, access); err != nil {
		return failure(err), err
	}
	return Status{Status: "ok"}, nil
}

// GrantNetworkPermission implements `grant-network-permission(component_id, {host})`.
func (d *Dispatcher) GrantNetworkPermission(componentID, host string) (interface{}, error) {
	if err := d.policy.GrantNetwork(componentID, host); err != nil {
		return failure(err), err
	}
	return Status{Status: "ok"}, nil
}

// GrantEnvironmentVariablePermission implements `grant-environment-variable-permission(component_id, {key})`.
func (d *Dispatcher) GrantEnvironmentVariablePermission(componentID, key string) (interface{}, error) {
	if err := d.policy.GrantEnvironment(componentID, key); err != nil {
		return failure(err), err
	}
	return Status{Status: "ok"}, nil
}

// RevokeStoragePermission implements `revoke-storage-permission(component_id, {uri})`.
func (d *Dispatcher) RevokeStoragePermission(componentID, uri string) (interface{}, error) {
	if err := d.policy.RevokeStorage(componentID, uri); err != nil {
		return failure(err), err
	}
	return Status{Status: "ok"}, nil
}

// RevokeNetworkPermission implements `revoke-network-permission(component_id, {host})`.
func (d *Dispatcher) RevokeNetworkPermission(componentID, host string) (interface{}, error) {
	if err := d.policy.RevokeNetwork(componentID, host); err != nil {
		return failure(err), err
	}
	return Status{Status: "ok"}, nil
}

// RevokeEnvironmentVariablePermission implements `revoke-environment-variable-permission(component_id, {key})`.
func (d *Dispatcher) RevokeEnvironmentVariablePermission(componentID, key string) (interface{}, error) {
	if err := d.policy.RevokeEnvironment(componentID, key); err != nil {
		return failure(err), err
	}
	return Status{Status: "ok"}, nil
}

// ResetPermission implements `reset-permission(component_id)`.
func (d *Dispatcher) ResetPermission(componentID string) (interface{}, error) {
	if err := d.policy.Reset(componentID); err != nil {
		return failure(err), err
	}
	return Status{Status: "ok"}, nil
}

// SetSecret implements the set-secret(component_id, key, value) tool,
// storing a value a component may later read through an allow-listed
// environment variable.
func (d *Dispatcher) SetSecret(componentID, key, value string) (interface{}, error) {
	if d.secrets == nil {
		return Status{Status: "error", Kind: string(wassetteerr.CodePolicyPersistFailed)}, wassetteerr.New(wassetteerr.CodePolicyPersistFailed, "no secrets store configured")
	}
	if err := d.secrets.Set(componentID, key, value); err != nil {
		return failure(err), err
	}
	return Status{Status: "ok"}, nil
}

// DeleteSecret implements the supplemented delete-secret(component_id, key) tool.
func (d *Dispatcher) DeleteSecret(componentID, key string) (interface{}, error) {
	if d.secrets == nil {
		return Status{Status: "error", Kind: string(wassetteerr.CodePolicyPersistFailed)}, wassetteerr.New(wassetteerr.CodePolicyPersistFailed, "no secrets store configured")
	}
	if err := d.secrets.Delete(componentID, key); err != nil {
		return failure(err), err
	}
	return Status{Status: "ok"}, nil
}

func (d *Dispatcher) findComponent(componentID string) (lifecycle.ComponentInfo, bool, error) {
	for _, info := range d.manager.List() {
		if info.ComponentID == componentID {
			return info, true, nil
		}
	}
	return lifecycle.ComponentInfo{}, false, wassetteerr.NotFound(componentID)
}

func toolNames(info lifecycle.ComponentInfo) []string {
	names := make([]string, 0, len(info.Descriptors))
	for _, d := range info.Descriptors {
		names = append(names, d.ToolName)
	}
	return names
}
