package policy

import "os"

// SecretSource supplies a per-component secret value, consulted ahead
// of the process environment when materializing env_pairs. Satisfied
// by *SecretStore.
type SecretSource interface {
	Get(componentID, key string) (string, bool, error)
}

// CapabilityContext is the materialized, read-only view of a
// component's permissions handed to the invocation engine for a
// single call. It is derived from a Document snapshot and never
// mutated; callers that need a fresh view after a grant/revoke must
// re-materialize. A context is snapshotted once at invocation start
// and is never refreshed mid-call.
type CapabilityContext struct {
	componentID string
	secrets     SecretSource

	storage     []StorageRule
	network     []NetworkRule
	environment map[string]bool
}

// Materialize builds a CapabilityContext from a policy document
// snapshot. The snapshot should already be a Clone so that concurrent
// writers cannot mutate it out from under the returned context.
func Materialize(doc *Document) *CapabilityContext {
	return materialize("", doc, nil)
}

// MaterializeForComponent builds a CapabilityContext for componentID,
// consulting secrets (if non-nil) ahead of the process environment
// when EnvValue is asked for an allow-listed key.
func MaterializeForComponent(componentID string, doc *Document, secrets SecretSource) *CapabilityContext {
	return materialize(componentID, doc, secrets)
}

func materialize(componentID string, doc *Document, secrets SecretSource) *CapabilityContext {
	ctx := &CapabilityContext{componentID: componentID, secrets: secrets, environment: map[string]bool{}}
	if doc == nil {
		return ctx
	}
	if doc.Permissions.Storage != nil {
		ctx.storage = doc.Permissions.Storage.Allow
	}
	if doc.Permissions.Network != nil {
		ctx.network = doc.Permissions.Network.Allow
	}
	if doc.Permissions.Environment != nil {
		for _, r := range doc.Permissions.Environment.Allow {
			ctx.environment[r.Key] = true
		}
	}
	return ctx
}

// AllowsStorage reports whether targetURI is permitted for the given
// access mode ("read" or "write") by any allow-listed storage rule.
// access is a plain string (rather than the Access type) so
// CapabilityContext satisfies runtime.HostContext without the runtime
// package depending on pkg/policy.
func (c *CapabilityContext) AllowsStorage(targetURI string, access string) bool {
	for _, r := range c.storage {
		if !MatchStorage(r.URI, targetURI) {
			continue
		}
		for _, a := range r.Access {
			if a == access {
				return true
			}
		}
	}
	return false
}

// AllowsNetwork reports whether host is permitted by any allow-listed
// network rule.
func (c *CapabilityContext) AllowsNetwork(host string) bool {
	for _, r := range c.network {
		if MatchHost(r.Host, host) {
			return true
		}
	}
	return false
}

// AllowsEnvironment reports whether the environment variable key is
// allow-listed.
func (c *CapabilityContext) AllowsEnvironment(key string) bool {
	return c.environment[key]
}

// EnvValue resolves key's value for the invocation's env_pairs: deny by
// default unless key is allow-listed, then consult the per-component
// secrets store before falling back to the process environment, with
// the first non-empty value winning. Process-wide environment variables
// outside the allow-list are never visible to the caller.
func (c *CapabilityContext) EnvValue(key string) (string, bool) {
	if !c.AllowsEnvironment(key) {
		return "", false
	}
	if c.secrets != nil {
		if v, ok, err := c.secrets.Get(c.componentID, key); err == nil && ok && v != "" {
			return v, true
		}
	}
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, true
	}
	return "", false
}
