// Package lifecycle is the orchestrator: the only component touching
// the type bridge, policy engine, and component store, and the home
// of the component/tool registries the invocation engine reads.
package lifecycle

import (
	"context"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/wassette-go/wassette/internal/diag"
	"github.com/wassette-go/wassette/pkg/invocation"
	"github.com/wassette-go/wassette/pkg/policy"
	"github.com/wassette-go/wassette/pkg/runtime"
	"github.com/wassette-go/wassette/pkg/store"
	"github.com/wassette-go/wassette/pkg/typebridge"
	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// CatalogEntry is one row of the static, config-driven registry
// search() reports. It is purely informational: not a live query
// against any loaded component.
type CatalogEntry struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	SourceURI   string `json:"source_uri" yaml:"source_uri"`
}

// LoadResult is load/reload's return value.
type LoadResult struct {
	ComponentID string
	ToolsLoaded int
	RequestID   string
}

// Manager holds the component registry and the tool-name table behind
// a single readers-writer lock: read paths (list, a tool lookup,
// get-policy) take the read lock; write paths (load, unload, reload)
// take the write lock only for the swap, with fetching and
// introspection happening outside it.
type Manager struct {
	mu         sync.RWMutex
	components map[string]*ComponentRecord
	toolTable  map[string]string // tool_name -> component_id

	cache   *store.Cache
	policy  *policy.Engine
	engine  runtime.Engine
	catalog []CatalogEntry

	// loadLocks serializes concurrent Load calls for the same
	// component_id: a second loader waits for the first to finish and
	// then runs its own load, which replaces the first's record as a
	// reload; it does not reuse the first loader's result.
	loadLocks sync.Map // map[string]*sync.Mutex
}

// NewManager creates a Manager backed by cache, policyEngine, and
// engine, with catalog as the static search() registry.
func NewManager(cache *store.Cache, policyEngine *policy.Engine, engine runtime.Engine, catalog []CatalogEntry) *Manager {
	return &Manager{
		components: make(map[string]*ComponentRecord),
		toolTable:  make(map[string]string),
		cache:      cache,
		policy:     policyEngine,
		engine:     engine,
		catalog:    catalog,
	}
}

func (m *Manager) loadLockFor(componentID string) *sync.Mutex {
	l, _ := m.loadLocks.LoadOrStore(componentID, &sync.Mutex{})
	return l.(*sync.Mutex)
}

// Load resolves sourceURI via the component store, introspects its
// exports, generates tool schemas, applies an optional tool_filter,
// and installs the record. If component_id already exists, this
// behaves as reload: the previous instance (and any stateful state it
// held) is dropped and the tool-name set is atomically replaced.
func (m *Manager) Load(ctx context.Context, sourceURI string, toolFilterSource string, mode Mode) (LoadResult, error) {
	rec, err := m.cache.Resolve(ctx, sourceURI)
	if err != nil {
		return LoadResult{}, err
	}

	lock := m.loadLockFor(rec.ComponentID)
	lock.Lock()
	defer lock.Unlock()

	wasmBytes, err := os.ReadFile(rec.BinaryPath)
	if err != nil {
		return LoadResult{}, wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to read cached component", err)
	}

	compiled, err := m.engine.Compile(ctx, wasmBytes)
	if err != nil {
		return LoadResult{}, err
	}

	transient, err := compiled.Instantiate(ctx, noCapabilities{})
	if err != nil {
		_ = compiled.Close(ctx)
		return LoadResult{}, wassetteerr.Wrap(wassetteerr.CodeIntrospectionFailed, "failed to instantiate component for introspection", err)
	}
	exportNames := transient.ExportedFunctions()
	_ = transient.Close(ctx)

	signatures, err := loadSidecarSignatures(rec.BinaryPath)
	if err != nil {
		_ = compiled.Close(ctx)
		return LoadResult{}, err
	}
	if signatures == nil {
		signatures = fallbackSignatures(exportNames)
	}

	filter, err := ParseToolFilter(toolFilterSource)
	if err != nil {
		_ = compiled.Close(ctx)
		return LoadResult{}, err
	}

	descriptors, err := typebridge.BuildDescriptors(signatures, func(id typebridge.FunctionID) bool {
		keep, kerr := filter.Keep(typebridge.RawName(id))
		if kerr != nil {
			return false
		}
		return keep
	})
	if err != nil {
		_ = compiled.Close(ctx)
		return LoadResult{}, err
	}

	newRecord := &ComponentRecord{
		ComponentID: rec.ComponentID,
		SourceURI:   sourceURI,
		Mode:        mode,
		rec:         rec,
		module:      compiled,
		Signatures:  signatures,
		Descriptors: descriptors,
	}

	if err := m.install(newRecord); err != nil {
		_ = compiled.Close(ctx)
		return LoadResult{}, err
	}

	return LoadResult{ComponentID: rec.ComponentID, ToolsLoaded: len(descriptors), RequestID: uuid.NewString()}, nil
}

// install swaps newRecord into the registry, checking tool-name
// collisions against every OTHER component (never against the prior
// version of the same component on reload).
func (m *Manager) install(newRecord *ComponentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous, reloading := m.components[newRecord.ComponentID]

	for _, d := range newRecord.Descriptors {
		if owner, taken := m.toolTable[d.ToolName]; taken && owner != newRecord.ComponentID {
			return wassetteerr.ToolNameCollision(d.ToolName, owner)
		}
	}

	if reloading {
		for name := range m.toolTable {
			if m.toolTable[name] == newRecord.ComponentID {
				delete(m.toolTable, name)
			}
		}
		previous.closeStatefulInstance(context.Background())
		if previous.module != nil {
			_ = previous.module.Close(context.Background())
		}
	}

	for _, d := range newRecord.Descriptors {
		m.toolTable[d.ToolName] = newRecord.ComponentID
	}
	m.components[newRecord.ComponentID] = newRecord
	return nil
}

// Unload removes a component's record, unregisters its tools, and
// leaves its policy file untouched on disk.
func (m *Manager) Unload(ctx context.Context, componentID string) error {
	m.mu.Lock()
	rec, ok := m.components[componentID]
	if !ok {
		m.mu.Unlock()
		return wassetteerr.NotFound(componentID)
	}
	for name, owner := range m.toolTable {
		if owner == componentID {
			delete(m.toolTable, name)
		}
	}
	delete(m.components, componentID)
	m.mu.Unlock()

	rec.closeStatefulInstance(ctx)
	return rec.module.Close(ctx)
}

// ComponentInfo is the read-only snapshot List() returns per
// component.
type ComponentInfo struct {
	ComponentID string
	SourceURI   string
	Mode        Mode
	Descriptors []typebridge.Descriptor
}

// List returns a snapshot of every loaded component's record and tool
// schemas.
func (m *Manager) List() []ComponentInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ComponentInfo, 0, len(m.components))
	for _, rec := range m.components {
		out = append(out, ComponentInfo{
			ComponentID: rec.ComponentID,
			SourceURI:   rec.SourceURI,
			Mode:        rec.Mode,
			Descriptors: append([]typebridge.Descriptor(nil), rec.Descriptors...),
		})
	}
	return out
}

// Search returns the static, config-driven component catalog.
func (m *Manager) Search() []CatalogEntry {
	return m.catalog
}

// ResolveTool looks up tool_name and returns its owning component
// record and descriptor.
func (m *Manager) ResolveTool(toolName string) (*ComponentRecord, typebridge.Descriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	componentID, ok := m.toolTable[toolName]
	if !ok {
		return nil, typebridge.Descriptor{}, wassetteerr.ToolNotFound(toolName)
	}
	rec := m.components[componentID]
	for _, d := range rec.Descriptors {
		if d.ToolName == toolName {
			return rec, d, nil
		}
	}
	return nil, typebridge.Descriptor{}, wassetteerr.ToolNotFound(toolName)
}

// GetPolicy delegates to the policy engine.
func (m *Manager) GetPolicy(componentID string) (*policy.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.policy.Get(componentID)
}

// Invoke resolves toolName to its owning component and function
// signature, materializes that component's current capability context
// from the policy engine, and runs the call through the invocation
// engine. This is the single entry point the MCP tool-call surface
// drives: everything upstream of it is transport framing, and
// everything downstream is type decoding and guest dispatch.
func (m *Manager) Invoke(ctx context.Context, toolName string, jsonArgs map[string]interface{}) (map[string]interface{}, error) {
	rec, descriptor, err := m.ResolveTool(toolName)
	if err != nil {
		return nil, err
	}

	sig, ok := rec.Signature(descriptor.FunctionID)
	if !ok {
		return nil, wassetteerr.ToolNotFound(toolName)
	}

	caps, err := m.policy.Capabilities(rec.ComponentID)
	if err != nil {
		return nil, err
	}

	return invocation.Call(ctx, rec, caps, sig, typebridge.RawName(descriptor.FunctionID), jsonArgs)
}

// Rebuild scans the component cache directory and re-loads every
// `<id>.wasm`/`<id>.policy.yaml` pair found there, skipping (and
// reporting via internal/diag) any that fail individually rather than
// aborting startup.
func (m *Manager) Rebuild(ctx context.Context, componentDir string) error {
	entries, err := os.ReadDir(componentDir)
	if err != nil {
		return wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to scan component directory", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || len(name) < 5 || name[len(name)-5:] != ".wasm" {
			continue
		}
		sourceURI := "file://" + componentDir + "/" + name
		if _, err := m.Load(ctx, sourceURI, "", Stateless); err != nil {
			diag.Warnf("skipping %s during startup rebuild: %v", name, err)
		}
	}
	return nil
}

// noCapabilities denies everything; used for the transient instance
// created solely to introspect a component's exports at load time.
type noCapabilities struct{}

func (noCapabilities) AllowsNetwork(string) bool         { return false }
func (noCapabilities) AllowsStorage(string, string) bool { return false }
func (noCapabilities) AllowsEnvironment(string) bool     { return false }
func (noCapabilities) EnvValue(string) (string, bool)    { return "", false }
