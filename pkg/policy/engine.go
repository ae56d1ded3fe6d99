package policy

import (
	"sync"
)

// Engine owns one policy document per component, serializing writes
// per component while allowing lock-free reads of immutable
// snapshots. A reader that calls Get receives a Clone it may hold
// onto indefinitely; it will never be mutated by a subsequent grant
// or revoke.
type Engine struct {
	store   Store
	secrets SecretSource

	mu    sync.Mutex             // guards docs and locks maps themselves
	docs  map[string]*Document   // current snapshot per component
	locks map[string]*sync.Mutex // per-component write serialization
}

// NewEngine creates an Engine backed by store. Documents are loaded
// lazily on first access per component.
func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		docs:  make(map[string]*Document),
		locks: make(map[string]*sync.Mutex),
	}
}

// WithSecrets attaches secrets as the source Capabilities consults
// ahead of the process environment when materializing env_pairs.
func (e *Engine) WithSecrets(secrets SecretSource) *Engine {
	e.secrets = secrets
	return e
}

func (e *Engine) lockFor(componentID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[componentID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[componentID] = l
	}
	return l
}

func (e *Engine) cached(componentID string) (*Document, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.docs[componentID]
	return d, ok
}

func (e *Engine) setCached(componentID string, doc *Document) {
	e.mu.Lock()
	e.docs[componentID] = doc
	e.mu.Unlock()
}

func (e *Engine) dropCached(componentID string) {
	e.mu.Lock()
	delete(e.docs, componentID)
	delete(e.locks, componentID)
	e.mu.Unlock()
}

// Get returns a copy-on-write snapshot of componentID's policy
// document. Safe to call concurrently with grants/revokes on any
// component.
func (e *Engine) Get(componentID string) (*Document, error) {
	if cached, ok := e.cached(componentID); ok {
		return cached.Clone(), nil
	}

	lock := e.lockFor(componentID)
	lock.Lock()
	defer lock.Unlock()

	if cached, ok := e.cached(componentID); ok {
		return cached.Clone(), nil
	}
	doc, err := e.store.Load(componentID)
	if err != nil {
		return nil, err
	}
	e.setCached(componentID, doc)
	return doc.Clone(), nil
}

// Capabilities materializes componentID's current policy into a
// CapabilityContext for a single invocation, snapshotted once at call
// time so a secret rewrite never changes values inside an in-flight
// call.
func (e *Engine) Capabilities(componentID string) (*CapabilityContext, error) {
	doc, err := e.Get(componentID)
	if err != nil {
		return nil, err
	}
	return MaterializeForComponent(componentID, doc, e.secrets), nil
}

// mutate serializes a read-modify-persist-publish cycle for
// componentID under its per-component lock, so concurrent grants
// never interleave or lose an update.
func (e *Engine) mutate(componentID string, fn func(doc *Document)) error {
	lock := e.lockFor(componentID)
	lock.Lock()
	defer lock.Unlock()

	var doc *Document
	if cached, ok := e.cached(componentID); ok {
		doc = cached.Clone()
	} else {
		loaded, err := e.store.Load(componentID)
		if err != nil {
			return err
		}
		doc = loaded
	}

	fn(doc)

	if err := e.store.Save(componentID, doc); err != nil {
		return err
	}
	e.setCached(componentID, doc)
	return nil
}

// GrantStorage allow-lists uri for access (["read"], ["write"], or
// both) on componentID.
func (e *Engine) GrantStorage(componentID, uri string, access []string) error {
	return e.mutate(componentID, func(doc *Document) { doc.GrantStorage(uri, access) })
}

// RevokeStorage removes the storage rule for uri on componentID.
func (e *Engine) RevokeStorage(componentID, uri string) error {
	return e.mutate(componentID, func(doc *Document) { doc.RevokeStorage(uri) })
}

// GrantNetwork allow-lists host on componentID.
func (e *Engine) GrantNetwork(componentID, host string) error {
	return e.mutate(componentID, func(doc *Document) { doc.GrantNetwork(host) })
}

// RevokeNetwork removes the network rule for host on componentID.
func (e *Engine) RevokeNetwork(componentID, host string) error {
	return e.mutate(componentID, func(doc *Document) { doc.RevokeNetwork(host) })
}

// GrantEnvironment allow-lists environment variable key on componentID.
func (e *Engine) GrantEnvironment(componentID, key string) error {
	return e.mutate(componentID, func(doc *Document) { doc.GrantEnvironment(key) })
}

// RevokeEnvironment removes the environment rule for key on componentID.
func (e *Engine) RevokeEnvironment(componentID, key string) error {
	return e.mutate(componentID, func(doc *Document) { doc.RevokeEnvironment(key) })
}

// Reset empties every allow-list for componentID.
func (e *Engine) Reset(componentID string) error {
	return e.mutate(componentID, func(doc *Document) { doc.Reset() })
}

// Forget drops componentID's persisted policy and any in-memory
// snapshot. Manager.Unload does not call it: an unloaded component's
// policy file stays on disk.
func (e *Engine) Forget(componentID string) error {
	lock := e.lockFor(componentID)
	lock.Lock()
	defer lock.Unlock()
	if err := e.store.Delete(componentID); err != nil {
		return err
	}
	e.dropCached(componentID)
	return nil
}
