package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/wassette-go/wassette/internal/builtintools"
	"github.com/wassette-go/wassette/pkg/lifecycle"
	"github.com/wassette-go/wassette/pkg/policy"
	"github.com/wassette-go/wassette/pkg/runtime/wazero"
	"github.com/wassette-go/wassette/pkg/store"
)

// app bundles the wired-up core every command needs: the lifecycle
// manager, the policy engine, and the built-in tool dispatcher that
// translates CLI verbs onto them.
type app struct {
	manager    *lifecycle.Manager
	policy     *policy.Engine
	dispatcher *builtintools.Dispatcher
	engine     *wazero.Engine
}

func dataDir(flagName, subdir string) string {
	if v := viper.GetString(flagName); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".wassette", subdir)
	}
	return filepath.Join(home, ".wassette", subdir)
}

// newApp wires a fresh Manager/Engine/Dispatcher from the resolved
// components/secrets directories and rebuilds the component registry
// from whatever cached components and policies are already on disk.
func newApp(ctx context.Context) (*app, error) {
	componentsDir := dataDir("components-dir", "components")
	secretsDir := dataDir("secrets-dir", "secrets")

	cache, err := store.NewCache(componentsDir)
	if err != nil {
		return nil, err
	}

	fileStore, err := policy.NewFileStore(componentsDir)
	if err != nil {
		return nil, err
	}
	secrets, err := policy.NewSecretStore(secretsDir)
	if err != nil {
		return nil, err
	}
	policyEngine := policy.NewEngine(fileStore).WithSecrets(secrets)

	engine, err := wazero.NewEngine(ctx)
	if err != nil {
		return nil, err
	}

	manager := lifecycle.NewManager(cache, policyEngine, engine, nil)
	if err := manager.Rebuild(ctx, componentsDir); err != nil {
		_ = engine.Close(ctx)
		return nil, err
	}

	return &app{
		manager:    manager,
		policy:     policyEngine,
		dispatcher: builtintools.New(manager, policyEngine, secrets),
		engine:     engine,
	}, nil
}

func (a *app) Close(ctx context.Context) {
	_ = a.engine.Close(ctx)
}
