package simchain

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"

	"genlender/chain"
	"genlender/shared"
)

const yearnVaults = "yearn/yearn-vaults"

// PackageManager resolves org/repo@version dependencies to the contract
// templates they provide. Resolved packages are memoized.
type PackageManager struct {
	mu       sync.RWMutex
	registry map[string]map[string][]string // name -> version -> contracts
	cache    *ristretto.Cache
	logger   *zap.Logger
}

// NewPackageManager creates a manager that knows the yearn vault releases
func NewPackageManager(logger *zap.Logger) (*PackageManager, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1_000,
		MaxCost:     100,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create package cache: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pm := &PackageManager{
		registry: make(map[string]map[string][]string),
		cache:    cache,
		logger:   logger,
	}
	for _, v := range []string{"0.3.5", "0.4.2", "0.4.3", "0.4.5"} {
		pm.Register(yearnVaults, v, chain.ContractVault)
	}
	return pm, nil
}

// Register makes a package version available
func (pm *PackageManager) Register(name, version string, contracts ...string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.registry[name] == nil {
		pm.registry[name] = make(map[string][]string)
	}
	pm.registry[name][version] = slices.Clone(contracts)
	pm.cache.Del(name + "@" + version)
}

// Resolve resolves name, which must be of the form org/repo@version
func (pm *PackageManager) Resolve(name string) (*chain.Package, error) {
	if v, ok := pm.cache.Get(name); ok {
		return clonePackage(v.(*chain.Package)), nil
	}

	pkgName, version, err := shared.SplitDependency(name)
	if err != nil {
		return nil, err
	}

	pm.mu.RLock()
	contracts, ok := pm.registry[pkgName][version]
	pm.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("package %s not found", name)
	}

	pkg := &chain.Package{Name: pkgName, Version: version, Templates: slices.Clone(contracts)}
	pm.cache.Set(name, pkg, 1)
	pm.cache.Wait()
	pm.logger.Debug("Resolved package", zap.String("package", name), zap.Strings("contracts", contracts))
	return clonePackage(pkg), nil
}

// Close releases the cache
func (pm *PackageManager) Close() {
	pm.cache.Close()
}

func clonePackage(p *chain.Package) *chain.Package {
	return &chain.Package{Name: p.Name, Version: p.Version, Templates: slices.Clone(p.Templates)}
}
