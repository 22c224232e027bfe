package datasource

import (
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Dialect)
)

// Register is called by each dialect's init() function.
// Thread-safe for concurrent init() calls.
func Register(d Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Info().Type] = d
}

// RegisteredDialects returns info for all compiled-in dialects, sorted by type.
func RegisteredDialects() []DialectInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]DialectInfo, 0, len(registry))
	for _, d := range registry {
		result = append(result, d.Info())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// GetDialect returns the dialect registered for dbType, or nil.
func GetDialect(dbType string) Dialect {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[dbType]
}

// IsRegistered checks if a dialect type is compiled in.
func IsRegistered(dbType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[dbType]
	return ok
}

// UnregisteredDialects returns the entries of types that no compiled-in dialect
// registers, e.g. typos in the enabled_dialects setting.
func UnregisteredDialects(types []string) []string {
	var missing []string
	for _, t := range types {
		if !IsRegistered(t) {
			missing = append(missing, t)
		}
	}
	return missing
}
