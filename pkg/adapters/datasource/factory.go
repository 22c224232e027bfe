package datasource

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// DialectFactory resolves dialect tokens against the registry, limited to the
// dialects enabled by configuration.
type DialectFactory interface {
	// Resolve returns the dialect for dbType, or a *ConfigurationError wrapping
	// apperrors.ErrUnsupportedDialect.
	Resolve(dbType string) (Dialect, error)

	// ListTypes returns info for the enabled dialects.
	ListTypes() []DialectInfo
}

type registryFactory struct {
	enabled map[string]bool
}

// NewDialectFactory returns a factory over the global registry. An empty enabled
// list enables every registered dialect.
func NewDialectFactory(enabled []string) DialectFactory {
	f := &registryFactory{}
	if len(enabled) > 0 {
		f.enabled = make(map[string]bool, len(enabled))
		for _, t := range enabled {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				f.enabled[t] = true
			}
		}
	}
	return f
}

func (f *registryFactory) allowed(dbType string) bool {
	return f.enabled == nil || f.enabled[dbType]
}

func (f *registryFactory) Resolve(dbType string) (Dialect, error) {
	if f.allowed(dbType) {
		if d := GetDialect(dbType); d != nil {
			return d, nil
		}
	}
	return nil, UnsupportedDialectError(dbType, f.suggest(dbType))
}

func (f *registryFactory) ListTypes() []DialectInfo {
	all := RegisteredDialects()
	result := make([]DialectInfo, 0, len(all))
	for _, info := range all {
		if f.allowed(info.Type) {
			result = append(result, info)
		}
	}
	return result
}

// suggest returns the closest enabled dialect when dbType looks like a typo.
func (f *registryFactory) suggest(dbType string) string {
	if dbType == "" {
		return ""
	}
	best, bestDist := "", 3
	for _, info := range f.ListTypes() {
		d := levenshtein.DistanceForStrings([]rune(strings.ToLower(dbType)), []rune(info.Type), levenshtein.DefaultOptions)
		if d < bestDist {
			best, bestDist = info.Type, d
		}
	}
	return best
}

var _ DialectFactory = (*registryFactory)(nil)
