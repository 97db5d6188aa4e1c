package codec

import (
	"sort"
	"sync"

	fwerrors "github.com/matzehuels/figwire/pkg/errors"
)

// Engine selector tokens. These names are the public configuration
// vocabulary; any other string is rejected.
const (
	EngineLegacy = "legacy"
	EngineJSON   = "json"
	EngineFast   = "orjson"
	EngineAuto   = "auto"
)

// Engine is an encoding/decoding backend. Implementations must be safe for
// concurrent use.
type Engine interface {
	// Name returns the selector token the engine registers under.
	Name() string

	// Encode serializes item to a JSON string. Mapping keys are sorted;
	// pretty selects 2-space indentation over the zero-whitespace compact
	// form.
	Encode(item any, pretty bool) (string, error)

	// Decode parses JSON bytes into a plain value tree
	// (nil, bool, float64, string, []any, map[string]any).
	Decode(data []byte) (any, error)
}

var (
	enginesMu sync.RWMutex
	engines   = make(map[string]Engine)
)

// Register makes an engine available under its name. It is intended to be
// called from package init functions, following the database/sql driver
// pattern: blank-import pkg/codec/fastjson to enable the "orjson" engine.
func Register(e Engine) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	engines[e.Name()] = e
}

// Lookup returns the engine registered under name.
func Lookup(name string) (Engine, bool) {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	e, ok := engines[name]
	return e, ok
}

// Engines returns the names of all registered engines, sorted.
func Engines() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveEngine maps a selector token to a concrete engine. The empty string
// selects the process-wide default. "auto" resolves at call time, so linking
// the fast engine in is observed on the next call.
func resolveEngine(name string) (Engine, error) {
	if name == "" {
		name = DefaultEngine()
	}
	switch name {
	case EngineAuto:
		if e, ok := Lookup(EngineFast); ok {
			return e, nil
		}
		name = EngineJSON
	case EngineLegacy, EngineJSON:
	case EngineFast:
		if e, ok := Lookup(EngineFast); ok {
			return e, nil
		}
		return nil, fwerrors.New(fwerrors.ErrCodeMissingDependency,
			"the orjson engine is not linked into this binary; add a blank import of github.com/matzehuels/figwire/pkg/codec/fastjson to enable it")
	default:
		return nil, fwerrors.New(fwerrors.ErrCodeUnsupportedEngine,
			"supported JSON engines are %q, %q, %q and %q; received %q",
			EngineLegacy, EngineJSON, EngineFast, EngineAuto, name)
	}
	e, ok := Lookup(name)
	if !ok {
		return nil, fwerrors.New(fwerrors.ErrCodeInternal, "engine %q is not registered", name)
	}
	return e, nil
}

func init() {
	Register(jsonEngine{})
	Register(legacyEngine{})
}
