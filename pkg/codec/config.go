package codec

import (
	fwerrors "github.com/matzehuels/figwire/pkg/errors"
)

// defaultEngine is the process-wide default engine selector. It is a plain
// configuration value: encode/decode calls only read it, and callers that
// change it concurrently with in-flight calls are responsible for their own
// coordination.
var defaultEngine = EngineAuto

// DefaultEngine returns the process-wide default engine selector.
func DefaultEngine() string { return defaultEngine }

// SetDefaultEngine changes the process-wide default engine selector.
// The name must be one of the recognized tokens; selecting "orjson" requires
// the fast engine to be linked into the binary.
func SetDefaultEngine(name string) error {
	switch name {
	case EngineLegacy, EngineJSON, EngineAuto:
	case EngineFast:
		if _, ok := Lookup(EngineFast); !ok {
			return fwerrors.New(fwerrors.ErrCodeMissingDependency,
				"the orjson engine is not linked into this binary; add a blank import of github.com/matzehuels/figwire/pkg/codec/fastjson to enable it")
		}
	default:
		return fwerrors.New(fwerrors.ErrCodeUnsupportedEngine,
			"supported JSON engines are %q, %q, %q and %q; received %q",
			EngineLegacy, EngineJSON, EngineFast, EngineAuto, name)
	}
	defaultEngine = name
	return nil
}
