package codec

import (
	"testing"

	fwerrors "github.com/matzehuels/figwire/pkg/errors"
)

func TestBuiltinEnginesRegistered(t *testing.T) {
	for _, name := range []string{EngineJSON, EngineLegacy} {
		if _, ok := Lookup(name); !ok {
			t.Errorf("engine %q not registered", name)
		}
	}
}

func TestResolveAutoFallsBackToJSON(t *testing.T) {
	// The fast engine is not linked into this test binary, so "auto" must
	// resolve to the built-in json engine.
	e, err := resolveEngine(EngineAuto)
	if err != nil {
		t.Fatal(err)
	}
	if e.Name() != EngineJSON {
		t.Errorf("auto resolved to %q, want %q", e.Name(), EngineJSON)
	}
}

func TestResolveEmptyUsesDefault(t *testing.T) {
	e, err := resolveEngine("")
	if err != nil {
		t.Fatal(err)
	}
	if e.Name() != EngineJSON {
		t.Errorf("default resolved to %q, want %q", e.Name(), EngineJSON)
	}
}

func TestSetDefaultEngine(t *testing.T) {
	t.Cleanup(func() {
		if err := SetDefaultEngine(EngineAuto); err != nil {
			t.Fatal(err)
		}
	})

	if err := SetDefaultEngine(EngineLegacy); err != nil {
		t.Fatal(err)
	}
	if DefaultEngine() != EngineLegacy {
		t.Errorf("DefaultEngine = %q, want %q", DefaultEngine(), EngineLegacy)
	}

	e, err := resolveEngine("")
	if err != nil {
		t.Fatal(err)
	}
	if e.Name() != EngineLegacy {
		t.Errorf("default resolved to %q, want %q", e.Name(), EngineLegacy)
	}
}

func TestSetDefaultEngineRejectsUnknown(t *testing.T) {
	err := SetDefaultEngine("simplejson")
	if fwerrors.GetCode(err) != fwerrors.ErrCodeUnsupportedEngine {
		t.Errorf("SetDefaultEngine(bogus) error = %v, want unsupported-engine code", err)
	}
	if DefaultEngine() != EngineAuto {
		t.Errorf("rejected selector must leave the default untouched, got %q", DefaultEngine())
	}
}

func TestSetDefaultEngineRequiresFastLinked(t *testing.T) {
	err := SetDefaultEngine(EngineFast)
	if fwerrors.GetCode(err) != fwerrors.ErrCodeMissingDependency {
		t.Errorf("SetDefaultEngine(orjson, unlinked) error = %v, want missing-dependency code", err)
	}
}

func TestEnginesSorted(t *testing.T) {
	names := Engines()
	if len(names) < 2 {
		t.Fatalf("Engines() = %v, want at least the built-ins", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("Engines() not sorted: %v", names)
		}
	}
}
