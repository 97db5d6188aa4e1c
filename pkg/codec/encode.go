package codec

import (
	fwerrors "github.com/matzehuels/figwire/pkg/errors"
)

// Encode serializes item as a JSON string using the selected engine.
// The empty engine string selects the process-wide default.
//
// The legacy/json engines require fully JSON-primitive trees, so item is
// canonicalized with arrays and timestamps converted to lists and strings.
// The orjson engine serializes those natively and tries the raw item first,
// canonicalizing only when the direct attempt fails.
func Encode(item any, pretty bool, engine string) (string, error) {
	e, err := resolveEngine(engine)
	if err != nil {
		return "", err
	}
	return e.Encode(item, pretty)
}

// strictOptions is the canonicalization policy for engines that need fully
// JSON-primitive trees.
func strictOptions() Options {
	return Options{Adapters: DefaultAdapters()}
}

// repairStrict applies the strict-JSON repair pass: when the encoded string
// contains the extended non-finite tokens, re-parse it with those tokens
// mapped to null and re-serialize under the same key/whitespace policy.
func repairStrict(s string, pretty bool) (string, error) {
	if !needsRepair(s) {
		return s, nil
	}
	v, err := parseLoose(s)
	if err != nil {
		// Invalid separators surface here; point at the likely cause.
		return "", fwerrors.Wrap(fwerrors.ErrCodeParse, err,
			"encoding into strict JSON failed; were valid JSON separators configured?")
	}
	return marshalValue(v, pretty)
}

// jsonEngine canonicalizes the whole tree up front, then emits it.
type jsonEngine struct{}

func (jsonEngine) Name() string { return EngineJSON }

func (jsonEngine) Encode(item any, pretty bool) (string, error) {
	s, err := marshalValue(Clean(item, strictOptions()), pretty)
	if err != nil {
		return "", err
	}
	return repairStrict(s, pretty)
}

func (jsonEngine) Decode(data []byte) (any, error) {
	return decodeStrict(data)
}

// legacyEngine converts values node-by-node during emission. It exists as an
// independent implementation of the same contract; the diagnostic harness
// cross-checks it against the json engine and treats any disagreement as an
// internal-consistency failure.
type legacyEngine struct{}

func (legacyEngine) Name() string { return EngineLegacy }

func (legacyEngine) Encode(item any, pretty bool) (string, error) {
	s, err := legacyMarshal(item, pretty, strictOptions())
	if err != nil {
		return "", err
	}
	return repairStrict(s, pretty)
}

func (legacyEngine) Decode(data []byte) (any, error) {
	return decodeStrict(data)
}
