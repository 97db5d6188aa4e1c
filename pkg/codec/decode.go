package codec

import (
	"encoding/json"
	"errors"

	fwerrors "github.com/matzehuels/figwire/pkg/errors"
)

// Decode parses JSON text or bytes into a plain value tree using the
// selected engine. The empty engine string selects the process-wide default.
// No canonicalization occurs on decode: the result is exactly what the
// engine's parser produces.
func Decode(data any, engine string) (any, error) {
	var raw []byte
	switch d := data.(type) {
	case string:
		raw = []byte(d)
	case []byte:
		raw = d
	default:
		return nil, fwerrors.New(fwerrors.ErrCodeInvalidInput,
			"decode requires a string or []byte argument, received %T", data)
	}

	e, err := resolveEngine(engine)
	if err != nil {
		return nil, err
	}
	return e.Decode(raw)
}

// decodeStrict parses with the standard library. Byte input is UTF-8 text.
func decodeStrict(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			return nil, fwerrors.Wrap(fwerrors.ErrCodeParse, err,
				"malformed JSON at offset %d; if this input came from Encode, check the separator configuration", syn.Offset)
		}
		return nil, fwerrors.Wrap(fwerrors.ErrCodeParse, err, "malformed JSON")
	}
	return v, nil
}
