// Package fastjson provides the "orjson" codec engine, backed by jsoniter.
//
// The engine is linked in the database/sql-driver way: blank-import the
// package and it registers itself with pkg/codec at init time. Binaries that
// never import it fall back to the built-in engines, and the "auto" selector
// observes the registration at call time.
//
//	import _ "github.com/matzehuels/figwire/pkg/codec/fastjson"
//
// Unlike the built-in engines, this one serializes kind-tagged numeric
// arrays and timestamps natively, so canonicalization keeps them in place
// instead of flattening to lists and strings. Non-finite floats are written
// as null through a registered float encoder, and timestamps as
// timezone-naive ISO-8601 strings; both encoders are registered
// process-wide for all jsoniter configurations created by this package.
package fastjson

import (
	"math"
	"time"
	"unsafe"

	jsoniter "github.com/json-iterator/go"

	"github.com/matzehuels/figwire/pkg/codec"
	fwerrors "github.com/matzehuels/figwire/pkg/errors"
	"github.com/matzehuels/figwire/pkg/narray"
)

var (
	compact = jsoniter.Config{
		SortMapKeys:            true,
		EscapeHTML:             false,
		ValidateJsonRawMessage: true,
	}.Froze()

	indented = jsoniter.Config{
		SortMapKeys:            true,
		EscapeHTML:             false,
		IndentionStep:          2,
		ValidateJsonRawMessage: true,
	}.Froze()
)

func init() {
	jsoniter.RegisterTypeEncoderFunc("float64", encodeFloat64, nil)
	jsoniter.RegisterTypeEncoderFunc("float32", encodeFloat32, nil)
	jsoniter.RegisterTypeEncoderFunc("time.Time", encodeTime, nil)
	codec.Register(fastEngine{})
}

// encodeFloat64 writes non-finite values as null so the output stays strict
// JSON without a repair pass.
func encodeFloat64(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	f := *(*float64)(ptr)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		stream.WriteNil()
		return
	}
	stream.WriteFloat64(f)
}

func encodeFloat32(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	f := *(*float32)(ptr)
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		stream.WriteNil()
		return
	}
	stream.WriteFloat32(f)
}

// encodeTime writes timestamps as timezone-naive ISO-8601 strings, matching
// what the built-in engines produce during canonicalization.
func encodeTime(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	t := *(*time.Time)(ptr)
	stream.WriteString(narray.ISO8601(t))
}

type fastEngine struct{}

var _ codec.Engine = fastEngine{}

func (fastEngine) Name() string { return codec.EngineFast }

func (fastEngine) Encode(item any, pretty bool) (string, error) {
	api := compact
	if pretty {
		api = indented
	}

	cleaned := codec.Clean(item, codec.Options{
		KeepArrays:    true,
		KeepDatetimes: true,
		Adapters:      codec.DefaultAdapters(),
	})
	out, err := api.MarshalToString(cleaned)
	if err != nil {
		return "", fwerrors.Wrap(fwerrors.ErrCodeEncoding, err,
			"orjson engine cannot represent value of type %T", item)
	}
	return out, nil
}

func (fastEngine) Decode(data []byte) (any, error) {
	// jsoniter consumes raw bytes natively; no text decoding step.
	var v any
	if err := compact.Unmarshal(data, &v); err != nil {
		return nil, fwerrors.Wrap(fwerrors.ErrCodeParse, err, "malformed JSON")
	}
	return v, nil
}
