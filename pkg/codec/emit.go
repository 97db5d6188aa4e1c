package codec

import (
	"bytes"
	"math"
	"reflect"
	"sort"
	"strconv"

	fwerrors "github.com/matzehuels/figwire/pkg/errors"
)

// marshalValue serializes a canonical value tree. Mapping keys are emitted in
// sorted (byte-lexicographic) order. Non-finite floats are written as the
// bare tokens NaN, Infinity, and -Infinity; callers that need strict JSON
// run the repair pass over the result.
func marshalValue(v any, pretty bool) (string, error) {
	e := &emitter{pretty: pretty}
	if err := e.emit(v, 0); err != nil {
		return "", err
	}
	return e.buf.String(), nil
}

// legacyMarshal serializes like marshalValue but converts values
// node-by-node during emission instead of canonicalizing the whole tree
// up front. The two paths are observably equivalent by contract.
func legacyMarshal(v any, pretty bool, opts Options) (string, error) {
	e := &emitter{pretty: pretty, inline: true, opts: opts}
	if err := e.emit(v, 0); err != nil {
		return "", err
	}
	return e.buf.String(), nil
}

type emitter struct {
	buf    bytes.Buffer
	pretty bool
	inline bool // convert nodes during emission (legacy engine)
	opts   Options
}

func (e *emitter) emit(v any, depth int) error {
	if e.inline {
		out, act := classify(v, e.opts)
		for act == actAgain {
			out, act = classify(out, e.opts)
		}
		switch act {
		case actSeq:
			return e.emitSeq(out, depth)
		case actMap:
			return e.emitMap(out, depth)
		}
		v = out
	}

	switch x := v.(type) {
	case nil:
		e.buf.WriteString("null")
	case bool:
		e.buf.WriteString(strconv.FormatBool(x))
	case string:
		e.writeString(x)
	case int:
		e.writeInt(int64(x))
	case int8:
		e.writeInt(int64(x))
	case int16:
		e.writeInt(int64(x))
	case int32:
		e.writeInt(int64(x))
	case int64:
		e.writeInt(x)
	case uint:
		e.writeUint(uint64(x))
	case uint8:
		e.writeUint(uint64(x))
	case uint16:
		e.writeUint(uint64(x))
	case uint32:
		e.writeUint(uint64(x))
	case uint64:
		e.writeUint(x)
	case float32:
		e.writeFloat(float64(x), 32)
	case float64:
		e.writeFloat(x, 64)
	case []any:
		return e.emitSeq(x, depth)
	case map[string]any:
		return e.emitMap(x, depth)
	default:
		// Nested-list escape hatches may hand back typed slices or maps;
		// handle them through reflection before giving up.
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			if rv.Type().Elem().Kind() != reflect.Uint8 {
				return e.emitSeq(v, depth)
			}
		case reflect.Map:
			if rv.Type().Key().Kind() == reflect.String {
				return e.emitMap(v, depth)
			}
		}
		return fwerrors.New(fwerrors.ErrCodeEncoding, "cannot encode value of type %T", v)
	}
	return nil
}

func (e *emitter) emitSeq(v any, depth int) error {
	elems, ok := v.([]any)
	if !ok {
		rv := reflect.ValueOf(v)
		elems = make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
	}

	if len(elems) == 0 {
		e.buf.WriteString("[]")
		return nil
	}

	e.buf.WriteByte('[')
	for i, el := range elems {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.newline(depth + 1)
		if err := e.emit(el, depth+1); err != nil {
			return err
		}
	}
	e.newline(depth)
	e.buf.WriteByte(']')
	return nil
}

func (e *emitter) emitMap(v any, depth int) error {
	var keys []string
	var get func(string) any
	if m, ok := v.(map[string]any); ok {
		keys = make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		get = func(k string) any { return m[k] }
	} else {
		rv := reflect.ValueOf(v)
		keys = make([]string, 0, rv.Len())
		for _, kv := range rv.MapKeys() {
			keys = append(keys, kv.String())
		}
		keyType := rv.Type().Key()
		get = func(k string) any {
			return rv.MapIndex(reflect.ValueOf(k).Convert(keyType)).Interface()
		}
	}

	if len(keys) == 0 {
		e.buf.WriteString("{}")
		return nil
	}

	// Sorted keys make identical logical content byte-identical regardless
	// of insertion order.
	sort.Strings(keys)

	e.buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.newline(depth + 1)
		e.writeString(k)
		e.buf.WriteByte(':')
		if e.pretty {
			e.buf.WriteByte(' ')
		}
		if err := e.emit(get(k), depth+1); err != nil {
			return err
		}
	}
	e.newline(depth)
	e.buf.WriteByte('}')
	return nil
}

func (e *emitter) newline(depth int) {
	if !e.pretty {
		return
	}
	e.buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		e.buf.WriteString("  ")
	}
}

func (e *emitter) writeInt(n int64) {
	e.buf.WriteString(strconv.FormatInt(n, 10))
}

func (e *emitter) writeUint(n uint64) {
	e.buf.WriteString(strconv.FormatUint(n, 10))
}

func (e *emitter) writeFloat(f float64, bits int) {
	switch {
	case math.IsNaN(f):
		e.buf.WriteString("NaN")
	case math.IsInf(f, 1):
		e.buf.WriteString("Infinity")
	case math.IsInf(f, -1):
		e.buf.WriteString("-Infinity")
	default:
		e.buf.WriteString(strconv.FormatFloat(f, 'g', -1, bits))
	}
}

const hexDigits = "0123456789abcdef"

func (e *emitter) writeString(s string) {
	e.buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b == '"':
			e.buf.WriteString(`\"`)
		case b == '\\':
			e.buf.WriteString(`\\`)
		case b == '\n':
			e.buf.WriteString(`\n`)
		case b == '\r':
			e.buf.WriteString(`\r`)
		case b == '\t':
			e.buf.WriteString(`\t`)
		case b < 0x20:
			e.buf.WriteString(`\u00`)
			e.buf.WriteByte(hexDigits[b>>4])
			e.buf.WriteByte(hexDigits[b&0xf])
		default:
			// UTF-8 passes through unescaped.
			e.buf.WriteByte(b)
		}
	}
	e.buf.WriteByte('"')
}
