package codec

import (
	"reflect"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matzehuels/figwire/pkg/narray"
)

// action tells the canonicalization driver what to do with a classified
// value.
type action int

const (
	actDone  action = iota // value is terminal
	actSeq                 // value is a sequence; canonicalize elements
	actMap                 // value is a string-keyed mapping; canonicalize values
	actAgain               // value must be reclassified from the top
)

// Clean rewrites an arbitrary figure value tree into the canonical value
// model: nil, bool, integers, floats, strings, []any, and map[string]any
// (plus native arrays/timestamps when the options allow them through).
//
// Clean is total: it never fails. Value kinds it does not recognize pass
// through unchanged; the engine serializer reports an encoding error for
// anything it cannot represent.
func Clean(v any, opts Options) any {
	out, act := classify(v, opts)
	for act == actAgain {
		out, act = classify(out, opts)
	}
	switch act {
	case actSeq:
		return cleanSeq(out, opts)
	case actMap:
		return cleanMap(out, opts)
	}
	return out
}

// classify applies the canonicalization rule ladder to a single node,
// first match wins. The rule order encodes the priority among the optional
// adapters (algebra before arrays before tabular) and the asymmetry between
// plain containers (always recursed, so nested exportables unwrap) and the
// nested-list escape hatch (trusted verbatim).
func classify(v any, opts Options) (any, action) {
	// Scalar fast path.
	switch v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, actDone
	}

	// Exportable unwrap, at most once per node. The view is re-checked for
	// container shape below but not for exportability again.
	if e, ok := v.(Exportable); ok {
		v = e.CanonicalView()
	}

	// Sequence and mapping recursion.
	switch v.(type) {
	case []any:
		return v, actSeq
	case map[string]any:
		return v, actMap
	}
	if rv := reflect.ValueOf(v); rv.IsValid() {
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			// Byte slices are not part of the value model; they fall
			// through and surface as an engine error.
			if rv.Type().Elem().Kind() != reflect.Uint8 {
				return v, actSeq
			}
		case reflect.Map:
			if rv.Type().Key().Kind() == reflect.String {
				return v, actMap
			}
		}
	}

	// Optional adapters, in priority order.
	if a := opts.Adapters; a != nil {
		for _, p := range [...]Probe{a.Algebra, a.Arrays, a.Tabular} {
			if p == nil {
				continue
			}
			if out, rescan, ok := p.Clean(v, opts); ok {
				if rescan {
					return out, actAgain
				}
				return out, actDone
			}
		}
	}

	// Scalar temporal value: drop the timezone, then either format here or
	// leave the naive timestamp for the engine.
	if t, ok := v.(time.Time); ok {
		if !opts.KeepDatetimes {
			return narray.ISO8601(t), actDone
		}
		return narray.Naive(t), actDone
	}

	// Nested-list escape hatch, trusted verbatim.
	if l, ok := v.(Lister); ok {
		return l.NestedList(), actDone
	}

	// Arbitrary-precision decimal, converted to float with documented
	// precision loss.
	if d, ok := v.(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f, actDone
	}

	// Image objects become data-URI strings.
	if a := opts.Adapters; a != nil && a.Imaging != nil {
		if out, rescan, ok := a.Imaging.Clean(v, opts); ok {
			if rescan {
				return out, actAgain
			}
			return out, actDone
		}
	}

	// Non-empty sequence fallback. Byte slices stay excluded here as well,
	// so empty and non-empty []byte surface the same engine error.
	if rv := reflect.ValueOf(v); rv.IsValid() && rv.Kind() == reflect.Slice && rv.Len() > 0 &&
		rv.Type().Elem().Kind() != reflect.Uint8 {
		return v, actSeq
	}

	// Identity fallback.
	return v, actDone
}

func cleanSeq(v any, opts Options) []any {
	if xs, ok := v.([]any); ok {
		out := make([]any, len(xs))
		for i, el := range xs {
			out[i] = Clean(el, opts)
		}
		return out
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = Clean(rv.Index(i).Interface(), opts)
	}
	return out
}

func cleanMap(v any, opts Options) map[string]any {
	if m, ok := v.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = Clean(val, opts)
		}
		return out
	}
	rv := reflect.ValueOf(v)
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = Clean(iter.Value().Interface(), opts)
	}
	return out
}
