// Package narray provides element-kind-tagged numeric arrays for figure data.
//
// Figure traces frequently carry large homogeneous columns (coordinates,
// magnitudes, timestamps). Array stores such a column together with its
// element kind so the codec layer can choose between a contiguous fast path
// and a generic per-element conversion. The package also defines the Masked
// sentinel for missing entries and the Datetime scalar wrapper.
package narray

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Kind identifies the element type of an Array.
type Kind int

// Element kinds.
const (
	Bool Kind = iota
	Int
	Uint
	Float
	Datetime
	String
	Object
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case Datetime:
		return "datetime"
	case String:
		return "string"
	case Object:
		return "object"
	}
	return "unknown"
}

// Array is a homogeneous, kind-tagged column of values.
// The zero value is an empty Object array.
type Array struct {
	kind Kind
	data any
}

// Bools creates a boolean array.
func Bools(v []bool) *Array { return &Array{kind: Bool, data: v} }

// Ints creates a signed integer array.
func Ints(v []int64) *Array { return &Array{kind: Int, data: v} }

// Uints creates an unsigned integer array.
func Uints(v []uint64) *Array { return &Array{kind: Uint, data: v} }

// Floats creates a float array.
func Floats(v []float64) *Array { return &Array{kind: Float, data: v} }

// Datetimes creates a datetime array.
func Datetimes(v []time.Time) *Array { return &Array{kind: Datetime, data: v} }

// Strings creates a text array.
func Strings(v []string) *Array { return &Array{kind: String, data: v} }

// Objects creates a generic object array. Elements are not assumed to be
// JSON-compatible; the codec reprocesses them individually.
func Objects(v []any) *Array { return &Array{kind: Object, data: v} }

// Kind returns the element kind.
func (a *Array) Kind() Kind { return a.kind }

// Len returns the number of elements.
func (a *Array) Len() int {
	switch d := a.data.(type) {
	case []bool:
		return len(d)
	case []int64:
		return len(d)
	case []uint64:
		return len(d)
	case []float64:
		return len(d)
	case []time.Time:
		return len(d)
	case []string:
		return len(d)
	case []any:
		return len(d)
	}
	return 0
}

// Times returns the underlying datetime storage.
// The second return is false for non-datetime arrays.
func (a *Array) Times() ([]time.Time, bool) {
	d, ok := a.data.([]time.Time)
	return d, ok
}

// NestedList flattens the array to a plain []any. Nested arrays inside an
// Object array are flattened recursively, so the result is a nested list of
// native Go values.
func (a *Array) NestedList() any {
	switch d := a.data.(type) {
	case []bool:
		out := make([]any, len(d))
		for i, v := range d {
			out[i] = v
		}
		return out
	case []int64:
		out := make([]any, len(d))
		for i, v := range d {
			out[i] = v
		}
		return out
	case []uint64:
		out := make([]any, len(d))
		for i, v := range d {
			out[i] = v
		}
		return out
	case []float64:
		out := make([]any, len(d))
		for i, v := range d {
			out[i] = v
		}
		return out
	case []time.Time:
		out := make([]any, len(d))
		for i, v := range d {
			out[i] = v
		}
		return out
	case []string:
		out := make([]any, len(d))
		for i, v := range d {
			out[i] = v
		}
		return out
	case []any:
		out := make([]any, len(d))
		for i, v := range d {
			if inner, ok := v.(*Array); ok {
				out[i] = inner.NestedList()
				continue
			}
			out[i] = v
		}
		return out
	}
	return []any{}
}

// MarshalJSON emits the array contents without going through reflection.
// Numeric kinds are written with strconv directly; non-finite floats become
// null so the output stays strict JSON. Datetime elements are written as
// timezone-naive ISO-8601 strings.
func (a *Array) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, a.Len()*4+2)
	buf = append(buf, '[')
	switch d := a.data.(type) {
	case []bool:
		for i, v := range d {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = strconv.AppendBool(buf, v)
		}
	case []int64:
		for i, v := range d {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = strconv.AppendInt(buf, v, 10)
		}
	case []uint64:
		for i, v := range d {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = strconv.AppendUint(buf, v, 10)
		}
	case []float64:
		for i, v := range d {
			if i > 0 {
				buf = append(buf, ',')
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				buf = append(buf, "null"...)
				continue
			}
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
		}
	case []time.Time:
		for i, v := range d {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = append(buf, '"')
			buf = append(buf, ISO8601(v)...)
			buf = append(buf, '"')
		}
	default:
		// Text and object kinds carry arbitrary values; let the standard
		// marshaller handle escaping and nesting.
		return json.Marshal(a.NestedList())
	}
	buf = append(buf, ']')
	return buf, nil
}

// Masked is the sentinel for a masked (missing) entry in figure data.
// The codec converts it to a float NaN.
var Masked = masked{}

type masked struct{}

// A DatetimeScalar wraps a single timestamp read out of a datetime array.
type DatetimeScalar struct {
	Time time.Time
}

// String returns the timezone-naive ISO-8601 form of the timestamp.
func (d DatetimeScalar) String() string { return ISO8601(d.Time) }

// ISO8601 formats t as a timezone-naive ISO-8601 string: the wall-clock
// fields are kept and the offset is dropped. Sub-second precision is written
// as six fractional digits and only when non-zero.
func ISO8601(t time.Time) string {
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.Format("2006-01-02T15:04:05.000000")
}

// Naive returns t with its timezone information stripped: the same wall-clock
// reading re-interpreted in UTC.
func Naive(t time.Time) time.Time {
	if t.Location() == time.UTC {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
