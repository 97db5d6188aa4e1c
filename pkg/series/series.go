// Package series provides named tabular columns and datetime indexes.
//
// A Series pairs a name with kind-tagged array storage (see pkg/narray); a
// DatetimeIndex is an ordered set of timestamps used to index rows. Both are
// recognized by the codec layer, which converts them with the same
// numeric-versus-datetime branching it applies to raw arrays. NaT is the
// missing-timestamp sentinel and canonicalizes to null.
package series

import (
	"time"

	"github.com/matzehuels/figwire/pkg/narray"
)

// Series is a named column of values.
type Series struct {
	name   string
	values *narray.Array
}

// New creates a series over the given array storage.
func New(name string, values *narray.Array) *Series {
	return &Series{name: name, values: values}
}

// FromFloats is a convenience constructor for float columns.
func FromFloats(name string, v []float64) *Series {
	return New(name, narray.Floats(v))
}

// FromTimes is a convenience constructor for datetime columns.
func FromTimes(name string, v []time.Time) *Series {
	return New(name, narray.Datetimes(v))
}

// Name returns the column name.
func (s *Series) Name() string { return s.name }

// Values returns the underlying array storage.
func (s *Series) Values() *narray.Array { return s.values }

// Kind returns the element kind of the storage.
func (s *Series) Kind() narray.Kind { return s.values.Kind() }

// Len returns the number of rows.
func (s *Series) Len() int { return s.values.Len() }

// Times returns the underlying datetime storage, if the series holds one.
func (s *Series) Times() ([]time.Time, bool) { return s.values.Times() }

// NestedList flattens the series values to a plain []any.
func (s *Series) NestedList() any { return s.values.NestedList() }

// DatetimeIndex is an ordered set of timestamps indexing tabular rows.
type DatetimeIndex struct {
	times []time.Time
}

// NewDatetimeIndex creates a datetime index over the given timestamps.
func NewDatetimeIndex(times []time.Time) *DatetimeIndex {
	return &DatetimeIndex{times: times}
}

// Times returns the indexed timestamps.
func (ix *DatetimeIndex) Times() []time.Time { return ix.times }

// Len returns the number of index entries.
func (ix *DatetimeIndex) Len() int { return len(ix.times) }

// NaT is the missing-timestamp sentinel. The codec converts it to null.
var NaT = nat{}

type nat struct{}
