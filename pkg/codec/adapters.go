package codec

import (
	"bytes"
	"encoding/base64"
	"image"
	"math"
	"math/big"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/figwire/pkg/narray"
	"github.com/matzehuels/figwire/pkg/series"
)

// Options controls canonicalization.
type Options struct {
	// KeepArrays lets kind-tagged numeric arrays pass through to the engine
	// unchanged (the fast engine serializes them natively). When false,
	// arrays are flattened to plain lists before emission.
	KeepArrays bool

	// KeepDatetimes lets temporal values pass through to the engine as
	// native timestamps. When false, they are formatted as timezone-naive
	// ISO-8601 strings during canonicalization.
	KeepDatetimes bool

	// Adapters is the probe registry consulted for non-native value kinds.
	// A nil registry disables all probes.
	Adapters *Adapters
}

// Exportable is the capability exposed by figure objects that know their own
// canonical representation. The view is unwrapped at most once per node.
type Exportable interface {
	CanonicalView() any
}

// Lister is the array-like capability for flattening to a nested list.
// Results are trusted as already JSON-safe and are not re-canonicalized;
// this is a deliberate escape hatch so adapters that produce safe structures
// are not re-walked.
type Lister interface {
	NestedList() any
}

// A Probe inspects a value the canonicalizer does not handle natively and
// converts it to a JSON-compatible form. rescan reports that the result must
// be reclassified from the top of the rule ladder (for example an object
// array flattened to a plain list whose elements are not yet canonical).
type Probe interface {
	Clean(v any, opts Options) (out any, rescan bool, ok bool)
}

// Adapters is the registry of optional value-kind probes. Each field is
// independently present: a nil probe simply never matches, mirroring an
// adapter that is not loaded. Build the registry once per process and pass
// it through Options rather than consulting globals.
type Adapters struct {
	// Algebra recognizes arbitrary-precision scalars (big.Rat, big.Int,
	// big.Float) and converts them to native float/int.
	Algebra Probe

	// Arrays recognizes kind-tagged numeric arrays, the masked sentinel,
	// and datetime scalars.
	Arrays Probe

	// Tabular recognizes series, datetime indexes, and the NaT sentinel.
	Tabular Probe

	// Imaging converts image objects to data-URI strings.
	Imaging Probe
}

var (
	defaultAdaptersOnce sync.Once
	defaultAdapters     *Adapters
)

// DefaultAdapters returns the process-wide probe registry with every adapter
// present. The registry is built once and reused.
func DefaultAdapters() *Adapters {
	defaultAdaptersOnce.Do(func() {
		defaultAdapters = &Adapters{
			Algebra: algebraProbe{},
			Arrays:  arrayProbe{},
			Tabular: tabularProbe{},
			Imaging: imageProbe{},
		}
	})
	return defaultAdapters
}

// algebraProbe converts arbitrary-precision scalars to native numbers.
type algebraProbe struct{}

func (algebraProbe) Clean(v any, _ Options) (any, bool, bool) {
	switch x := v.(type) {
	case *big.Rat:
		f, _ := x.Float64()
		return f, false, true
	case *big.Int:
		if x.IsInt64() {
			return x.Int64(), false, true
		}
		f, _ := new(big.Float).SetInt(x).Float64()
		return f, false, true
	case *big.Float:
		f, _ := x.Float64()
		return f, false, true
	}
	return nil, false, false
}

// arrayProbe handles kind-tagged arrays and their scalar companions.
type arrayProbe struct{}

func (arrayProbe) Clean(v any, opts Options) (any, bool, bool) {
	if v == any(narray.Masked) {
		return math.NaN(), false, true
	}
	if d, ok := v.(narray.DatetimeScalar); ok {
		return d.String(), false, true
	}
	a, ok := v.(*narray.Array)
	if !ok {
		return nil, false, false
	}
	switch a.Kind() {
	case narray.Bool, narray.Int, narray.Uint, narray.Float:
		if opts.KeepArrays {
			return a, false, true
		}
		// Not handled here: the array falls through to the nested-list
		// escape hatch and is flattened before emission.
		return nil, false, false
	case narray.Datetime:
		times, _ := a.Times()
		return isoSequence(times), false, true
	case narray.String:
		return a.NestedList(), true, true
	case narray.Object:
		// Elements are not assumed canonical; reprocess from the top.
		return a.NestedList(), true, true
	}
	return nil, false, false
}

// tabularProbe handles series values and datetime indexes.
type tabularProbe struct{}

func (tabularProbe) Clean(v any, opts Options) (any, bool, bool) {
	if v == any(series.NaT) {
		return nil, false, true
	}
	switch x := v.(type) {
	case *series.Series:
		switch x.Kind() {
		case narray.Bool, narray.Int, narray.Uint, narray.Float:
			if opts.KeepArrays {
				return x.Values(), false, true
			}
			// Falls through to the nested-list escape hatch.
			return nil, false, false
		case narray.Datetime:
			times, _ := x.Times()
			return cleanTimes(times, opts), false, true
		}
		return nil, false, false
	case *series.DatetimeIndex:
		return cleanTimes(x.Times(), opts), false, true
	}
	return nil, false, false
}

// cleanTimes converts a datetime column per the KeepDatetimes policy:
// ISO strings when the engine needs primitives, naive native timestamps when
// the engine formats them itself.
func cleanTimes(times []time.Time, opts Options) []any {
	out := make([]any, len(times))
	for i, t := range times {
		if opts.KeepDatetimes {
			out[i] = narray.Naive(t)
			continue
		}
		out[i] = narray.ISO8601(t)
	}
	return out
}

func isoSequence(times []time.Time) []any {
	out := make([]any, len(times))
	for i, t := range times {
		out[i] = narray.ISO8601(t)
	}
	return out
}

// imageProbe converts decoded images to PNG data URIs.
type imageProbe struct{}

func (imageProbe) Clean(v any, _ Options) (any, bool, bool) {
	img, ok := v.(image.Image)
	if !ok {
		return nil, false, false
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		// Canonicalization is total: leave the value for the engine, which
		// reports the failure as an encoding error.
		return nil, false, false
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), false, true
}
