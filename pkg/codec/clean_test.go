package codec

import (
	"math"
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matzehuels/figwire/pkg/narray"
	"github.com/matzehuels/figwire/pkg/series"
)

// viewItem exposes the exportable capability with a fixed view.
type viewItem struct{ view any }

func (v viewItem) CanonicalView() any { return v.view }

// rawLister exposes the nested-list escape hatch with a typed slice, which
// must be trusted verbatim.
type rawLister struct{}

func (rawLister) NestedList() any { return []string{"a", "b"} }

func strictTestOptions() Options {
	return Options{Adapters: DefaultAdapters()}
}

func TestCleanScalarsPassThrough(t *testing.T) {
	opts := strictTestOptions()
	for _, v := range []any{nil, true, 42, int64(-7), uint16(9), 2.5, "hello"} {
		if got := Clean(v, opts); got != v {
			t.Errorf("Clean(%v) = %v, want unchanged", v, got)
		}
	}
}

func TestCleanExportableUnwrap(t *testing.T) {
	opts := strictTestOptions()
	item := viewItem{view: map[string]any{"x": 5}}
	got := Clean(item, opts)
	want := map[string]any{"x": 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clean(exportable) = %v, want %v", got, want)
	}
}

func TestCleanNestedExportable(t *testing.T) {
	// Exportables nested inside plain containers must still unwrap.
	opts := strictTestOptions()
	item := map[string]any{"trace": []any{viewItem{view: map[string]any{"y": 1}}}}
	got := Clean(item, opts).(map[string]any)
	inner := got["trace"].([]any)[0].(map[string]any)
	if inner["y"] != 1 {
		t.Errorf("nested exportable not unwrapped: %v", got)
	}
}

func TestCleanTypedContainers(t *testing.T) {
	opts := strictTestOptions()

	got := Clean([]float64{1, 2}, opts)
	want := []any{float64(1), float64(2)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clean([]float64) = %v, want %v", got, want)
	}

	gotMap := Clean(map[string]int{"n": 3}, opts)
	wantMap := map[string]any{"n": 3}
	if !reflect.DeepEqual(gotMap, wantMap) {
		t.Errorf("Clean(map[string]int) = %v, want %v", gotMap, wantMap)
	}
}

func TestCleanAlgebraScalars(t *testing.T) {
	opts := strictTestOptions()

	if got := Clean(big.NewRat(1, 2), opts); got != 0.5 {
		t.Errorf("Clean(1/2) = %v, want 0.5", got)
	}
	if got := Clean(big.NewInt(12), opts); got != int64(12) {
		t.Errorf("Clean(big 12) = %v, want 12", got)
	}
	if got := Clean(big.NewFloat(0.25), opts); got != 0.25 {
		t.Errorf("Clean(big 0.25) = %v, want 0.25", got)
	}

	// Integers beyond int64 degrade to float.
	huge := new(big.Int).Lsh(big.NewInt(1), 80)
	got, ok := Clean(huge, opts).(float64)
	if !ok || got != math.Ldexp(1, 80) {
		t.Errorf("Clean(2^80) = %v, want float 2^80", got)
	}
}

func TestCleanMaskedSentinel(t *testing.T) {
	got, ok := Clean(narray.Masked, strictTestOptions()).(float64)
	if !ok || !math.IsNaN(got) {
		t.Errorf("Clean(Masked) = %v, want NaN", got)
	}
}

func TestCleanNaTSentinel(t *testing.T) {
	if got := Clean(series.NaT, strictTestOptions()); got != nil {
		t.Errorf("Clean(NaT) = %v, want nil", got)
	}
}

func TestCleanNumericArray(t *testing.T) {
	arr := narray.Ints([]int64{1, 2, 3})

	// Without KeepArrays the array flattens to a plain list.
	got := Clean(arr, strictTestOptions())
	want := []any{int64(1), int64(2), int64(3)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clean(array) = %v, want %v", got, want)
	}

	// With KeepArrays the array passes through for the engine fast path.
	kept := Clean(arr, Options{KeepArrays: true, Adapters: DefaultAdapters()})
	if kept != arr {
		t.Errorf("Clean(array, keep) = %v, want the array itself", kept)
	}
}

func TestCleanDatetimeArray(t *testing.T) {
	ts := time.Date(2021, 3, 4, 12, 30, 0, 0, time.UTC)
	arr := narray.Datetimes([]time.Time{ts})
	got := Clean(arr, strictTestOptions())
	want := []any{"2021-03-04T12:30:00"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clean(datetime array) = %v, want %v", got, want)
	}
}

func TestCleanObjectArrayReprocessed(t *testing.T) {
	// Elements of an object array are not assumed canonical: exportables
	// inside must unwrap.
	arr := narray.Objects([]any{viewItem{view: map[string]any{"x": 5}}, "s"})
	got := Clean(arr, strictTestOptions()).([]any)
	inner, ok := got[0].(map[string]any)
	if !ok || inner["x"] != 5 {
		t.Errorf("object array element not reprocessed: %v", got)
	}
	if got[1] != "s" {
		t.Errorf("object array string element = %v", got[1])
	}
}

func TestCleanStringArray(t *testing.T) {
	arr := narray.Strings([]string{"a", "b"})
	got := Clean(arr, strictTestOptions())
	want := []any{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clean(string array) = %v, want %v", got, want)
	}
}

func TestCleanDatetimeScalar(t *testing.T) {
	d := narray.DatetimeScalar{Time: time.Date(2020, 1, 1, 6, 0, 0, 0, time.UTC)}
	if got := Clean(d, strictTestOptions()); got != "2020-01-01T06:00:00" {
		t.Errorf("Clean(datetime scalar) = %v", got)
	}
}

func TestCleanSeries(t *testing.T) {
	s := series.FromFloats("y", []float64{1.5, 2.5})

	got := Clean(s, strictTestOptions())
	want := []any{1.5, 2.5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clean(series) = %v, want %v", got, want)
	}

	kept := Clean(s, Options{KeepArrays: true, Adapters: DefaultAdapters()})
	if kept != s.Values() {
		t.Errorf("Clean(series, keep) = %v, want underlying array", kept)
	}
}

func TestCleanDatetimeSeries(t *testing.T) {
	ts := []time.Time{time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)}
	s := series.FromTimes("when", ts)

	got := Clean(s, strictTestOptions())
	want := []any{"2021-06-01T00:00:00"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clean(datetime series) = %v, want %v", got, want)
	}

	// With KeepDatetimes the elements stay native timestamps for the engine.
	native := Clean(s, Options{KeepDatetimes: true, Adapters: DefaultAdapters()}).([]any)
	if _, ok := native[0].(time.Time); !ok {
		t.Errorf("Clean(datetime series, keep) = %T, want time.Time elements", native[0])
	}
}

func TestCleanDatetimeIndex(t *testing.T) {
	ix := series.NewDatetimeIndex([]time.Time{time.Date(2021, 6, 2, 0, 0, 0, 0, time.UTC)})
	got := Clean(ix, strictTestOptions())
	want := []any{"2021-06-02T00:00:00"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clean(datetime index) = %v, want %v", got, want)
	}
}

func TestCleanTemporalScalar(t *testing.T) {
	zoned := time.Date(2021, 3, 4, 12, 30, 0, 0, time.FixedZone("X", 3*3600))

	got := Clean(zoned, strictTestOptions())
	if got != "2021-03-04T12:30:00" {
		t.Errorf("Clean(time) = %v, want ISO string with offset dropped", got)
	}

	native := Clean(zoned, Options{KeepDatetimes: true, Adapters: DefaultAdapters()})
	nt, ok := native.(time.Time)
	if !ok {
		t.Fatalf("Clean(time, keep) = %T, want time.Time", native)
	}
	if nt.Location() != time.UTC || nt.Hour() != 12 {
		t.Errorf("Clean(time, keep) = %v, want naive wall clock", nt)
	}
}

func TestCleanListerVerbatim(t *testing.T) {
	got := Clean(rawLister{}, strictTestOptions())
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clean(lister) = %v, want verbatim %v", got, want)
	}
}

func TestCleanDecimal(t *testing.T) {
	d := decimal.RequireFromString("2.5")
	if got := Clean(d, strictTestOptions()); got != 2.5 {
		t.Errorf("Clean(decimal) = %v, want 2.5", got)
	}
}

func TestCleanIdentityFallback(t *testing.T) {
	type opaque struct{ n int }
	v := opaque{n: 1}
	if got := Clean(v, strictTestOptions()); got != v {
		t.Errorf("Clean(opaque) = %v, want unchanged", got)
	}
}

func TestCleanByteSlicePassThrough(t *testing.T) {
	// Byte slices are outside the value model at every rule, so both empty
	// and non-empty slices reach the identity fallback unchanged instead of
	// flattening to a number list.
	for name, v := range map[string][]byte{
		"empty":     {},
		"non-empty": {1, 2},
	} {
		got := Clean(v, strictTestOptions())
		b, ok := got.([]byte)
		if !ok || !reflect.DeepEqual(b, v) {
			t.Errorf("Clean(%s []byte) = %v (%T), want pass-through", name, got, got)
		}
	}
}

func TestCleanNilAdapters(t *testing.T) {
	// A nil registry disables every probe. Arrays still flatten through the
	// nested-list escape hatch, but the masked sentinel has no handler left
	// and passes through untouched.
	arr := narray.Floats([]float64{1})
	got := Clean(arr, Options{})
	if want := []any{float64(1)}; !reflect.DeepEqual(got, want) {
		t.Errorf("Clean(array, nil adapters) = %v, want %v", got, want)
	}
	if got := Clean(narray.Masked, Options{}); got != any(narray.Masked) {
		t.Errorf("Clean(Masked, nil adapters) = %v, want pass-through", got)
	}
}
