// Package figure provides a minimal in-memory figure object.
//
// A Figure holds traces, a layout, and optional animation frames as plain
// value trees. It implements the exportable capability recognized by
// pkg/codec, so a Figure can be passed directly to Encode or to the
// pkg/figio wrappers. Trace values may contain kind-tagged arrays
// (pkg/narray) and series (pkg/series); canonicalization handles those
// during encoding.
package figure

import (
	"maps"

	"github.com/matzehuels/figwire/pkg/codec"
	fwerrors "github.com/matzehuels/figwire/pkg/errors"
)

// Figure is a figure value: an ordered list of traces, a layout mapping, and
// optional animation frames.
type Figure struct {
	Data   []map[string]any
	Layout map[string]any
	Frames []map[string]any
}

// New creates an empty figure with a non-nil layout.
func New() *Figure {
	return &Figure{Layout: map[string]any{}}
}

// AddTrace appends a trace to the figure and returns the figure for chaining.
func (f *Figure) AddTrace(trace map[string]any) *Figure {
	f.Data = append(f.Data, trace)
	return f
}

// CanonicalView returns the plain value tree for serialization. The top-level
// containers are fresh, so encoders can canonicalize without mutating the
// figure; trace and layout mappings are shared, not copied.
func (f *Figure) CanonicalView() any {
	out := map[string]any{
		"data":   tracesView(f.Data),
		"layout": f.Layout,
	}
	if f.Layout == nil {
		out["layout"] = map[string]any{}
	}
	if len(f.Frames) > 0 {
		out["frames"] = tracesView(f.Frames)
	}
	return out
}

func tracesView(traces []map[string]any) []any {
	out := make([]any, len(traces))
	for i, tr := range traces {
		out[i] = tr
	}
	return out
}

// MarshalJSON encodes the figure with the process default engine, so figures
// embedded in larger structures serialize to the same canonical form as a
// direct Encode call.
func (f *Figure) MarshalJSON() ([]byte, error) {
	s, err := codec.Encode(f, false, "")
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Validate performs the light shape checks applied before export: every
// trace must carry a string "type" when the key is present. Full schema
// validation is out of scope.
func (f *Figure) Validate() error {
	for i, tr := range f.Data {
		if tr == nil {
			return fwerrors.New(fwerrors.ErrCodeInvalidFigure, "trace %d is null", i)
		}
		if typ, ok := tr["type"]; ok {
			if _, isStr := typ.(string); !isStr {
				return fwerrors.New(fwerrors.ErrCodeInvalidFigure,
					"trace %d has a non-string type field (%T)", i, typ)
			}
		}
	}
	return nil
}

// StripUIDs returns a figure with the "uid" key removed from every trace.
// Trace mappings that carry a uid are copied; everything else is shared with
// the receiver, so the caller's figure is never mutated.
func (f *Figure) StripUIDs() *Figure {
	out := &Figure{
		Data:   stripTraceUIDs(f.Data),
		Layout: f.Layout,
		Frames: f.Frames,
	}
	return out
}

func stripTraceUIDs(traces []map[string]any) []map[string]any {
	if len(traces) == 0 {
		return traces
	}
	out := make([]map[string]any, len(traces))
	for i, tr := range traces {
		if _, ok := tr["uid"]; !ok {
			out[i] = tr
			continue
		}
		clean := maps.Clone(tr)
		delete(clean, "uid")
		out[i] = clean
	}
	return out
}

// Coerce converts a decoded value into a Figure. Accepted shapes: *Figure
// (returned as-is), or a string-keyed mapping with optional "data", "layout"
// and "frames" entries in the decoded-JSON form.
func Coerce(v any) (*Figure, error) {
	switch x := v.(type) {
	case *Figure:
		return x, nil
	case map[string]any:
		f := New()
		if data, ok := x["data"]; ok {
			traces, err := coerceTraces(data, "data")
			if err != nil {
				return nil, err
			}
			f.Data = traces
		}
		if layout, ok := x["layout"]; ok {
			m, isMap := layout.(map[string]any)
			if !isMap {
				return nil, fwerrors.New(fwerrors.ErrCodeInvalidFigure,
					"figure layout must be a mapping, received %T", layout)
			}
			f.Layout = m
		}
		if frames, ok := x["frames"]; ok {
			fr, err := coerceTraces(frames, "frames")
			if err != nil {
				return nil, err
			}
			f.Frames = fr
		}
		return f, nil
	default:
		return nil, fwerrors.New(fwerrors.ErrCodeInvalidFigure,
			"cannot build a figure from %T; expected a mapping with data/layout entries", v)
	}
}

func coerceTraces(v any, field string) ([]map[string]any, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fwerrors.New(fwerrors.ErrCodeInvalidFigure,
			"figure %s must be a list, received %T", field, v)
	}
	out := make([]map[string]any, len(list))
	for i, el := range list {
		m, isMap := el.(map[string]any)
		if !isMap {
			return nil, fwerrors.New(fwerrors.ErrCodeInvalidFigure,
				"figure %s entry %d must be a mapping, received %T", field, i, el)
		}
		out[i] = m
	}
	return out, nil
}
