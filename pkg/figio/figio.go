// Package figio provides figure-level JSON import and export.
//
// # Overview
//
// This package wraps pkg/codec with the figure-specific steps applied before
// and after serialization:
//
//   - Shape validation (traces are mappings, trace type is a string)
//   - Trace-UID stripping, so repeated exports of the same figure are
//     byte-identical
//   - Coercion of decoded value trees back into [figure.Figure] objects
//
// # Export
//
// Use [ToJSON] for in-memory serialization, [WriteJSON] to write to any
// io.Writer, or [ExportJSON] for file-based output:
//
//	s, err := figio.ToJSON(fig, figio.WithPretty())
//
// # Import
//
// Use [FromJSON] to parse a string or byte slice, [ReadJSON] to read from
// any io.Reader, or [ImportJSON] for file paths. All three return an
// independent [figure.Figure] that can be modified freely.
//
// # Engine selection
//
// Every function accepts [WithEngine] to pin a codec engine; by default the
// process-wide engine selection applies (see pkg/codec). Options follow the
// functional-option style used across the module.
package figio

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/matzehuels/figwire/pkg/codec"
	fwerrors "github.com/matzehuels/figwire/pkg/errors"
	"github.com/matzehuels/figwire/pkg/figure"
	"github.com/matzehuels/figwire/pkg/observability"
)

type config struct {
	engine   string
	pretty   bool
	validate bool
	keepUIDs bool
}

// Option customizes an import or export call.
type Option func(*config)

// WithEngine pins the codec engine ("legacy", "json", "orjson", "auto").
// The zero value uses the process-wide default.
func WithEngine(engine string) Option { return func(c *config) { c.engine = engine } }

// WithPretty selects 2-space indented output instead of the compact form.
func WithPretty() Option { return func(c *config) { c.pretty = true } }

// WithoutValidation skips figure shape validation. Invalid figures then
// surface as encoding errors, or as silently odd JSON.
func WithoutValidation() Option { return func(c *config) { c.validate = false } }

// KeepUIDs preserves trace uid fields in the output. By default they are
// stripped so repeated exports compare equal.
func KeepUIDs() Option { return func(c *config) { c.keepUIDs = true } }

func newConfig(opts []Option) config {
	c := config{validate: true}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ToJSON serializes a figure to a JSON string.
//
// The input may be a [figure.Figure] or any value tree accepted by
// [figure.Coerce]. Validation and UID stripping run first unless disabled
// via options; the canonical view is then encoded with the selected engine.
func ToJSON(fig any, opts ...Option) (string, error) {
	c := newConfig(opts)
	ctx := context.Background()

	item, err := prepare(fig, c)
	if err != nil {
		return "", err
	}

	observability.Codec().OnEncodeStart(ctx, c.engine, c.pretty)
	start := time.Now()
	out, err := codec.Encode(item, c.pretty, c.engine)
	observability.Codec().OnEncodeComplete(ctx, c.engine, len(out), time.Since(start), err)
	return out, err
}

// WriteJSON serializes a figure and writes it to w.
func WriteJSON(fig any, w io.Writer, opts ...Option) error {
	s, err := ToJSON(fig, opts...)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, s); err != nil {
		return fwerrors.Wrap(fwerrors.ErrCodeEncoding, err, "write figure JSON")
	}
	return nil
}

// ExportJSON writes a figure to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(fig any, path string, opts ...Option) error {
	f, err := os.Create(path)
	if err != nil {
		return fwerrors.Wrap(fwerrors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(fig, f, opts...)
}

// FromJSON parses figure JSON from a string or byte slice and returns the
// decoded figure. The result is independent of the input.
func FromJSON(data any, opts ...Option) (*figure.Figure, error) {
	c := newConfig(opts)
	ctx := context.Background()

	size := 0
	switch d := data.(type) {
	case string:
		size = len(d)
	case []byte:
		size = len(d)
	}

	observability.Codec().OnDecodeStart(ctx, c.engine, size)
	start := time.Now()
	v, err := codec.Decode(data, c.engine)
	observability.Codec().OnDecodeComplete(ctx, c.engine, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	fig, err := figure.Coerce(v)
	if err != nil {
		return nil, err
	}
	if c.validate {
		if err := fig.Validate(); err != nil {
			return nil, err
		}
	}
	return fig, nil
}

// ReadJSON decodes a figure from r. ReadJSON does not close r.
func ReadJSON(r io.Reader, opts ...Option) (*figure.Figure, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fwerrors.Wrap(fwerrors.ErrCodeInvalidInput, err, "read figure JSON")
	}
	return FromJSON(data, opts...)
}

// ImportJSON reads a JSON file at path and returns the decoded figure.
func ImportJSON(path string, opts ...Option) (*figure.Figure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fwerrors.Wrap(fwerrors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f, opts...)
}

// prepare applies validation and UID stripping per the call configuration.
// With validation disabled, non-figure inputs pass straight to the encoder.
func prepare(fig any, c config) (any, error) {
	if !c.validate {
		if f, ok := fig.(*figure.Figure); ok && !c.keepUIDs {
			return f.StripUIDs(), nil
		}
		return fig, nil
	}

	f, err := figure.Coerce(fig)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if !c.keepUIDs {
		f = f.StripUIDs()
	}
	return f, nil
}
