// Package codec converts heterogeneous figure value trees into canonical,
// strict-JSON text and back.
//
// The package solves a normalization problem, not a serialization one: figure
// producers hand over an open set of value shapes (native scalars, exportable
// objects, kind-tagged numeric arrays, tabular series, temporal values,
// masked sentinels, arbitrary-precision decimals, images), and the
// canonicalizer rewrites them into a closed value model that any strict JSON
// encoder can emit losslessly.
//
// # Engines
//
// Three interchangeable encoding engines are supported, selected by name:
//
//   - "json": canonicalize the whole tree, then emit with the built-in
//     serializer (strict-JSON repair applied when needed)
//   - "legacy": convert values node-by-node during emission; observably
//     equivalent to "json" by contract
//   - "orjson": jsoniter-backed fast engine with native handling of numeric
//     arrays and timestamps; enabled by blank-importing pkg/codec/fastjson
//   - "auto": "orjson" when linked in, otherwise "json"; resolved per call
//
// Mapping keys are always emitted in sorted order, so identical logical
// content yields byte-identical output. Golden-file and diff-based testing
// of figure output depends on this.
//
// # Strictness
//
// Encoded output never contains the bare tokens NaN, Infinity, or -Infinity.
// Non-finite floats decode back as null. The legacy/json engines guarantee
// this with a repair pass that re-parses permissive output and substitutes
// null for the extended tokens; the orjson engine writes null natively.
//
// # Errors
//
// All failures surface as structured errors from pkg/errors:
// UNSUPPORTED_ENGINE, MISSING_DEPENDENCY, INVALID_INPUT, PARSE_ERROR,
// and ENCODING_ERROR. Canonicalization itself never fails; anything it
// cannot classify passes through to the engine, which rejects what it
// cannot represent.
package codec
