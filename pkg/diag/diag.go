// Package diag provides cross-engine consistency checks and timing for the
// codec layer.
//
// The production encode path never runs these checks; they are wired to the
// `figwire bench` subcommand and to tests. Compare treats any disagreement
// between engines as an internal-consistency failure, Benchmark times every
// available engine on the same input, and the CSV/dump helpers persist
// results for offline comparison.
package diag

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/figwire/pkg/codec"
	fwerrors "github.com/matzehuels/figwire/pkg/errors"
)

// availableEngines returns the engine selectors to exercise: the built-ins
// plus the fast engine when it is linked into the binary.
func availableEngines() []string {
	names := []string{codec.EngineLegacy, codec.EngineJSON}
	if _, ok := codec.Lookup(codec.EngineFast); ok {
		names = append(names, codec.EngineFast)
	}
	return names
}

// Compare encodes item with every available engine, decodes each result, and
// deep-compares the decoded trees. A mismatch means two engines disagree
// about the same input and is reported as an encoding error naming both
// engines; it is never silently resolved.
func Compare(item any, pretty bool) error {
	engines := availableEngines()

	decoded := make([]any, len(engines))
	for i, engine := range engines {
		s, err := codec.Encode(item, pretty, engine)
		if err != nil {
			return fwerrors.Wrap(fwerrors.GetCode(err), err, "engine %s failed to encode", engine)
		}
		v, err := codec.Decode(s, engine)
		if err != nil {
			return fwerrors.Wrap(fwerrors.GetCode(err), err, "engine %s produced undecodable output", engine)
		}
		decoded[i] = v
	}

	for i := 1; i < len(decoded); i++ {
		if !reflect.DeepEqual(decoded[0], decoded[i]) {
			return fwerrors.New(fwerrors.ErrCodeEncoding,
				"engines %s and %s disagree on the same input; this is an internal consistency failure",
				engines[0], engines[i])
		}
	}
	return nil
}

// Result is the timing outcome for one engine.
type Result struct {
	Engine string
	Runs   int
	Total  time.Duration
}

// PerRun returns the mean time per encode call.
func (r Result) PerRun() time.Duration {
	if r.Runs == 0 {
		return 0
	}
	return r.Total / time.Duration(r.Runs)
}

// Params bounds a benchmark run. Each engine is timed for at least MinRuns
// iterations and at least MinTime of wall clock, whichever is reached last.
type Params struct {
	MinRuns int
	MinTime time.Duration
}

// DefaultParams returns the standard benchmark bounds: 10 runs and 1 second
// per engine.
func DefaultParams() Params {
	return Params{MinRuns: 10, MinTime: time.Second}
}

// Benchmark times an encode of item with every available engine. A
// cross-engine consistency check runs first; timing numbers for disagreeing
// engines would be meaningless.
func Benchmark(item any, pretty bool, p Params) ([]Result, error) {
	if p.MinRuns < 1 {
		p.MinRuns = 1
	}
	if err := Compare(item, pretty); err != nil {
		return nil, err
	}

	results := make([]Result, 0, 3)
	for _, engine := range availableEngines() {
		runs := 0
		start := time.Now()
		for runs < p.MinRuns || time.Since(start) < p.MinTime {
			if _, err := codec.Encode(item, pretty, engine); err != nil {
				return nil, err
			}
			runs++
		}
		results = append(results, Result{Engine: engine, Runs: runs, Total: time.Since(start)})
	}
	return results, nil
}

// AppendCSV appends one row per result to a CSV file at path, creating the
// file with a header row when it does not exist.
func AppendCSV(path string, results []Result) error {
	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fwerrors.Wrap(fwerrors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write([]string{"engine", "runs", "total_ns", "per_run_ns"}); err != nil {
			return fwerrors.Wrap(fwerrors.ErrCodeInternal, err, "write csv header")
		}
	}
	for _, r := range results {
		row := []string{
			r.Engine,
			strconv.Itoa(r.Runs),
			strconv.FormatInt(r.Total.Nanoseconds(), 10),
			strconv.FormatInt(r.PerRun().Nanoseconds(), 10),
		}
		if err := w.Write(row); err != nil {
			return fwerrors.Wrap(fwerrors.ErrCodeInternal, err, "write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fwerrors.Wrap(fwerrors.ErrCodeInternal, err, "flush csv")
	}
	return nil
}

// DumpSample writes item as pretty JSON to a uniquely named file under dir,
// creating the directory if needed, and returns the path. Used to preserve
// inputs that triggered a cross-engine mismatch.
func DumpSample(dir string, item any) (string, error) {
	s, err := codec.Encode(item, true, codec.EngineJSON)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fwerrors.Wrap(fwerrors.ErrCodeInvalidPath, err, "create %s", dir)
	}
	path := filepath.Join(dir, fmt.Sprintf("sample-%s.json", uuid.NewString()))
	if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
		return "", fwerrors.Wrap(fwerrors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return path, nil
}
